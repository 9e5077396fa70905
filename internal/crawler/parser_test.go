package crawler

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const salaryPage = `<html><body>
<h1>Average Data Engineer Salary by State</h1>
<table class="salaries">
  <thead>
    <tr><th>State</th><th>Annual Salary</th><th> Monthly
      Pay</th><th>Weekly Pay</th><th>Hourly Wage</th></tr>
  </thead>
  <tbody>
    <tr><td><a href="/ny">New York</a></td><td>$141,543</td><td>$11,795</td><td>$2,722</td><td>$68.05</td></tr>
    <tr><td>Alaska</td><td>$134,322</td><td>$11,193</td><td>$2,583</td><td>$64.58</td></tr>
  </tbody>
</table>
<table><tr><th>Other</th></tr></table>
</body></html>`

func TestParseSalaryTable(t *testing.T) {
	table, err := ParseSalaryTable(salaryPage)
	if err != nil {
		t.Fatalf("ParseSalaryTable failed: %v", err)
	}

	wantHeader := []string{"State", "Annual Salary", "Monthly Pay", "Weekly Pay", "Hourly Wage"}
	if diff := cmp.Diff(wantHeader, table.Header); diff != "" {
		t.Errorf("Header mismatch (-want +got):\n%s", diff)
	}

	wantRows := [][]string{
		{"New York", "$141,543", "$11,795", "$2,722", "$68.05"},
		{"Alaska", "$134,322", "$11,193", "$2,583", "$64.58"},
	}
	if diff := cmp.Diff(wantRows, table.Rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSalaryTable_NoTable(t *testing.T) {
	_, err := ParseSalaryTable("<html><body><p>Access denied</p></body></html>")
	if !errors.Is(err, ErrNoTable) {
		t.Errorf("Expected ErrNoTable, got %v", err)
	}
}

func TestParseSalaryTable_NoHeader(t *testing.T) {
	_, err := ParseSalaryTable("<table><tr><td>a</td></tr></table>")
	if !errors.Is(err, ErrNoHeader) {
		t.Errorf("Expected ErrNoHeader, got %v", err)
	}
}

func TestParseSalaryTable_RowShape(t *testing.T) {
	html := `<table><tr><th>State</th><th>Annual Salary</th></tr>
<tr><td>Ohio</td><td>$100</td></tr>
<tr><td>Iowa</td></tr></table>`

	_, err := ParseSalaryTable(html)
	if !errors.Is(err, ErrRowShape) {
		t.Errorf("Expected ErrRowShape, got %v", err)
	}
}

func TestTable_Frame(t *testing.T) {
	table, err := ParseSalaryTable(salaryPage)
	if err != nil {
		t.Fatalf("ParseSalaryTable failed: %v", err)
	}

	df, err := table.Frame()
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	if df.Nrow() != 2 || df.Ncol() != 5 {
		t.Fatalf("Expected 2x5 frame, got %dx%d", df.Nrow(), df.Ncol())
	}

	if got := df.Col("Annual Salary").Elem(1).String(); got != "$134,322" {
		t.Errorf("Annual Salary[1] = %q", got)
	}
}

func TestTable_FrameEmpty(t *testing.T) {
	df, err := (&Table{Header: []string{"State", "Annual Salary"}}).Frame()
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	if df.Nrow() != 0 || df.Ncol() != 2 {
		t.Errorf("Expected 0x2 frame, got %dx%d", df.Nrow(), df.Ncol())
	}
}
