// Package crawler fetches salary pages and survey exports and parses the salary tables they carry.
package crawler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"devsurvey/pkg/utils"
)

// Parser errors.
var (
	ErrNoTable  = errors.New("no table found on page")
	ErrNoHeader = errors.New("table has no header cells")
	ErrRowShape = errors.New("row width does not match header")
)

// Table is an HTML table reduced to text cells.
type Table struct {
	Header []string
	Rows   [][]string
}

var strs = utils.NewStringHelper()

func cellText(s *goquery.Selection) string {
	return strs.NormalizeWhitespace(s.Text())
}

// ParseSalaryTable extracts the first table of an HTML page. Header cells
// are every th in the table; each later tr with td cells is a row.
func ParseSalaryTable(html string) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	t := &Table{}

	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		t.Header = append(t.Header, cellText(th))
	})

	if len(t.Header) == 0 {
		return nil, ErrNoHeader
	}

	var shapeErr error

	table.Find("tr").Slice(1, goquery.ToEnd).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return true
		}

		if tds.Length() != len(t.Header) {
			shapeErr = fmt.Errorf("%w: row %d has %d cells, header has %d", ErrRowShape, i+1, tds.Length(), len(t.Header))

			return false
		}

		row := make([]string, 0, tds.Length())
		tds.Each(func(_ int, td *goquery.Selection) {
			row = append(row, cellText(td))
		})
		t.Rows = append(t.Rows, row)

		return true
	})

	if shapeErr != nil {
		return nil, shapeErr
	}

	return t, nil
}

// Frame converts the table to a string-typed dataframe.
func (t *Table) Frame() (dataframe.DataFrame, error) {
	if len(t.Rows) == 0 {
		cols := make([]series.Series, len(t.Header))
		for i, h := range t.Header {
			cols[i] = series.New([]string{}, series.String, h)
		}

		return dataframe.New(cols...), nil
	}

	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header)
	records = append(records, t.Rows...)

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df, fmt.Errorf("failed to build frame: %w", df.Err)
	}

	return df, nil
}
