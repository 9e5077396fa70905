// Package formatter renders report tables as aligned markdown.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Align is a column alignment.
type Align int

// Column alignments.
const (
	AlignLeft Align = iota
	AlignRight
)

// minWidth keeps separators at least "---".
const minWidth = 3

// Table is a header plus rows of cells.
type Table struct {
	Header []string
	Rows   [][]string
	Align  []Align
}

// RenderTable renders t as a markdown table padded to display width, so
// accented country names and wide runes line up.
func RenderTable(t Table) string {
	cols := len(t.Header)
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}

	widths := columnWidths(cols, append([][]string{t.Header}, t.Rows...))

	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, writeRow(t.Header, widths, t.Align))
	lines = append(lines, writeSeparator(widths, t.Align))

	for _, row := range t.Rows {
		lines = append(lines, writeRow(row, widths, t.Align))
	}

	return strings.Join(lines, "\n")
}

// FormatMarkdown re-aligns every table in a markdown document and leaves
// other lines untouched.
func FormatMarkdown(content string) string {
	lines := strings.Split(content, "\n")

	var (
		out   []string
		table []string
	)

	flush := func() {
		if len(table) > 0 {
			out = append(out, processTable(table)...)
			table = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			table = append(table, line)

			continue
		}

		flush()

		out = append(out, line)
	}

	flush()

	return strings.Join(out, "\n")
}

func processTable(rows []string) []string {
	// A header needs its separator row.
	if len(rows) < 2 {
		return rows
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = splitRow(row)
	}

	align, ok := parseSeparator(cells[1])
	if !ok {
		return rows
	}

	t := Table{Header: cells[0], Rows: cells[2:], Align: align}

	return strings.Split(RenderTable(t), "\n")
}

func splitRow(row string) []string {
	parts := strings.Split(strings.TrimSpace(row), "|")

	// Leading and trailing pipes leave empty parts.
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}

	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}

	return cells
}

func parseSeparator(cells []string) ([]Align, bool) {
	align := make([]Align, len(cells))

	for i, cell := range cells {
		trimmed := strings.ReplaceAll(cell, " ", "")
		if strings.Trim(trimmed, "-:") != "" || !strings.Contains(trimmed, "-") {
			return nil, false
		}

		if strings.HasSuffix(trimmed, ":") && !strings.HasPrefix(trimmed, ":") {
			align[i] = AlignRight
		}
	}

	return align, true
}

func columnWidths(cols int, rows [][]string) []int {
	widths := make([]int, cols)
	for i := range widths {
		widths[i] = minWidth
	}

	for _, row := range rows {
		for i := 0; i < len(row) && i < cols; i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	return widths
}

func alignOf(align []Align, col int) Align {
	if col < len(align) {
		return align[col]
	}

	return AlignLeft
}

func writeRow(row []string, widths []int, align []Align) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range widths {
		content := ""
		if j < len(row) {
			content = row[j]
		}

		pad := strings.Repeat(" ", max(0, width-runewidth.StringWidth(content)))

		sb.WriteString(" ")

		if alignOf(align, j) == AlignRight {
			sb.WriteString(pad + content)
		} else {
			sb.WriteString(content + pad)
		}

		sb.WriteString(" |")
	}

	return sb.String()
}

func writeSeparator(widths []int, align []Align) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range widths {
		sb.WriteString(" ")

		if alignOf(align, j) == AlignRight {
			sb.WriteString(strings.Repeat("-", width-1) + ":")
		} else {
			sb.WriteString(strings.Repeat("-", width))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}
