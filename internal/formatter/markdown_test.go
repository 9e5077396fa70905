package formatter

import (
	"strings"
	"testing"
)

func TestFormatMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "Basic table formatting",
			input: `
| Header 1 | Header 2 |
| --- | --- |
| val 1 | val 2 |
`,
			expected: `
| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |
`,
		},
		{
			name: "Fix excessive dashes",
			input: `
| Col A | Col B |
| ---------------------- | ---------------------------------- |
| A | B |
`,
			expected: `
| Col A | Col B |
| ----- | ----- |
| A     | B     |
`,
		},
		{
			name: "Right aligned column",
			input: `
| Year | Rows |
| --- | ---: |
| 2017 | 51392 |
| 2018 | 9 |
`,
			expected: `
| Year |  Rows |
| ---- | ----: |
| 2017 | 51392 |
| 2018 |     9 |
`,
		},
		{
			name: "Mixed content",
			input: `
# Title

| H1 | H2 |
| -- | -- |
| v1 | v2 |

Text after table.
`,
			expected: `
# Title

| H1  | H2  |
| --- | --- |
| v1  | v2  |

Text after table.
`,
		},
		{
			name: "Not a table without separator",
			input: `
| just | pipes |
| more | pipes |
`,
			expected: `
| just | pipes |
| more | pipes |
`,
		},
		{
			name: "Wide runes",
			input: `
| Country | Share |
| --- | --- |
| 日本 | 1.0% |
| Côte d'Ivoire | 0.1% |
`,
			expected: `
| Country       | Share |
| ------------- | ----- |
| 日本          | 1.0%  |
| Côte d'Ivoire | 0.1%  |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMarkdown(strings.TrimSpace(tt.input))

			if strings.TrimSpace(got) != strings.TrimSpace(tt.expected) {
				t.Errorf("FormatMarkdown() = \n%v\nwant \n%v", got, tt.expected)
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	got := RenderTable(Table{
		Header: []string{"Tier", "Jobs"},
		Rows:   [][]string{{"<60K", "3"}, {">160K", "12"}},
		Align:  []Align{AlignLeft, AlignRight},
	})

	want := strings.Join([]string{
		"| Tier  | Jobs |",
		"| ----- | ---: |",
		"| <60K  |    3 |",
		"| >160K |   12 |",
	}, "\n")

	if got != want {
		t.Errorf("RenderTable() = \n%s\nwant \n%s", got, want)
	}
}
