package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devsurvey/internal/frame"
)

func TestColumnName(t *testing.T) {
	tests := map[string]string{
		"C++":                  "c",
		"Microsoft SQL Server": "microsoftsqlserver",
		"IBM Cloud or Watson":  "ibmcloudorwatson",
		"IBM DB2":              "ibmdb2",
		"JavaScript":           "javascript",
		"R":                    "r",
	}

	for in, want := range tests {
		assert.Equal(t, want, ColumnName(in), "ColumnName(%q)", in)
	}
}

func TestVectorMatcher(t *testing.T) {
	tests := []struct {
		term  string
		value string
		want  bool
	}{
		{"Java", "Java;Python", true},
		{"Java", "JavaScript;Python", false},
		{"JavaScript", "Java; JavaScript", true},
		{"C++", "C;C++;Go", true},
		{"C++", "C; C#", false},
		{"R", "Python; R", true},
		{"R", "Ruby;Rust", false},
		{"SQL", "Microsoft SQL Server", true},
		{"SQL", "PostgreSQL;MySQL", false},
		{"python", "PYTHON", true},
		{"Google Cloud", "Google Cloud Platform", true},
		{"Amazon Web Services (AWS)", "Linux;Amazon Web Services (AWS)", true},
	}

	for _, tt := range tests {
		got := VectorMatcher(tt.term).MatchString(tt.value)
		assert.Equal(t, tt.want, got, "%q in %q", tt.term, tt.value)
	}
}

const platforms = `PlatformWorkedWith,LanguageWorkedWith
"Linux; Amazon Web Services (AWS); Windows",Python; C++
AWS,Java
,R
Microsoft Azure,JavaScript
`

func TestExtractVector(t *testing.T) {
	df, err := frame.ReadCSV(strings.NewReader(platforms), nil)
	require.NoError(t, err)

	langs := []string{"Python", "Java", "JavaScript", "C++", "R"}
	df, err = ExtractVector(df, "LanguageWorkedWith", langs)
	require.NoError(t, err)

	assert.Equal(t, []string{Yes, No, No, No}, df.Col("python").Records())
	assert.Equal(t, []string{No, Yes, No, No}, df.Col("java").Records())
	assert.Equal(t, []string{No, No, No, Yes}, df.Col("javascript").Records())
	assert.Equal(t, []string{Yes, No, No, No}, df.Col("c").Records())
	assert.Equal(t, []string{No, No, Yes, No}, df.Col("r").Records())

	df, err = ExtractVector(df, "PlatformWorkedWith", []string{"Linux", "Microsoft Azure"})
	require.NoError(t, err)
	assert.Equal(t, []string{Yes, No, No, No}, df.Col("linux").Records())
	assert.Equal(t, []string{No, No, No, Yes}, df.Col("microsoftazure").Records())
}

func TestExtractList(t *testing.T) {
	df, err := frame.ReadCSV(strings.NewReader(platforms), nil)
	require.NoError(t, err)

	terms := []string{"AWS", "aws", "Amazon Web Services", "Amazon Web Services (AWS)"}
	df, err = ExtractList(df, "PlatformWorkedWith", "aws", terms)
	require.NoError(t, err)

	// A missing answer is "no", never missing.
	assert.Equal(t, []string{Yes, Yes, No, No}, df.Col("aws").Records())
}

func TestExtract_MissingSourceColumn(t *testing.T) {
	df, err := frame.ReadCSV(strings.NewReader(platforms), nil)
	require.NoError(t, err)

	_, err = ExtractVector(df, "DatabaseWorkedWith", []string{"Redis"})
	require.ErrorIs(t, err, frame.ErrMissingColumn)
}

func TestVectorColumns(t *testing.T) {
	assert.Equal(t, []string{"mysql", "ibmdb2", "c"}, VectorColumns([]string{"MySQL", "IBM DB2", "C++"}))
}
