package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devsurvey/internal/frame"
	"devsurvey/pkg/metadata"
)

const rawCSV = `Year,Country,AnnualSalary,python
2017,Germany,65000.5,yes
2018,"Côte d'Ivoire",,no
`

func openStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "survey.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestExport(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	df, err := frame.ReadCSV(strings.NewReader(rawCSV), map[string]series.Type{
		"Year":         series.Int,
		"AnnualSalary": series.Float,
	})
	require.NoError(t, err)

	entry := &metadata.Entry{Hash: "abc", RunID: "run-1"}
	require.NoError(t, s.Export(ctx, "raw", "merged_stack_raw", df, entry))

	n, err := s.Count(ctx, "merged_stack_raw")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var (
		year    int
		country string
		salary  sql.NullFloat64
	)

	row := s.db.QueryRowContext(ctx, `SELECT "Year", "Country", "AnnualSalary" FROM "merged_stack_raw" WHERE "Year" = 2018`)
	require.NoError(t, row.Scan(&year, &country, &salary))
	assert.Equal(t, 2018, year)
	assert.Equal(t, "Côte d'Ivoire", country)
	assert.False(t, salary.Valid)

	exports, err := s.Exports(ctx)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, "raw", exports[0].Stage)
	assert.Equal(t, 2, exports[0].Rows)
	assert.Equal(t, "run-1", exports[0].RunID)

	// A second export replaces the table and the record.
	require.NoError(t, s.Export(ctx, "raw", "merged_stack_raw", df.Subset([]int{0}), nil))

	n, err = s.Count(ctx, "merged_stack_raw")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	exports, err = s.Exports(ctx)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, 1, exports[0].Rows)
	assert.Empty(t, exports[0].RunID)
}

func TestExport_EmptyTableName(t *testing.T) {
	s := openStore(t)

	df, err := frame.ReadCSV(strings.NewReader(rawCSV), nil)
	require.NoError(t, err)

	require.ErrorIs(t, s.Export(context.Background(), "raw", " ", df, nil), ErrEmptyTableName)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"Annual Salary"`, quote("Annual Salary"))
	assert.Equal(t, `"a""b"`, quote(`a"b`))
}
