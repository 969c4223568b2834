package ingest

import (
	"testing"

	"github.com/ginjaninja78/loyalty-card-report/internal/store"
	"github.com/ginjaninja78/loyalty-card-report/internal/types"
	"github.com/ginjaninja78/loyalty-card-report/internal/xlsxparser"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func putExport(t *testing.T, fs afero.Fs, name string, rows ...[]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	all := append([][]interface{}{{nil, "Карта", "Владелец", "Продажи", "Карты", "Выручка"}}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, 7+i)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, name, buf.Bytes(), 0o644))
}

func TestCollectConcatenatesInListingOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	putExport(t, fs, "in/b.xlsx",
		[]interface{}{nil, 12, "Bob", 1, 1, 30})
	putExport(t, fs, "in/a.XLSX",
		[]interface{}{nil, 7, "Alice", 1, 1, 100},
		[]interface{}{nil, 8, "Carol", 1, 1, 5})
	require.NoError(t, afero.WriteFile(fs, "in/notes.txt", []byte("ignored"), 0o644))
	require.NoError(t, fs.MkdirAll("in/Отчёты за Август 2026", 0o755))
	putExport(t, fs, "in/Отчёты за Август 2026/old.xlsx",
		[]interface{}{nil, 1, "Old", 1, 1, 999})

	agg := New(store.NewFSStore(fs), "", xlsxparser.DefaultLayout(), nil)
	result, err := agg.Collect("in")
	require.NoError(t, err)

	assert.Equal(t, []FileStats{{Name: "a.XLSX", Records: 2}, {Name: "b.xlsx", Records: 1}}, result.Files)
	require.Len(t, result.Records, 3)
	assert.Equal(t, "00007", result.Records[0].CardNumber)
	assert.Equal(t, "00012", result.Records[2].CardNumber)
	assert.True(t, types.SumRevenue(result.Records).Equal(decimal.NewFromInt(135)))
}

func TestCollectEmptyDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("in", 0o755))

	result, err := New(store.NewFSStore(fs), ".xlsx", xlsxparser.DefaultLayout(), nil).Collect("in")
	require.NoError(t, err)
	assert.NotNil(t, result.Records)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Files)
}

func TestCollectMissingDirectory(t *testing.T) {
	_, err := New(store.NewFSStore(afero.NewMemMapFs()), "", xlsxparser.DefaultLayout(), nil).Collect("in")
	assert.Error(t, err)
}

func TestCollectStopsOnMalformedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	putExport(t, fs, "in/a.xlsx", []interface{}{nil, "card?", "Alice", 1, 1, 100})

	_, err := New(store.NewFSStore(fs), "", xlsxparser.DefaultLayout(), nil).Collect("in")
	assert.ErrorIs(t, err, xlsxparser.ErrMalformedSource)
}
