package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func ordersSheet() Sheet {
	return Sheet{
		Name: "Orders",
		Columns: []Column{
			{Label: "Order ID", Format: FormatText},
			{Label: "Customer Name", Format: FormatText},
			{Label: "Amount", Format: FormatCurrency},
			{Label: "Date", Format: FormatDate},
		},
		Rows: [][]any{
			{"order-1", "Alice", decimal.NewFromInt(250), time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
			{"order-2", "Bob", decimal.RequireFromString("99.50"), time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)},
		},
	}
}

func TestXLSXWriterExport(t *testing.T) {
	dir := t.TempDir()
	w := NewXLSXWriter(dir)

	h, err := w.Export(context.Background(), ordersSheet())
	require.NoError(t, err)
	require.NotEmpty(t, h.Path)
	assert.Equal(t, dir, filepath.Dir(h.Path))
	assert.Equal(t, ".xlsx", filepath.Ext(h.Path))

	f, err := excelize.OpenFile(h.Path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.Contains(t, f.GetSheetList(), "Orders")

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Order ID", "Customer Name", "Amount", "Date"}, rows[0])
	assert.Equal(t, "order-1", rows[1][0])
	assert.Equal(t, "Alice", rows[1][1])
	assert.Equal(t, "order-2", rows[2][0])

	// Currency cells survive as numbers.
	v, err := f.GetCellValue("Orders", "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "250", v)
}

func TestXLSXWriterExportEmptySheet(t *testing.T) {
	w := NewXLSXWriter(t.TempDir())

	h, err := w.Export(context.Background(), Sheet{
		Name:    "Orders",
		Columns: []Column{{Label: "Order ID", Format: FormatText}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(h.Path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

func TestXLSXWriterCancelledContext(t *testing.T) {
	w := NewXLSXWriter(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Export(ctx, ordersSheet())
	var exportErr *Error
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "write", exportErr.Op)
}

func TestLocalSharerReturnsPath(t *testing.T) {
	url, err := LocalSharer{}.Share(context.Background(), Handle{Path: "/tmp/out.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out.xlsx", url)
}
