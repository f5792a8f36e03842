package export

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Built-in excelize number format IDs.
const (
	numFmtCurrency = 4  // #,##0.00
	numFmtDate     = 22 // m/d/yy h:mm
)

// XLSXWriter writes sheets as .xlsx files into a working directory.
type XLSXWriter struct {
	dir string
}

// NewXLSXWriter returns a writer that places files under dir.
func NewXLSXWriter(dir string) *XLSXWriter {
	return &XLSXWriter{dir: dir}
}

var _ Exporter = (*XLSXWriter)(nil)

// Export serializes the sheet into a timestamped .xlsx file. Column and row
// order follow the sheet exactly; currency and date columns get matching
// number formats.
func (w *XLSXWriter) Export(ctx context.Context, sheet Sheet) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, &Error{Op: "write", Err: err}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
		return Handle{}, &Error{Op: "write", Err: err}
	}

	header := make([]any, len(sheet.Columns))
	for i, col := range sheet.Columns {
		header[i] = col.Label
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return Handle{}, &Error{Op: "write", Err: err}
	}

	for i, row := range sheet.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return Handle{}, &Error{Op: "write", Err: err}
		}
		if err := f.SetSheetRow(sheet.Name, addr, &cells); err != nil {
			return Handle{}, &Error{Op: "write", Err: err}
		}
	}

	if err := w.applyFormats(f, sheet); err != nil {
		return Handle{}, &Error{Op: "format", Err: err}
	}

	name := fmt.Sprintf("%s-%s.xlsx", sheet.Name, time.Now().Format("20060102-150405"))
	path := filepath.Join(w.dir, name)
	if err := f.SaveAs(path); err != nil {
		return Handle{}, &Error{Op: "save", Err: err}
	}
	return Handle{Path: path}, nil
}

// applyFormats sets column-wide number formats from the sheet's hints.
func (w *XLSXWriter) applyFormats(f *excelize.File, sheet Sheet) error {
	if len(sheet.Rows) == 0 {
		return nil
	}
	for i, col := range sheet.Columns {
		var numFmt int
		switch col.Format {
		case FormatCurrency:
			numFmt = numFmtCurrency
		case FormatDate:
			numFmt = numFmtDate
		default:
			continue
		}

		style, err := f.NewStyle(&excelize.Style{NumFmt: numFmt})
		if err != nil {
			return err
		}
		top, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		bottom, err := excelize.CoordinatesToCellName(i+1, len(sheet.Rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, top, bottom, style); err != nil {
			return err
		}
	}
	return nil
}

// cellValue converts domain scalars into types excelize stores natively.
// Decimals become floats only at the serialization boundary.
func cellValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return v
}
