// Package export serializes tabular report data into spreadsheet files and
// hands them to a share mechanism. It preserves column and row order exactly
// as given; scalar formatting is driven by per-column format hints.
package export

import (
	"context"
	"fmt"
)

// Format is a per-column rendering hint for the sink.
type Format string

const (
	// FormatText renders values as plain text.
	FormatText Format = "text"
	// FormatNumber renders values as plain numbers.
	FormatNumber Format = "number"
	// FormatCurrency renders values as monetary amounts with two decimals.
	FormatCurrency Format = "currency"
	// FormatDate renders values as date-times.
	FormatDate Format = "date"
)

// Column is a header label plus its format hint.
type Column struct {
	Label  string
	Format Format
}

// Sheet is the dataset handed to a sink: a sheet name, a header row, and a
// body of scalar rows (string, number, decimal, or time values).
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Handle identifies an exported file.
type Handle struct {
	Path string
}

// Exporter persists a sheet as a spreadsheet file.
type Exporter interface {
	Export(ctx context.Context, sheet Sheet) (Handle, error)
}

// Sharer publishes an exported file and returns a URL the client can open.
type Sharer interface {
	Share(ctx context.Context, h Handle) (string, error)
}

// Error wraps a sink failure. Sinks never retry; the caller decides.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
