package report

import (
	"github.com/bizdeskhq/bizdesk/internal/export"
)

// OrdersSheet builds the export dataset for a timeframe report. Header and
// column order match the spreadsheet the business is used to.
func OrdersSheet(name string, rows []Row) export.Sheet {
	sheet := export.Sheet{
		Name: name,
		Columns: []export.Column{
			{Label: "Order ID", Format: export.FormatText},
			{Label: "Customer Name", Format: export.FormatText},
			{Label: "Amount", Format: export.FormatCurrency},
			{Label: "Date", Format: export.FormatDate},
			{Label: "Payment Type", Format: export.FormatText},
		},
		Rows: make([][]any, len(rows)),
	}
	for i, r := range rows {
		sheet.Rows[i] = []any{r.OrderID, r.CustomerName, r.Total, r.CreatedAt, string(r.PaymentType)}
	}
	return sheet
}

// CustomersSheet builds the export dataset for the per-customer report.
func CustomersSheet(name string, rows []CustomerRow) export.Sheet {
	sheet := export.Sheet{
		Name: name,
		Columns: []export.Column{
			{Label: "Customer Name", Format: export.FormatText},
			{Label: "Total Orders", Format: export.FormatNumber},
			{Label: "Total Amount", Format: export.FormatCurrency},
		},
		Rows: make([][]any, len(rows)),
	}
	for i, r := range rows {
		sheet.Rows[i] = []any{r.CustomerName, r.OrderCount, r.Total}
	}
	return sheet
}
