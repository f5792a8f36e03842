package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/bizdeskhq/bizdesk/internal/domain/order"
	"github.com/bizdeskhq/bizdesk/internal/export"
	"github.com/bizdeskhq/bizdesk/internal/report"
)

// customerReport is the export token for the per-customer rollup, alongside
// the plain timeframes.
const customerReport = "customer"

// reportLocation resolves the caller's time zone from the tz query parameter.
// Calendar windows are always anchored in a zone the caller names; the server
// zone is never assumed.
func reportLocation(r *http.Request) (*time.Location, error) {
	name := r.URL.Query().Get("tz")
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// ReportCounts serves the dashboard tallies from the live snapshot cache.
func (h *Handler) ReportCounts(w http.ResponseWriter, r *http.Request) {
	loc, err := reportLocation(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "unknown tz")
		return
	}

	counts := report.BucketCounts(h.snapshots.Snapshot(), time.Now().In(loc))

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("daily")
		e.Int(counts.Daily)
		e.FieldStart("weekly")
		e.Int(counts.Weekly)
		e.FieldStart("yearly")
		e.Int(counts.Yearly)
		e.ObjEnd()
	})
}

// ExportReport builds the requested report sheet from a fresh snapshot,
// serializes it, and shares the file. The response carries the share URL.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	loc, err := reportLocation(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "unknown tz")
		return
	}

	orders, err := h.orders.GetAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	kind := r.URL.Query().Get("timeframe")
	sheet, err := buildSheet(orders, kind, time.Now().In(loc))
	if err != nil {
		writeError(w, err)
		return
	}

	handle, err := h.exporter.Export(r.Context(), sheet)
	if err != nil {
		writeError(w, err)
		return
	}
	url, err := h.sharer.Share(r.Context(), handle)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("report")
		e.Str(kind)
		e.FieldStart("rows")
		e.Int(len(sheet.Rows))
		e.FieldStart("url")
		e.Str(url)
		e.ObjEnd()
	})
}

// buildSheet dispatches between the timeframe reports and the customer
// rollup report.
func buildSheet(orders order.Snapshot, kind string, now time.Time) (export.Sheet, error) {
	if kind == customerReport {
		rows := report.BuildCustomerRows(report.RollupByCustomer(orders))
		return report.CustomersSheet("customer-report", rows), nil
	}

	filtered, err := report.FilterByTimeframe(orders, report.Timeframe(kind), now)
	if err != nil {
		return export.Sheet{}, err
	}
	return report.OrdersSheet(kind+"-report", report.BuildRows(filtered)), nil
}
