// Package report is the order aggregation engine: pure, side-effect-free
// transformations of an in-memory order snapshot into derived views. It
// performs no I/O and holds no state, so concurrent calls are independent.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bizdeskhq/bizdesk/internal/domain/order"
)

// Timeframe names a reporting window anchored at a caller-supplied instant.
type Timeframe string

const (
	// TimeframeWeekly covers the trailing seven days, bounds inclusive.
	TimeframeWeekly Timeframe = "weekly"
	// TimeframeMonthly covers the first of the current month through now.
	TimeframeMonthly Timeframe = "monthly"
	// TimeframeYearly covers January 1 of the current year through now.
	TimeframeYearly Timeframe = "yearly"
)

// InvalidTimeframeError indicates an unrecognized timeframe token. This is a
// hard failure, never a silent empty result.
type InvalidTimeframeError struct {
	Timeframe string
}

func (e *InvalidTimeframeError) Error() string {
	return fmt.Sprintf("invalid timeframe %q", e.Timeframe)
}

// Counts holds order tallies for three overlapping windows anchored at the
// same instant. An order can contribute to all three.
type Counts struct {
	Daily  int
	Weekly int
	Yearly int
}

// BucketCounts tallies the snapshot into daily, weekly, and yearly windows.
// Calendar comparisons (daily, yearly) use now's location; the caller decides
// the time zone by the instant it passes. Empty input yields all zeros.
func BucketCounts(orders order.Snapshot, now time.Time) Counts {
	var c Counts
	loc := now.Location()
	weekAgo := now.AddDate(0, 0, -7)

	for _, o := range orders {
		ts := o.CreatedAt.In(loc)

		y, m, d := ts.Date()
		ny, nm, nd := now.Date()
		if y == ny && m == nm && d == nd {
			c.Daily++
		}
		if !o.CreatedAt.Before(weekAgo) && !o.CreatedAt.After(now) {
			c.Weekly++
		}
		if y == ny {
			c.Yearly++
		}
	}
	return c
}

// FilterByTimeframe returns the orders whose timestamp falls between the
// window start and now, both bounds inclusive. Snapshot order is preserved.
func FilterByTimeframe(orders order.Snapshot, tf Timeframe, now time.Time) (order.Snapshot, error) {
	var start time.Time
	switch tf {
	case TimeframeWeekly:
		start = now.AddDate(0, 0, -7)
	case TimeframeMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case TimeframeYearly:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return nil, &InvalidTimeframeError{Timeframe: string(tf)}
	}

	filtered := make(order.Snapshot, 0, len(orders))
	for _, o := range orders {
		if !o.CreatedAt.Before(start) && !o.CreatedAt.After(now) {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// CustomerRollup aggregates one customer's orders: how many and for how much.
type CustomerRollup struct {
	Count int
	Total decimal.Decimal
}

// RollupByCustomer groups the snapshot by exact customer-name string. Names
// are not trimmed or case-folded; two spellings are two customers.
func RollupByCustomer(orders order.Snapshot) map[string]CustomerRollup {
	rollups := make(map[string]CustomerRollup)
	for _, o := range orders {
		r := rollups[o.CustomerName]
		r.Count++
		r.Total = r.Total.Add(o.Total)
		rollups[o.CustomerName] = r
	}
	return rollups
}

// Row is a flattened projection of one order for export. Derived, never
// persisted.
type Row struct {
	OrderID      string
	CustomerName string
	Total        decimal.Decimal
	CreatedAt    time.Time
	PaymentType  order.PaymentType
}

// BuildRows maps each order to a Row, preserving input order.
func BuildRows(orders order.Snapshot) []Row {
	rows := make([]Row, len(orders))
	for i, o := range orders {
		rows[i] = Row{
			OrderID:      o.ID,
			CustomerName: o.CustomerName,
			Total:        o.Total,
			CreatedAt:    o.CreatedAt,
			PaymentType:  o.PaymentType,
		}
	}
	return rows
}

// CustomerRow is one line of the per-customer report.
type CustomerRow struct {
	CustomerName string
	OrderCount   int
	Total        decimal.Decimal
}

// BuildCustomerRows flattens the rollup map into rows sorted by customer name
// ascending, so exports are reproducible.
func BuildCustomerRows(rollups map[string]CustomerRollup) []CustomerRow {
	rows := make([]CustomerRow, 0, len(rollups))
	for name, r := range rollups {
		rows = append(rows, CustomerRow{
			CustomerName: name,
			OrderCount:   r.Count,
			Total:        r.Total,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CustomerName < rows[j].CustomerName
	})
	return rows
}
