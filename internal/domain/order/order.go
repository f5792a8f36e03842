package order

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType enumerates the accepted payment methods for an order.
type PaymentType string

const (
	// PaymentCash marks an order settled in cash.
	PaymentCash PaymentType = "cash"
	// PaymentCredit marks an order settled on credit.
	PaymentCredit PaymentType = "credit"
)

// Valid reports whether p is one of the known payment types.
func (p PaymentType) Valid() bool {
	return p == PaymentCash || p == PaymentCredit
}

// LineItem is a single product line inside an order. Name and unit price are
// snapshotted from the catalog when the order is built; later catalog edits
// never change historical orders.
type LineItem struct {
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Order represents a customer purchase record. The ID is assigned by the
// store on creation. CreatedAt is set once at creation and never updated.
type Order struct {
	ID             string
	CustomerName   string
	CustomerMobile string
	Items          []LineItem
	PaymentType    PaymentType
	Total          decimal.Decimal
	CreatedAt      time.Time
}

// Snapshot is an immutable point-in-time copy of the order collection.
type Snapshot = []Order

// Repository defines persistence operations for orders. Implementations wrap
// backend failures in *storage.Error; callers never retry.
type Repository interface {
	Create(ctx context.Context, o *Order) (string, error)
	Update(ctx context.Context, id string, o *Order) error
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) (Snapshot, error)

	// Watch delivers a fresh full snapshot to onSnapshot after every store
	// mutation until ctx is cancelled or stop is called. Callbacks run on a
	// dedicated goroutine, one at a time.
	Watch(ctx context.Context, onSnapshot func(Snapshot)) (stop func(), err error)
}

// ComputeTotal returns the sum over items of unitPrice × quantity. The total
// is computed once at save time and stored; it is never re-derived lazily.
func ComputeTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// ParseQuantity converts raw quantity text from a form field into a count.
// Blank or non-numeric input yields 0, and negative values clamp to 0.
func ParseQuantity(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
