package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item. Orders reference products by name/price
// snapshot, never by live reference, so price edits here do not rewrite
// historical orders.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Repository defines catalog persistence operations.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) (string, error)
	Update(ctx context.Context, id string, p *Product) error
	Delete(ctx context.Context, id string) error
}
