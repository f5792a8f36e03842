package customer

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer is a directory entry. Orders carry the customer name as free text;
// this directory is the authoritative contact list, not a foreign key target.
type Customer struct {
	ID     string
	Name   string
	Mobile string
	Gender string
}

// Repository defines persistence operations for the customer directory.
type Repository interface {
	List(ctx context.Context) ([]Customer, error)
	Create(ctx context.Context, c *Customer) (string, error)
	Update(ctx context.Context, id string, c *Customer) error
	Delete(ctx context.Context, id string) error
}
