package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizdeskhq/bizdesk/internal/domain/customer"
	"github.com/bizdeskhq/bizdesk/internal/storage"
)

const (
	listCustomersSQL  = `SELECT id, name, mobile, gender FROM customers ORDER BY name`
	createCustomerSQL = `INSERT INTO customers (id, name, mobile, gender) VALUES ($1, $2, $3, $4)`
	updateCustomerSQL = `UPDATE customers SET name = $2, mobile = $3, gender = $4 WHERE id = $1`
	deleteCustomerSQL = `DELETE FROM customers WHERE id = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// List returns the whole customer directory ordered by name.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, storage.Wrap("list customers", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (customer.Customer, error) {
		var c customer.Customer
		err := row.Scan(&c.ID, &c.Name, &c.Mobile, &c.Gender)
		return c, err
	})
	if err != nil {
		return nil, storage.Wrap("scan customers", err)
	}
	return out, nil
}

// Create inserts a new directory entry under a store-assigned identifier.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) (string, error) {
	id := uuid.New().String()
	if _, err := r.pool.Exec(ctx, createCustomerSQL, id, c.Name, c.Mobile, c.Gender); err != nil {
		return "", storage.Wrap("create customer", err)
	}
	return id, nil
}

// Update replaces a directory entry.
func (r *CustomerRepository) Update(ctx context.Context, id string, c *customer.Customer) error {
	tag, err := r.pool.Exec(ctx, updateCustomerSQL, id, c.Name, c.Mobile, c.Gender)
	if err != nil {
		return storage.Wrap("update customer", err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

// Delete removes a directory entry.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteCustomerSQL, id); err != nil {
		return storage.Wrap("delete customer", err)
	}
	return nil
}
