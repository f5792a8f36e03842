package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizdeskhq/bizdesk/internal/domain/product"
	"github.com/bizdeskhq/bizdesk/internal/storage"
)

const (
	listProductsSQL    = `SELECT id, name, price FROM products ORDER BY name`
	getProductByIDSQL  = `SELECT id, name, price FROM products WHERE id = $1`
	getProductsByIDSQL = `SELECT id, name, price FROM products WHERE id = ANY($1)`
	createProductSQL   = `INSERT INTO products (id, name, price) VALUES ($1, $2, $3)`
	updateProductSQL   = `UPDATE products SET name = $2, price = $3 WHERE id = $1`
	deleteProductSQL   = `DELETE FROM products WHERE id = $1`
	upsertProductSQL   = `INSERT INTO products (id, name, price) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price)
	return p, err
}

// List returns the whole catalog ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, storage.Wrap("list products", err)
	}
	out, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, storage.Wrap("scan products", err)
	}
	return out, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, storage.Wrap("get product", err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, storage.Wrap("get product", err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDSQL, ids)
	if err != nil {
		return nil, storage.Wrap("get products", err)
	}
	out, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, storage.Wrap("scan products", err)
	}
	return out, nil
}

// Create inserts a new catalog item under a store-assigned identifier.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) (string, error) {
	id := uuid.New().String()
	if _, err := r.pool.Exec(ctx, createProductSQL, id, p.Name, p.Price); err != nil {
		return "", storage.Wrap("create product", err)
	}
	return id, nil
}

// Update replaces a catalog item's name and price.
func (r *ProductRepository) Update(ctx context.Context, id string, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL, id, p.Name, p.Price)
	if err != nil {
		return storage.Wrap("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a catalog item.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteProductSQL, id); err != nil {
		return storage.Wrap("delete product", err)
	}
	return nil
}

// Upsert inserts or refreshes a catalog item under a caller-chosen
// identifier. Used by the price-list ingest.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	if _, err := r.pool.Exec(ctx, upsertProductSQL, p.ID, p.Name, p.Price); err != nil {
		return storage.Wrap("upsert product", err)
	}
	return nil
}
