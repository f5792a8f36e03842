package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bizdeskhq/bizdesk/internal/domain/order"
	"github.com/bizdeskhq/bizdesk/internal/storage"
)

const (
	createOrderSQL = `INSERT INTO orders (id, customer_name, customer_mobile, items, payment_type, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	// created_at is deliberately absent: the creation timestamp is immutable.
	updateOrderSQL = `UPDATE orders
		SET customer_name = $2, customer_mobile = $3, items = $4, payment_type = $5, total = $6
		WHERE id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	getAllOrdersSQL = `SELECT id, customer_name, customer_mobile, items, payment_type, total, created_at
		FROM orders ORDER BY created_at`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// lineItemJSON is the JSONB shape of one order line.
type lineItemJSON struct {
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

func marshalItems(items []order.LineItem) ([]byte, error) {
	out := make([]lineItemJSON, len(items))
	for i, it := range items {
		out[i] = lineItemJSON{ProductName: it.ProductName, UnitPrice: it.UnitPrice, Quantity: it.Quantity}
	}
	return json.Marshal(out)
}

func unmarshalItems(data []byte) ([]order.LineItem, error) {
	var raw []lineItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	items := make([]order.LineItem, len(raw))
	for i, it := range raw {
		items[i] = order.LineItem{ProductName: it.ProductName, UnitPrice: it.UnitPrice, Quantity: it.Quantity}
	}
	return items, nil
}

// Create persists a new order under a store-assigned identifier.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (string, error) {
	itemsJSON, err := marshalItems(o.Items)
	if err != nil {
		return "", storage.Wrap("encode order items", err)
	}

	id := uuid.New().String()
	_, err = r.pool.Exec(ctx, createOrderSQL,
		id, o.CustomerName, o.CustomerMobile, itemsJSON, string(o.PaymentType), o.Total, o.CreatedAt,
	)
	if err != nil {
		return "", storage.Wrap("create order", err)
	}
	return id, nil
}

// Update replaces every field of the order except created_at.
func (r *OrderRepository) Update(ctx context.Context, id string, o *order.Order) error {
	itemsJSON, err := marshalItems(o.Items)
	if err != nil {
		return storage.Wrap("encode order items", err)
	}

	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		id, o.CustomerName, o.CustomerMobile, itemsJSON, string(o.PaymentType), o.Total,
	)
	if err != nil {
		return storage.Wrap("update order", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.Wrap("update order", pgx.ErrNoRows)
	}
	return nil
}

// Delete removes a single order row.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteOrderSQL, id); err != nil {
		return storage.Wrap("delete order", err)
	}
	return nil
}

// GetAll reads the full orders table as a snapshot.
func (r *OrderRepository) GetAll(ctx context.Context) (order.Snapshot, error) {
	rows, err := r.pool.Query(ctx, getAllOrdersSQL)
	if err != nil {
		return nil, storage.Wrap("list orders", err)
	}

	snapshot, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, storage.Wrap("scan orders", err)
	}
	return snapshot, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o           order.Order
		itemsJSON   []byte
		paymentType string
		createdAt   time.Time
	)
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerMobile, &itemsJSON, &paymentType, &o.Total, &createdAt)
	if err != nil {
		return order.Order{}, err
	}
	if o.Items, err = unmarshalItems(itemsJSON); err != nil {
		return order.Order{}, err
	}
	o.PaymentType = order.PaymentType(paymentType)
	o.CreatedAt = createdAt
	return o, nil
}

// Watch LISTENs on the orders_changed channel (raised by a statement trigger)
// and delivers a fresh full snapshot per notification.
func (r *OrderRepository) Watch(ctx context.Context, onSnapshot func(order.Snapshot)) (func(), error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, storage.Wrap("watch orders", err)
	}
	if _, err := conn.Exec(ctx, `LISTEN orders_changed`); err != nil {
		conn.Release()
		return nil, storage.Wrap("watch orders", err)
	}

	wctx, cancel := context.WithCancel(ctx)
	go func() {
		defer conn.Release()
		for {
			if _, err := conn.Conn().WaitForNotification(wctx); err != nil {
				return // cancelled or connection lost
			}
			snapshot, err := r.GetAll(wctx)
			if err != nil {
				continue
			}
			onSnapshot(snapshot)
		}
	}()
	return cancel, nil
}
