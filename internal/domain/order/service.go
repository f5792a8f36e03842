package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/bizdeskhq/bizdesk/internal/domain/product"
)

// ProductNotFoundError indicates a requested product does not exist in the
// catalog at order-build time.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return "product " + e.ProductID + " not found"
}

// ItemInput is one line of the order form. Quantity arrives as raw text and
// goes through ParseQuantity.
type ItemInput struct {
	ProductID string
	Quantity  string
}

// SaveRequest holds the input for creating or replacing an order.
type SaveRequest struct {
	CustomerName   string
	CustomerMobile string
	Items          []ItemInput
	PaymentType    PaymentType
}

// Service encapsulates the order save/update/delete flows: it snapshots
// product names and prices from the catalog, computes the stored total, and
// validates the record before handing it to the repository.
type Service struct {
	products product.Repository
	orders   Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, orders Repository) *Service {
	return &Service{products: products, orders: orders}
}

// Create builds an order from the request, assigns the creation timestamp,
// and persists it. The store assigns and returns the order ID.
func (s *Service) Create(ctx context.Context, req SaveRequest) (*Order, error) {
	o, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = time.Now()

	id, err := s.orders.Create(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	o.ID = id
	return o, nil
}

// Update replaces the order identified by id with a freshly built record.
// The original creation timestamp is preserved by the repository.
func (s *Service) Update(ctx context.Context, id string, req SaveRequest) (*Order, error) {
	o, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Update(ctx, id, o); err != nil {
		return nil, errors.Wrapf(err, "update order %q", id)
	}
	o.ID = id
	return o, nil
}

// Delete removes a single order.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "delete order %q", id)
	}
	return nil
}

// build resolves catalog products, snapshots their names and prices into line
// items, computes the total, and validates the assembled order.
func (s *Service) build(ctx context.Context, req SaveRequest) (*Order, error) {
	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ProductID
	}

	var byID map[string]product.Product
	if len(ids) > 0 {
		fetched, err := s.products.GetByIDs(ctx, ids)
		if err != nil {
			return nil, errors.Wrap(err, "get products")
		}
		byID = make(map[string]product.Product, len(fetched))
		for _, p := range fetched {
			byID[p.ID] = p
		}
	}

	items := make([]LineItem, 0, len(req.Items))
	for _, in := range req.Items {
		p, ok := byID[in.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: in.ProductID}
		}
		items = append(items, LineItem{
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    ParseQuantity(in.Quantity),
		})
	}

	o := &Order{
		CustomerName:   req.CustomerName,
		CustomerMobile: req.CustomerMobile,
		Items:          items,
		PaymentType:    req.PaymentType,
		Total:          ComputeTotal(items).Round(2),
	}
	if err := Validate(o); err != nil {
		return nil, err
	}
	return o, nil
}
