package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bizdeskhq/bizdesk/internal/domain/order"
	"github.com/bizdeskhq/bizdesk/internal/storage"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository on the orders collection.
type OrderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository returns an OrderRepository using the given database.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(collOrders)}
}

type lineItemDoc struct {
	ProductName string               `bson:"productName"`
	UnitPrice   primitive.Decimal128 `bson:"unitPrice"`
	Quantity    int                  `bson:"quantity"`
}

type orderDoc struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	CustomerName   string               `bson:"customerName"`
	CustomerMobile string               `bson:"customerMobile,omitempty"`
	Items          []lineItemDoc        `bson:"items"`
	PaymentType    string               `bson:"paymentType"`
	Total          primitive.Decimal128 `bson:"total"`
	CreatedAt      time.Time            `bson:"createdAt"`
}

func toOrderDoc(o *order.Order) (*orderDoc, error) {
	items := make([]lineItemDoc, len(o.Items))
	for i, it := range o.Items {
		price, err := toDecimal128(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		items[i] = lineItemDoc{
			ProductName: it.ProductName,
			UnitPrice:   price,
			Quantity:    it.Quantity,
		}
	}
	total, err := toDecimal128(o.Total)
	if err != nil {
		return nil, err
	}
	return &orderDoc{
		CustomerName:   o.CustomerName,
		CustomerMobile: o.CustomerMobile,
		Items:          items,
		PaymentType:    string(o.PaymentType),
		Total:          total,
		CreatedAt:      o.CreatedAt,
	}, nil
}

func fromOrderDoc(d *orderDoc) (order.Order, error) {
	items := make([]order.LineItem, len(d.Items))
	for i, it := range d.Items {
		price, err := fromDecimal128(it.UnitPrice)
		if err != nil {
			return order.Order{}, err
		}
		items[i] = order.LineItem{
			ProductName: it.ProductName,
			UnitPrice:   price,
			Quantity:    it.Quantity,
		}
	}
	total, err := fromDecimal128(d.Total)
	if err != nil {
		return order.Order{}, err
	}
	return order.Order{
		ID:             d.ID.Hex(),
		CustomerName:   d.CustomerName,
		CustomerMobile: d.CustomerMobile,
		Items:          items,
		PaymentType:    order.PaymentType(d.PaymentType),
		Total:          total,
		CreatedAt:      d.CreatedAt,
	}, nil
}

// Create inserts a new order document. The store assigns the identifier.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (string, error) {
	doc, err := toOrderDoc(o)
	if err != nil {
		return "", storage.Wrap("encode order", err)
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", storage.Wrap("create order", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// Update replaces every field of the order except the creation timestamp.
func (r *OrderRepository) Update(ctx context.Context, id string, o *order.Order) error {
	oid, err := parseID(id)
	if err != nil {
		return storage.Wrap("update order", err)
	}
	doc, err := toOrderDoc(o)
	if err != nil {
		return storage.Wrap("encode order", err)
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"customerName":   doc.CustomerName,
		"customerMobile": doc.CustomerMobile,
		"items":          doc.Items,
		"paymentType":    doc.PaymentType,
		"total":          doc.Total,
	}})
	if err != nil {
		return storage.Wrap("update order", err)
	}
	if res.MatchedCount == 0 {
		return storage.Wrap("update order", mongo.ErrNoDocuments)
	}
	return nil
}

// Delete removes a single order document.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return storage.Wrap("delete order", err)
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return storage.Wrap("delete order", err)
	}
	return nil
}

// GetAll reads the full order collection as a snapshot.
func (r *OrderRepository) GetAll(ctx context.Context) (order.Snapshot, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, storage.Wrap("list orders", err)
	}
	defer cur.Close(ctx)

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storage.Wrap("decode orders", err)
	}

	snapshot := make(order.Snapshot, len(docs))
	for i := range docs {
		o, err := fromOrderDoc(&docs[i])
		if err != nil {
			return nil, storage.Wrap("decode order", err)
		}
		snapshot[i] = o
	}
	return snapshot, nil
}

// Watch opens a change stream on the collection and delivers a fresh full
// snapshot after every mutation. The returned stop function (or cancelling
// ctx) ends delivery.
func (r *OrderRepository) Watch(ctx context.Context, onSnapshot func(order.Snapshot)) (func(), error) {
	stream, err := r.coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, storage.Wrap("watch orders", err)
	}

	wctx, cancel := context.WithCancel(ctx)
	go func() {
		defer stream.Close(context.Background())
		for stream.Next(wctx) {
			snapshot, err := r.GetAll(wctx)
			if err != nil {
				// A failed re-read drops this delivery; the next change
				// produces a fresh one.
				continue
			}
			onSnapshot(snapshot)
		}
	}()
	return cancel, nil
}
