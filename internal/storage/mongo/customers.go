package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bizdeskhq/bizdesk/internal/domain/customer"
	"github.com/bizdeskhq/bizdesk/internal/storage"
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository on the customers
// collection.
type CustomerRepository struct {
	coll *mongo.Collection
}

// NewCustomerRepository returns a CustomerRepository using the given database.
func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{coll: db.Collection(collCustomers)}
}

type customerDoc struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Mobile string             `bson:"mobile,omitempty"`
	Gender string             `bson:"gender,omitempty"`
}

// List returns the whole customer directory.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, storage.Wrap("list customers", err)
	}
	defer cur.Close(ctx)

	var docs []customerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storage.Wrap("decode customers", err)
	}

	out := make([]customer.Customer, len(docs))
	for i, d := range docs {
		out[i] = customer.Customer{ID: d.ID.Hex(), Name: d.Name, Mobile: d.Mobile, Gender: d.Gender}
	}
	return out, nil
}

// Create inserts a new directory entry.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) (string, error) {
	res, err := r.coll.InsertOne(ctx, customerDoc{Name: c.Name, Mobile: c.Mobile, Gender: c.Gender})
	if err != nil {
		return "", storage.Wrap("create customer", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// Update replaces a directory entry.
func (r *CustomerRepository) Update(ctx context.Context, id string, c *customer.Customer) error {
	oid, err := parseID(id)
	if err != nil {
		return customer.ErrNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"name": c.Name, "mobile": c.Mobile, "gender": c.Gender}})
	if err != nil {
		return storage.Wrap("update customer", err)
	}
	if res.MatchedCount == 0 {
		return customer.ErrNotFound
	}
	return nil
}

// Delete removes a directory entry.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return customer.ErrNotFound
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return storage.Wrap("delete customer", err)
	}
	return nil
}
