package mongo

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bizdeskhq/bizdesk/internal/domain/product"
	"github.com/bizdeskhq/bizdesk/internal/storage"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository on the products collection.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository returns a ProductRepository using the given database.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(collProducts)}
}

type productDoc struct {
	ID    primitive.ObjectID   `bson:"_id,omitempty"`
	Name  string               `bson:"name"`
	Price primitive.Decimal128 `bson:"price"`
}

func fromProductDoc(d *productDoc) (product.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return product.Product{}, err
	}
	return product.Product{ID: d.ID.Hex(), Name: d.Name, Price: price}, nil
}

// List returns the whole catalog sorted by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, storage.Wrap("list products", err)
	}
	defer cur.Close(ctx)

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storage.Wrap("decode products", err)
	}

	out := make([]product.Product, len(docs))
	for i := range docs {
		p, err := fromProductDoc(&docs[i])
		if err != nil {
			return nil, storage.Wrap("decode product", err)
		}
		out[i] = p
	}
	return out, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, product.ErrNotFound
	}

	var doc productDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, storage.Wrap("get product", err)
	}

	p, err := fromProductDoc(&doc)
	if err != nil {
		return nil, storage.Wrap("decode product", err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := parseID(id)
		if err != nil {
			continue // unknown ids surface as not-found at the service layer
		}
		oids = append(oids, oid)
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, storage.Wrap("get products", err)
	}
	defer cur.Close(ctx)

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storage.Wrap("decode products", err)
	}

	out := make([]product.Product, len(docs))
	for i := range docs {
		p, err := fromProductDoc(&docs[i])
		if err != nil {
			return nil, storage.Wrap("decode product", err)
		}
		out[i] = p
	}
	return out, nil
}

// Create inserts a new catalog item.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) (string, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return "", storage.Wrap("encode product", err)
	}

	res, err := r.coll.InsertOne(ctx, productDoc{Name: p.Name, Price: price})
	if err != nil {
		return "", storage.Wrap("create product", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// Update replaces a catalog item's name and price.
func (r *ProductRepository) Update(ctx context.Context, id string, p *product.Product) error {
	oid, err := parseID(id)
	if err != nil {
		return product.ErrNotFound
	}
	price, err := toDecimal128(p.Price)
	if err != nil {
		return storage.Wrap("encode product", err)
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"name": p.Name, "price": price}})
	if err != nil {
		return storage.Wrap("update product", err)
	}
	if res.MatchedCount == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a catalog item.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return product.ErrNotFound
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return storage.Wrap("delete product", err)
	}
	return nil
}
