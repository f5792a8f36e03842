// Package mongo implements the store interfaces on MongoDB: one collection
// per entity, change streams for snapshot delivery.
package mongo

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shopspring/decimal"
)

// Collection names.
const (
	collOrders    = "orders"
	collProducts  = "products"
	collCustomers = "customers"
	collSessions  = "sessions"
)

// Connect dials the deployment and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "ping mongo")
	}
	return client, nil
}

// toDecimal128 converts a shopspring decimal for BSON storage.
func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

// fromDecimal128 converts a stored BSON decimal back.
func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

// parseID converts an opaque identifier back into an ObjectID.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(err, "parse id %q", id)
	}
	return oid, nil
}
