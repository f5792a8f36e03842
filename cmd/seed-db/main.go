// Command seed-db loads the starter product catalog and one demo customer
// into PostgreSQL. It is idempotent: re-running updates prices in place.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/bizdeskhq/bizdesk/internal/domain/customer"
	"github.com/bizdeskhq/bizdesk/internal/domain/product"
	"github.com/bizdeskhq/bizdesk/internal/storage/postgres"
)

type productJSON struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, postgres.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedDemoCustomer(ctx, postgres.NewCustomerRepository(pool)); err != nil {
		return errors.Wrap(err, "seed demo customer")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if p.ID == "" {
			return errors.Errorf("product %q has no id", p.Name)
		}
		if err := repo.Upsert(ctx, &product.Product{ID: p.ID, Name: p.Name, Price: p.Price}); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedDemoCustomer(ctx context.Context, repo *postgres.CustomerRepository) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list customers")
	}
	if len(existing) > 0 {
		slog.Info("customers already present, skipping demo customer")
		return nil
	}

	id, err := repo.Create(ctx, &customer.Customer{
		Name:   "Walk-in",
		Mobile: "0000000000",
		Gender: "other",
	})
	if err != nil {
		return errors.Wrap(err, "create demo customer")
	}

	slog.Info("created demo customer", slog.String("id", id))
	return nil
}
