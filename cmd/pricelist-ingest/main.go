// Command pricelist-ingest loads gzipped supplier price lists into the
// product catalog. Each .gz file holds CSV lines of the form
//
//	sku,name,price
//
// Suppliers overlap heavily, so SKUs are deduplicated across files; when the
// same SKU appears more than once the lowest offered price wins.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bizdeskhq/bizdesk/internal/domain/product"
	"github.com/bizdeskhq/bizdesk/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
)

// offer is one supplier line: a catalog entry at an offered price.
type offer struct {
	sku   string
	name  string
	price decimal.Decimal
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing supplier .gz price lists")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("pricelist ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("pricelist ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list price lists")
	}
	if len(files) == 0 {
		return errors.Errorf("no .gz price lists found in %s", dataDir)
	}

	slog.Info("scanning price lists", slog.Int("files", len(files)))

	best, err := mergeOffers(ctx, files)
	if err != nil {
		return errors.Wrap(err, "merge offers")
	}

	slog.Info("distinct SKUs found", slog.Int("count", len(best)))

	if len(best) == 0 {
		slog.Info("nothing to ingest")
		return nil
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return writeProducts(ctx, postgres.NewProductRepository(pool), best)
}

// mergeOffers streams every file concurrently and keeps the lowest price per
// SKU. A shared bloom filter answers "definitely unseen" without touching the
// map lock for the common first-occurrence case; bloom positives fall through
// to an exact map check, so false positives only cost a lookup.
func mergeOffers(ctx context.Context, files []string) (map[string]offer, error) {
	var (
		mu     sync.Mutex
		seen   = bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		best   = make(map[string]offer)
		record = func(o offer) {
			mu.Lock()
			defer mu.Unlock()
			if !seen.TestAndAddString(o.sku) {
				best[o.sku] = o
				return
			}
			if cur, ok := best[o.sku]; !ok || o.price.LessThan(cur.price) {
				best[o.sku] = o
			}
		}
	)

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(scanPriceList(ctx, i, f, record))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return best, nil
}

func scanPriceList(ctx context.Context, idx int, path string, record func(offer)) func() error {
	return func() error {
		var lines, bad uint64

		err := streamGzFile(ctx, path, func(line string) {
			lines++
			if lines%progressEvery == 0 {
				slog.Info("scan progress", slog.Int("file", idx+1), slog.Uint64("lines", lines))
			}

			o, ok := parseOffer(line)
			if !ok {
				bad++
				return
			}
			record(o)
		})
		if err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("scan complete",
			slog.Int("file", idx+1),
			slog.Uint64("lines", lines),
			slog.Uint64("skipped", bad),
		)
		return nil
	}
}

// parseOffer splits a "sku,name,price" line. Malformed lines and non-positive
// prices are dropped rather than failing the whole ingest.
func parseOffer(line string) (offer, bool) {
	parts := strings.SplitN(line, ",", 3)
	if len(parts) != 3 {
		return offer{}, false
	}
	sku := strings.TrimSpace(parts[0])
	name := strings.TrimSpace(parts[1])
	if sku == "" || name == "" {
		return offer{}, false
	}
	price, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil || !price.IsPositive() {
		return offer{}, false
	}
	return offer{sku: sku, name: name, price: price}, true
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

func writeProducts(ctx context.Context, repo *postgres.ProductRepository, best map[string]offer) error {
	slog.Info("writing products", slog.Int("count", len(best)))

	written := 0
	for _, o := range best {
		p := &product.Product{ID: o.sku, Name: o.name, Price: o.price.Round(2)}
		if err := repo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", o.sku)
		}

		if written++; written%1000 == 0 || written == len(best) {
			slog.Info("write progress", slog.Int("written", written), slog.Int("total", len(best)))
		}
	}

	return nil
}
