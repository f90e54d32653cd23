// Package source builds the table registry from configured sources:
// CSV files, SQL queries, partition directories, and object-store
// prefixes.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/valfrank/SimulatorML/internal/config"
	"github.com/valfrank/SimulatorML/pkg/table"
)

// Open builds one table from its source spec. CSV and SQL sources
// materialize eagerly; dir and object sources stay deferred and are
// only read when a metric folds over their partitions.
func Open(ctx context.Context, spec config.Source) (table.Table, error) {
	switch spec.Kind {
	case config.SourceCSV:
		return ReadCSV(spec.Path)
	case config.SourceSQL:
		return QuerySQL(ctx, spec.Driver, spec.DSN, spec.Query)
	case config.SourceDir:
		return table.NewPartitioned(NewDirReader(spec.Path)), nil
	case config.SourceObject:
		store, err := NewS3Store(spec.Endpoint, spec.AccessKey, spec.SecretKey, spec.UseSSL)
		if err != nil {
			return nil, err
		}
		return table.NewPartitioned(NewObjectReader(store, spec.Bucket, spec.Prefix)), nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q", spec.Kind)
	}
}

// Load opens every configured source concurrently and returns the
// registry keyed by table name.
func Load(ctx context.Context, specs map[string]config.Source) (map[string]table.Table, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	tables := make(map[string]table.Table, len(specs))
	for name, spec := range specs {
		g.Go(func() error {
			tbl, err := Open(ctx, spec)
			if err != nil {
				return fmt.Errorf("table %q: %w", name, err)
			}
			slog.Debug("opened table", "name", name, "kind", spec.Kind)

			mu.Lock()
			tables[name] = tbl
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
