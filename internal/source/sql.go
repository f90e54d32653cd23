package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/valfrank/SimulatorML/pkg/table"
)

// sqlDrivers maps config driver names to database/sql driver names.
var sqlDrivers = map[string]string{
	"mysql":    "mysql",
	"postgres": "postgres",
}

// QuerySQL runs a query and materializes the result set as a table.
// Byte-slice cells from the driver become strings; everything else
// passes through as the driver returned it.
func QuerySQL(ctx context.Context, driver, dsn, query string) (*table.Local, error) {
	name, ok := sqlDrivers[driver]
	if !ok {
		return nil, fmt.Errorf("sql: unsupported driver %q", driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql: open: %w", err)
	}
	defer db.Close() //nolint:errcheck

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sql: query: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sql: columns: %w", err)
	}

	data := make(map[string][]any, len(names))
	for _, name := range names {
		data[name] = []any{}
	}

	scan := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range scan {
		ptrs[i] = &scan[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sql: scan: %w", err)
		}
		for i, name := range names {
			data[name] = append(data[name], normalizeSQLValue(scan[i]))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sql: rows: %w", err)
	}
	return table.FromColumns(names, data)
}

func normalizeSQLValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
