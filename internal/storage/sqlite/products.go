package sqlite

import (
	"context"
	"fmt"
)

// ResolveProduct returns the id of the catalog entry matching
// (name, price) exactly, creating the entry if absent.
func (s *SQLiteStore) ResolveProduct(ctx context.Context, name string, price float64) (int64, error) {
	return resolveProduct(ctx, s.db, name, price)
}

// resolveProduct does a lookup-or-create against the product catalog.
// The insert-or-ignore against the unique (name, price) index means a
// concurrent writer resolving the same new pair cannot produce a
// duplicate entry; whoever loses the race sees the winner's row in the
// follow-up select.
func resolveProduct(ctx context.Context, q querier, name string, price float64) (int64, error) {
	_, err := q.ExecContext(ctx,
		"INSERT INTO products (name, price) VALUES (?, ?) ON CONFLICT(name, price) DO NOTHING",
		name, price,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert product: %w", err)
	}

	var id int64
	err = q.QueryRowContext(ctx,
		"SELECT id FROM products WHERE name = ? AND price = ?",
		name, price,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve product: %w", err)
	}
	return id, nil
}
