// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/olchaban/receipts/internal/models"
)

// ErrReceiptNotFound is returned when a requested receipt id does not
// exist. It is distinct from validation errors so callers can surface
// a proper NotFound.
var ErrReceiptNotFound = errors.New("receipt not found")

// Store defines the persistence operations for users, the product
// catalog and receipts. The abstraction allows swapping storage
// backends (SQLite, PostgreSQL, etc.) without changing the service
// layer.
type Store interface {
	// CreateUser persists a new user. The user.ID field is populated
	// by the store.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves a user by username.
	// Returns (nil, nil) if no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID retrieves a user by id.
	// Returns (nil, nil) if no such user exists.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// ResolveProduct returns the id of the catalog entry matching
	// (name, price) exactly, creating the entry if absent. An existing
	// entry is never mutated.
	ResolveProduct(ctx context.Context, name string, price float64) (int64, error)

	// CreateReceipt persists the receipt header and all its line items
	// in one atomic unit, resolving each item through the product
	// catalog. Readers never observe a receipt with a subset of its
	// items. The receipt.ID field and each item's ProductID are
	// populated by the store.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error

	// GetReceipt retrieves a receipt with its line items and owner
	// username. Returns ErrReceiptNotFound if the id does not exist.
	GetReceipt(ctx context.Context, id int64) (*models.Receipt, error)

	// ListReceipts returns the user's receipts matching the filter,
	// ordered by primary key, paginated by the filter's Skip/Limit.
	ListReceipts(ctx context.Context, userID int64, filter models.ReceiptFilter) ([]*models.Receipt, error)

	// Close releases any resources held by the store.
	Close() error
}
