// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/salesledger/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("record already exists")
)

// SaleFilter narrows ListSales. Zero-valued fields do not filter.
type SaleFilter struct {
	// UserID restricts results to sales owned by this user.
	UserID string
	// Status restricts results to sales in this state.
	Status models.SaleStatus
}

// UserStore defines persistence operations for accounts.
type UserStore interface {
	// CreateUser persists a new user.
	// Returns ErrDuplicate if the username is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername returns ErrNotFound if no user has that username.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID returns ErrNotFound if no user has that ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// SaleStore defines persistence operations for sales.
type SaleStore interface {
	// CreateSale persists a new sale.
	// The sale's ID and timestamps are populated by the store when unset.
	CreateSale(ctx context.Context, sale *models.Sale) error

	// GetSale returns ErrNotFound if the sale does not exist.
	GetSale(ctx context.Context, id string) (*models.Sale, error)

	// ListSales returns sales matching the filter, ordered by date of sale.
	ListSales(ctx context.Context, filter SaleFilter) ([]*models.Sale, error)

	// UpdateSale overwrites the mutable fields of an existing sale.
	// The owner is never changed. Returns ErrNotFound if the sale does not exist.
	UpdateSale(ctx context.Context, sale *models.Sale) error

	// DeleteSale permanently removes a sale.
	// Returns ErrNotFound if the sale does not exist.
	DeleteSale(ctx context.Context, id string) error
}

// Store combines all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	SaleStore

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
