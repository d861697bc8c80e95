package store

import (
	"context"
	"errors"
	"time"

	"lapakku/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SnapshotProvider is the read-only view the report engine consumes.
// Implementations return immutable snapshots: the engine never writes
// and holds no reference across report invocations.
type SnapshotProvider interface {
	// OrdersBetween returns orders (items included) created in [from, to].
	OrdersBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Order, error)
	// AllOrders returns the full order history, oldest first.
	AllOrders(ctx context.Context) ([]domain.Order, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

// Repository adds the back-office CRUD surface on top of the snapshot view.
type Repository interface {
	SnapshotProvider

	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)

	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)

	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, limit int) ([]domain.Order, error)
}
