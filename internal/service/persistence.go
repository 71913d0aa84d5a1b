package service

import (
	"context"
	"time"

	"store-service/internal/models"
)

// Persistence is the storage contract the engine operates through. Products
// and customers are mutable entities keyed by adapter-assigned ids; sales and
// supplies are append-only logs returned in append order.
type Persistence interface {
	// WithinTx runs fn against a transaction-scoped view of the adapter.
	// Mutations made by fn become visible atomically on return, or not at
	// all if fn returns an error.
	WithinTx(ctx context.Context, fn func(tx Persistence) error) error

	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	// GetProductForUpdate locks the product row for the duration of the
	// surrounding transaction.
	GetProductForUpdate(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	CreateCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, c *models.Customer) error

	AppendSale(ctx context.Context, s *models.Sale) error
	ListSales(ctx context.Context) ([]models.Sale, error)
	SalesBetween(ctx context.Context, start, end time.Time) ([]models.Sale, error)

	AppendSupply(ctx context.Context, s *models.Supply) error
	ListSupplies(ctx context.Context) ([]models.Supply, error)
	SuppliesBetween(ctx context.Context, start, end time.Time) ([]models.Supply, error)
}

// EventPublisher publishes domain events after a mutation commits.
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error
	PublishProductDeleted(ctx context.Context, event *models.ProductDeletedEvent) error
	PublishSaleRecorded(ctx context.Context, event *models.SaleRecordedEvent) error
	PublishSupplyReceived(ctx context.Context, event *models.SupplyReceivedEvent) error
}

// ReportCache caches computed reports for a short TTL.
type ReportCache interface {
	GetReport(ctx context.Context, key string, dest interface{}) (bool, error)
	SetReport(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
