package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeProductCreated = "PRODUCT_CREATED"
	EventTypeProductDeleted = "PRODUCT_DELETED"
	EventTypeSaleRecorded   = "SALE_RECORDED"
	EventTypeSupplyReceived = "SUPPLY_RECEIVED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductCreatedEvent published when a product is added to the catalog
type ProductCreatedEvent struct {
	BaseEvent
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Category  Category        `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	MinStock  int             `json:"min_stock"`
}

// ProductDeletedEvent published when a product is removed from the catalog.
// Historical sales and supplies keep referencing the id.
type ProductDeletedEvent struct {
	BaseEvent
	ProductID int64 `json:"product_id"`
}

// SaleRecordedEvent published after a sale commits. RemainingQuantity and
// MinStock let consumers detect low stock without a catalog lookup.
type SaleRecordedEvent struct {
	BaseEvent
	SaleID            int64           `json:"sale_id"`
	ProductID         int64           `json:"product_id"`
	CustomerID        *int64          `json:"customer_id,omitempty"`
	Quantity          int             `json:"quantity"`
	Total             decimal.Decimal `json:"total"`
	RemainingQuantity int             `json:"remaining_quantity"`
	MinStock          int             `json:"min_stock"`
}

// SupplyReceivedEvent published after a supply commits
type SupplyReceivedEvent struct {
	BaseEvent
	SupplyID    int64           `json:"supply_id"`
	Supplier    string          `json:"supplier"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	Cost        decimal.Decimal `json:"cost"`
	NewQuantity int             `json:"new_quantity"`
	MinStock    int             `json:"min_stock"`
}
