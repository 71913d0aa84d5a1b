package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock statuses derived from quantity vs. min stock
const (
	StockStatusInStock    = "IN_STOCK"
	StockStatusLowStock   = "LOW_STOCK"
	StockStatusOutOfStock = "OUT_OF_STOCK"
)

var stockStatusDisplay = map[string]string{
	StockStatusInStock:    "В наличии",
	StockStatusLowStock:   "Низкий запас",
	StockStatusOutOfStock: "Нет в наличии",
}

// StockStatusDisplay returns the localized display text for a stock status key.
func StockStatusDisplay(status string) string {
	return stockStatusDisplay[status]
}

// Product represents an inventory item
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Category    Category        `db:"category" json:"category"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	MinStock    int             `db:"min_stock" json:"min_stock"`
	Barcode     *string         `db:"barcode" json:"barcode,omitempty"`
	Description *string         `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Status derives the stock status from the current quantity.
func (p *Product) Status() string {
	switch {
	case p.Quantity == 0:
		return StockStatusOutOfStock
	case p.Quantity < p.MinStock:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// TotalValue is the stock value of the product: price times quantity on hand.
func (p *Product) TotalValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Customer represents a registered customer with a personal discount.
// TotalPurchases only ever grows; completed sales are the single writer.
type Customer struct {
	ID             int64           `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Phone          string          `db:"phone" json:"phone"`
	Email          *string         `db:"email" json:"email,omitempty"`
	Discount       decimal.Decimal `db:"discount" json:"discount"`
	TotalPurchases decimal.Decimal `db:"total_purchases" json:"total_purchases"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// Sale is an append-only record of an outbound transaction.
// Price is captured at sale time; Total already includes the customer discount.
type Sale struct {
	ID         int64           `db:"id" json:"id"`
	ProductID  int64           `db:"product_id" json:"product_id"`
	CustomerID *int64          `db:"customer_id" json:"customer_id,omitempty"`
	Quantity   int             `db:"quantity" json:"quantity"`
	Price      decimal.Decimal `db:"price" json:"price"`
	Total      decimal.Decimal `db:"total" json:"total"`
	Date       time.Time       `db:"date" json:"date"`
}

// Supply is an append-only record of an inbound stock replenishment.
type Supply struct {
	ID        int64           `db:"id" json:"id"`
	Supplier  string          `db:"supplier" json:"supplier"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Cost      decimal.Decimal `db:"cost" json:"cost"`
	Date      time.Time       `db:"date" json:"date"`
}

// ApplyDiscount reduces amount by a percentage discount and rounds to
// currency precision: amount * (1 - discount/100).
func ApplyDiscount(amount, discountPct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPct.Div(decimal.NewFromInt(100)))
	return amount.Mul(factor).Round(2)
}
