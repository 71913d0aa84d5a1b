package store

import (
	"context"
	"time"

	"store-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// The sales and supplies tables are append-only: rows are never updated or
// deleted, and product_id intentionally has no foreign key so history
// survives product deletion.

// AppendSale appends a sale and fills in the assigned id.
func (s *Store) AppendSale(ctx context.Context, sale *models.Sale) error {
	query := `
		INSERT INTO sales (product_id, customer_id, quantity, price, total, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return sqlx.GetContext(ctx, s.ext, &sale.ID, query,
		sale.ProductID, sale.CustomerID, sale.Quantity, sale.Price, sale.Total, sale.Date)
}

// ListSales retrieves the full sales log in append order
func (s *Store) ListSales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	err := sqlx.SelectContext(ctx, s.ext, &sales, "SELECT * FROM sales ORDER BY id")
	return sales, err
}

// SalesBetween retrieves sales within the period, inclusive on both ends
func (s *Store) SalesBetween(ctx context.Context, start, end time.Time) ([]models.Sale, error) {
	var sales []models.Sale
	err := sqlx.SelectContext(ctx, s.ext, &sales,
		"SELECT * FROM sales WHERE date BETWEEN $1 AND $2 ORDER BY id", start, end)
	return sales, err
}

// AppendSupply appends a supply and fills in the assigned id.
func (s *Store) AppendSupply(ctx context.Context, supply *models.Supply) error {
	query := `
		INSERT INTO supplies (supplier, product_id, quantity, cost, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return sqlx.GetContext(ctx, s.ext, &supply.ID, query,
		supply.Supplier, supply.ProductID, supply.Quantity, supply.Cost, supply.Date)
}

// ListSupplies retrieves the full supplies log in append order
func (s *Store) ListSupplies(ctx context.Context) ([]models.Supply, error) {
	var supplies []models.Supply
	err := sqlx.SelectContext(ctx, s.ext, &supplies, "SELECT * FROM supplies ORDER BY id")
	return supplies, err
}

// SuppliesBetween retrieves supplies within the period, inclusive on both ends
func (s *Store) SuppliesBetween(ctx context.Context, start, end time.Time) ([]models.Supply, error) {
	var supplies []models.Supply
	err := sqlx.SelectContext(ctx, s.ext, &supplies,
		"SELECT * FROM supplies WHERE date BETWEEN $1 AND $2 ORDER BY id", start, end)
	return supplies, err
}
