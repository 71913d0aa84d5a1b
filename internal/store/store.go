package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"store-service/internal/models"
	"store-service/internal/service"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store is the Postgres persistence adapter. Outside a transaction it runs
// against the pool; WithinTx hands out a view bound to a single transaction.
type Store struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, ext: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// WithinTx runs fn against a transaction-bound view of the store. Nested
// calls reuse the surrounding transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx service.Persistence) error) error {
	if _, ok := s.ext.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, ext: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateProduct inserts a product and fills in the assigned id.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, category, price, quantity, min_stock, barcode, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return sqlx.GetContext(ctx, s.ext, p, query,
		p.Name, p.Category, p.Price, p.Quantity, p.MinStock, p.Barcode, p.Description)
}

// GetProduct retrieves a product by ID
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := sqlx.GetContext(ctx, s.ext, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductForUpdate retrieves a product by ID with a row lock (FOR UPDATE)
func (s *Store) GetProductForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := sqlx.GetContext(ctx, s.ext, &product, "SELECT * FROM products WHERE id = $1 FOR UPDATE", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts retrieves the catalog in id order
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := sqlx.SelectContext(ctx, s.ext, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// UpdateProduct overwrites all mutable product fields
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.ext.ExecContext(ctx, `
		UPDATE products
		SET name = $1, category = $2, price = $3, quantity = $4, min_stock = $5, barcode = $6, description = $7
		WHERE id = $8`,
		p.Name, p.Category, p.Price, p.Quantity, p.MinStock, p.Barcode, p.Description, p.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "product", p.ID)
}

// DeleteProduct removes a product. Sales and supplies referencing it are
// kept; history outlives the catalog entry.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.ext.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, "product", id)
}

// CreateCustomer inserts a customer and fills in the assigned id.
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (name, phone, email, discount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, total_purchases, created_at`

	return sqlx.GetContext(ctx, s.ext, c, query, c.Name, c.Phone, c.Email, c.Discount)
}

// GetCustomer retrieves a customer by ID
func (s *Store) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := sqlx.GetContext(ctx, s.ext, &customer, "SELECT * FROM customers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "customer", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListCustomers retrieves all customers in id order
func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := sqlx.SelectContext(ctx, s.ext, &customers, "SELECT * FROM customers ORDER BY id")
	return customers, err
}

// UpdateCustomer overwrites all mutable customer fields
func (s *Store) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	res, err := s.ext.ExecContext(ctx, `
		UPDATE customers
		SET name = $1, phone = $2, email = $3, discount = $4, total_purchases = $5
		WHERE id = $6`,
		c.Name, c.Phone, c.Email, c.Discount, c.TotalPurchases, c.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "customer", c.ID)
}

func requireRow(res sql.Result, entity string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &models.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
