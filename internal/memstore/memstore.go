// Package memstore is an in-memory persistence adapter: id-keyed entity maps
// plus append-only sale/supply logs behind a single mutex, so mutating
// operations serialize exactly like their database-backed counterparts. It
// backs the engine and handler tests and works as an ephemeral store.
package memstore

import (
	"context"
	"sync"
	"time"

	"store-service/internal/models"
	"store-service/internal/service"
)

type Store struct {
	mu sync.Mutex

	products  map[int64]models.Product
	customers map[int64]models.Customer
	sales     []models.Sale
	supplies  []models.Supply

	nextProductID  int64
	nextCustomerID int64
	nextSaleID     int64
	nextSupplyID   int64
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		products:       make(map[int64]models.Product),
		customers:      make(map[int64]models.Customer),
		nextProductID:  1,
		nextCustomerID: 1,
		nextSaleID:     1,
		nextSupplyID:   1,
	}
}

// WithinTx serializes fn under the store mutex and rolls the whole store
// back to its pre-transaction state if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(tx service.Persistence) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&txStore{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	products  map[int64]models.Product
	customers map[int64]models.Customer
	sales     []models.Sale
	supplies  []models.Supply

	nextProductID  int64
	nextCustomerID int64
	nextSaleID     int64
	nextSupplyID   int64
}

func (s *Store) snapshot() snapshot {
	products := make(map[int64]models.Product, len(s.products))
	for id, p := range s.products {
		products[id] = p
	}
	customers := make(map[int64]models.Customer, len(s.customers))
	for id, c := range s.customers {
		customers[id] = c
	}
	return snapshot{
		products:       products,
		customers:      customers,
		sales:          append([]models.Sale(nil), s.sales...),
		supplies:       append([]models.Supply(nil), s.supplies...),
		nextProductID:  s.nextProductID,
		nextCustomerID: s.nextCustomerID,
		nextSaleID:     s.nextSaleID,
		nextSupplyID:   s.nextSupplyID,
	}
}

func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.customers = snap.customers
	s.sales = snap.sales
	s.supplies = snap.supplies
	s.nextProductID = snap.nextProductID
	s.nextCustomerID = snap.nextCustomerID
	s.nextSaleID = snap.nextSaleID
	s.nextSupplyID = snap.nextSupplyID
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createProduct(p)
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getProduct(id)
}

func (s *Store) GetProductForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getProduct(id)
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listProducts(), nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateProduct(p)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteProduct(id)
}

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCustomer(c)
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCustomer(id)
}

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCustomers(), nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateCustomer(c)
}

func (s *Store) AppendSale(ctx context.Context, sale *models.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendSale(sale)
}

func (s *Store) ListSales(ctx context.Context) ([]models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Sale(nil), s.sales...), nil
}

func (s *Store) SalesBetween(ctx context.Context, start, end time.Time) ([]models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.salesBetween(start, end), nil
}

func (s *Store) AppendSupply(ctx context.Context, supply *models.Supply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendSupply(supply)
}

func (s *Store) ListSupplies(ctx context.Context) ([]models.Supply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Supply(nil), s.supplies...), nil
}

func (s *Store) SuppliesBetween(ctx context.Context, start, end time.Time) ([]models.Supply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppliesBetween(start, end), nil
}

// txStore is the transaction-scoped view handed to WithinTx callbacks. The
// surrounding WithinTx already holds the mutex, so it calls the unlocked
// internals directly.
type txStore struct {
	s *Store
}

func (t *txStore) WithinTx(ctx context.Context, fn func(tx service.Persistence) error) error {
	return fn(t)
}

func (t *txStore) CreateProduct(ctx context.Context, p *models.Product) error {
	return t.s.createProduct(p)
}

func (t *txStore) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return t.s.getProduct(id)
}

func (t *txStore) GetProductForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	return t.s.getProduct(id)
}

func (t *txStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	return t.s.listProducts(), nil
}

func (t *txStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	return t.s.updateProduct(p)
}

func (t *txStore) DeleteProduct(ctx context.Context, id int64) error {
	return t.s.deleteProduct(id)
}

func (t *txStore) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return t.s.createCustomer(c)
}

func (t *txStore) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return t.s.getCustomer(id)
}

func (t *txStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return t.s.listCustomers(), nil
}

func (t *txStore) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	return t.s.updateCustomer(c)
}

func (t *txStore) AppendSale(ctx context.Context, sale *models.Sale) error {
	return t.s.appendSale(sale)
}

func (t *txStore) ListSales(ctx context.Context) ([]models.Sale, error) {
	return append([]models.Sale(nil), t.s.sales...), nil
}

func (t *txStore) SalesBetween(ctx context.Context, start, end time.Time) ([]models.Sale, error) {
	return t.s.salesBetween(start, end), nil
}

func (t *txStore) AppendSupply(ctx context.Context, supply *models.Supply) error {
	return t.s.appendSupply(supply)
}

func (t *txStore) ListSupplies(ctx context.Context) ([]models.Supply, error) {
	return append([]models.Supply(nil), t.s.supplies...), nil
}

func (t *txStore) SuppliesBetween(ctx context.Context, start, end time.Time) ([]models.Supply, error) {
	return t.s.suppliesBetween(start, end), nil
}

func (s *Store) createProduct(p *models.Product) error {
	p.ID = s.nextProductID
	s.nextProductID++
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.products[p.ID] = *p
	return nil
}

func (s *Store) getProduct(id int64) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "product", ID: id}
	}
	return &p, nil
}

func (s *Store) listProducts() []models.Product {
	products := make([]models.Product, 0, len(s.products))
	for id := int64(1); id < s.nextProductID; id++ {
		if p, ok := s.products[id]; ok {
			products = append(products, p)
		}
	}
	return products
}

func (s *Store) updateProduct(p *models.Product) error {
	if _, ok := s.products[p.ID]; !ok {
		return &models.NotFoundError{Entity: "product", ID: p.ID}
	}
	s.products[p.ID] = *p
	return nil
}

func (s *Store) deleteProduct(id int64) error {
	if _, ok := s.products[id]; !ok {
		return &models.NotFoundError{Entity: "product", ID: id}
	}
	delete(s.products, id)
	return nil
}

func (s *Store) createCustomer(c *models.Customer) error {
	c.ID = s.nextCustomerID
	s.nextCustomerID++
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.customers[c.ID] = *c
	return nil
}

func (s *Store) getCustomer(id int64) (*models.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "customer", ID: id}
	}
	return &c, nil
}

func (s *Store) listCustomers() []models.Customer {
	customers := make([]models.Customer, 0, len(s.customers))
	for id := int64(1); id < s.nextCustomerID; id++ {
		if c, ok := s.customers[id]; ok {
			customers = append(customers, c)
		}
	}
	return customers
}

func (s *Store) updateCustomer(c *models.Customer) error {
	if _, ok := s.customers[c.ID]; !ok {
		return &models.NotFoundError{Entity: "customer", ID: c.ID}
	}
	s.customers[c.ID] = *c
	return nil
}

func (s *Store) appendSale(sale *models.Sale) error {
	sale.ID = s.nextSaleID
	s.nextSaleID++
	s.sales = append(s.sales, *sale)
	return nil
}

func (s *Store) salesBetween(start, end time.Time) []models.Sale {
	sales := make([]models.Sale, 0)
	for _, sale := range s.sales {
		if !sale.Date.Before(start) && !sale.Date.After(end) {
			sales = append(sales, sale)
		}
	}
	return sales
}

func (s *Store) appendSupply(supply *models.Supply) error {
	supply.ID = s.nextSupplyID
	s.nextSupplyID++
	s.supplies = append(s.supplies, *supply)
	return nil
}

func (s *Store) suppliesBetween(start, end time.Time) []models.Supply {
	supplies := make([]models.Supply, 0)
	for _, supply := range s.supplies {
		if !supply.Date.Before(start) && !supply.Date.After(end) {
			supplies = append(supplies, supply)
		}
	}
	return supplies
}
