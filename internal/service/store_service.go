package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"store-service/internal/models"
	"store-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StoreService is the transaction engine: it validates and applies the
// mutating store operations against the persistence adapter. Every mutation
// runs inside a single adapter transaction, so readers never observe a
// partially applied operation.
type StoreService struct {
	db              Persistence
	events          EventPublisher
	logger          *zap.Logger
	defaultMinStock int
}

// NewStoreService creates a new store service
func NewStoreService(db Persistence, events EventPublisher, defaultMinStock int) *StoreService {
	return &StoreService{
		db:              db,
		events:          events,
		logger:          util.GetLogger(),
		defaultMinStock: defaultMinStock,
	}
}

// CreateProductRequest represents a request to add a product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	MinStock    *int            `json:"min_stock,omitempty"`
	Barcode     *string         `json:"barcode,omitempty"`
	Description *string         `json:"description,omitempty"`
}

// UpdateProductRequest is a partial update; nil fields are left untouched.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	MinStock    *int             `json:"min_stock,omitempty"`
	Barcode     *string          `json:"barcode,omitempty"`
	Description *string          `json:"description,omitempty"`
}

// CreateCustomerRequest represents a request to register a customer
type CreateCustomerRequest struct {
	Name     string          `json:"name" binding:"required"`
	Phone    string          `json:"phone" binding:"required"`
	Email    *string         `json:"email,omitempty"`
	Discount decimal.Decimal `json:"discount"`
}

// UpdateCustomerRequest is a partial update; total_purchases is not
// patchable, only completed sales move it.
type UpdateCustomerRequest struct {
	Name     *string          `json:"name,omitempty"`
	Phone    *string          `json:"phone,omitempty"`
	Email    *string          `json:"email,omitempty"`
	Discount *decimal.Decimal `json:"discount,omitempty"`
}

// RecordSaleRequest represents a request to sell a product
type RecordSaleRequest struct {
	ProductID  int64  `json:"product_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	CustomerID *int64 `json:"customer_id,omitempty"`
}

// RecordSupplyRequest represents an inbound stock replenishment
type RecordSupplyRequest struct {
	Supplier  string          `json:"supplier" binding:"required"`
	ProductID int64           `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	Cost      decimal.Decimal `json:"cost"`
}

// CreateProduct adds a product to the catalog with an adapter-assigned id.
func (s *StoreService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.CreateProduct")
	defer span.End()

	category, err := models.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	minStock := s.defaultMinStock
	if req.MinStock != nil {
		minStock = *req.MinStock
	}

	if err := validateProductFields(req.Name, req.Price, req.Quantity, minStock); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Category:    category,
		Price:       req.Price,
		Quantity:    req.Quantity,
		MinStock:    minStock,
		Barcode:     req.Barcode,
		Description: req.Description,
	}

	if err := s.db.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("category", string(product.Category)))

	event := &models.ProductCreatedEvent{
		BaseEvent: newBaseEvent(models.EventTypeProductCreated),
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price,
		Quantity:  product.Quantity,
		MinStock:  product.MinStock,
	}
	if err := s.events.PublishProductCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductCreated event", zap.Error(err))
	}

	return product, nil
}

// GetProduct retrieves a product by id.
func (s *StoreService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.db.GetProduct(ctx, id)
}

// ListProducts retrieves the full catalog in storage order.
func (s *StoreService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.db.ListProducts(ctx)
}

// SearchProducts matches the query case-insensitively against product names
// and category display text, preserving storage order.
func (s *StoreService) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	products, err := s.db.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	results := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category.Display()), q) {
			results = append(results, p)
		}
	}
	return results, nil
}

// UpdateProduct applies a partial update to a product.
func (s *StoreService) UpdateProduct(ctx context.Context, id int64, req *UpdateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.UpdateProduct")
	defer span.End()

	var updated *models.Product
	err := s.db.WithinTx(ctx, func(tx Persistence) error {
		product, err := tx.GetProductForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			product.Name = strings.TrimSpace(*req.Name)
		}
		if req.Category != nil {
			category, err := models.ParseCategory(*req.Category)
			if err != nil {
				return err
			}
			product.Category = category
		}
		if req.Price != nil {
			product.Price = *req.Price
		}
		if req.Quantity != nil {
			product.Quantity = *req.Quantity
		}
		if req.MinStock != nil {
			product.MinStock = *req.MinStock
		}
		if req.Barcode != nil {
			product.Barcode = req.Barcode
		}
		if req.Description != nil {
			product.Description = req.Description
		}

		if err := validateProductFields(product.Name, product.Price, product.Quantity, product.MinStock); err != nil {
			return err
		}

		if err := tx.UpdateProduct(ctx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.Int64("product_id", id))
	return updated, nil
}

// DeleteProduct removes a product from the catalog. Historical sales and
// supplies referencing the id remain valid read-only records.
func (s *StoreService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "StoreService.DeleteProduct")
	defer span.End()

	if err := s.db.DeleteProduct(ctx, id); err != nil {
		return err
	}

	util.ProductsDeletedTotal.Inc()
	s.logger.Info("Product deleted", zap.Int64("product_id", id))

	event := &models.ProductDeletedEvent{
		BaseEvent: newBaseEvent(models.EventTypeProductDeleted),
		ProductID: id,
	}
	if err := s.events.PublishProductDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductDeleted event", zap.Error(err))
	}
	return nil
}

// CreateCustomer registers a customer with an adapter-assigned id.
func (s *StoreService) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.CreateCustomer")
	defer span.End()

	if err := validateCustomerFields(req.Name, req.Phone, req.Discount); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		Name:           strings.TrimSpace(req.Name),
		Phone:          req.Phone,
		Email:          req.Email,
		Discount:       req.Discount,
		TotalPurchases: decimal.Zero,
	}

	if err := s.db.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	util.CustomersCreatedTotal.Inc()
	s.logger.Info("Customer created", zap.Int64("customer_id", customer.ID))
	return customer, nil
}

// GetCustomer retrieves a customer by id.
func (s *StoreService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.db.GetCustomer(ctx, id)
}

// ListCustomers retrieves all customers.
func (s *StoreService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.db.ListCustomers(ctx)
}

// UpdateCustomer applies a partial update to a customer.
func (s *StoreService) UpdateCustomer(ctx context.Context, id int64, req *UpdateCustomerRequest) (*models.Customer, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.UpdateCustomer")
	defer span.End()

	var updated *models.Customer
	err := s.db.WithinTx(ctx, func(tx Persistence) error {
		customer, err := tx.GetCustomer(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			customer.Name = strings.TrimSpace(*req.Name)
		}
		if req.Phone != nil {
			customer.Phone = *req.Phone
		}
		if req.Email != nil {
			customer.Email = req.Email
		}
		if req.Discount != nil {
			customer.Discount = *req.Discount
		}

		if err := validateCustomerFields(customer.Name, customer.Phone, customer.Discount); err != nil {
			return err
		}

		if err := tx.UpdateCustomer(ctx, customer); err != nil {
			return err
		}
		updated = customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Customer updated", zap.Int64("customer_id", id))
	return updated, nil
}

// RecordSale sells a product: checks stock, captures the current unit price,
// applies the customer discount, decrements stock, appends the sale and bumps
// the customer's purchase total — all in one transaction.
func (s *StoreService) RecordSale(ctx context.Context, req *RecordSaleRequest) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.RecordSale")
	defer span.End()

	start := time.Now()
	defer func() {
		util.SaleProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	if req.Quantity <= 0 {
		util.SalesFailedTotal.WithLabelValues("validation").Inc()
		return nil, &models.ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	var sale *models.Sale
	var remaining, minStock int
	err := s.db.WithinTx(ctx, func(tx Persistence) error {
		product, err := tx.GetProductForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}

		if product.Quantity < req.Quantity {
			return &models.InsufficientStockError{
				ProductID: product.ID,
				Available: product.Quantity,
				Requested: req.Quantity,
			}
		}

		var customer *models.Customer
		if req.CustomerID != nil {
			customer, err = tx.GetCustomer(ctx, *req.CustomerID)
			if err != nil {
				return err
			}
		}

		total := product.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
		if customer != nil {
			total = models.ApplyDiscount(total, customer.Discount)
		} else {
			total = total.Round(2)
		}

		product.Quantity -= req.Quantity
		if err := tx.UpdateProduct(ctx, product); err != nil {
			return err
		}
		remaining = product.Quantity
		minStock = product.MinStock

		sale = &models.Sale{
			ProductID:  product.ID,
			CustomerID: req.CustomerID,
			Quantity:   req.Quantity,
			Price:      product.Price,
			Total:      total,
			Date:       time.Now(),
		}
		if err := tx.AppendSale(ctx, sale); err != nil {
			return err
		}

		if customer != nil {
			customer.TotalPurchases = customer.TotalPurchases.Add(total)
			if err := tx.UpdateCustomer(ctx, customer); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		util.SalesFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	util.SalesRecordedTotal.Inc()
	s.logger.Info("Sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("product_id", sale.ProductID),
		zap.Int("quantity", sale.Quantity),
		zap.String("total", sale.Total.String()))

	event := &models.SaleRecordedEvent{
		BaseEvent:         newBaseEvent(models.EventTypeSaleRecorded),
		SaleID:            sale.ID,
		ProductID:         sale.ProductID,
		CustomerID:        sale.CustomerID,
		Quantity:          sale.Quantity,
		Total:             sale.Total,
		RemainingQuantity: remaining,
		MinStock:          minStock,
	}
	if err := s.events.PublishSaleRecorded(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleRecorded event", zap.Error(err))
	}

	return sale, nil
}

// RecordSupply replenishes a product's stock and appends a supply record in
// one transaction.
func (s *StoreService) RecordSupply(ctx context.Context, req *RecordSupplyRequest) (*models.Supply, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.RecordSupply")
	defer span.End()

	if strings.TrimSpace(req.Supplier) == "" {
		return nil, &models.ValidationError{Field: "supplier", Reason: "must not be empty"}
	}
	if req.Quantity <= 0 {
		return nil, &models.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if req.Cost.IsNegative() {
		return nil, &models.ValidationError{Field: "cost", Reason: "must not be negative"}
	}

	var supply *models.Supply
	var newQuantity, minStock int
	err := s.db.WithinTx(ctx, func(tx Persistence) error {
		product, err := tx.GetProductForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}

		product.Quantity += req.Quantity
		if err := tx.UpdateProduct(ctx, product); err != nil {
			return err
		}
		newQuantity = product.Quantity
		minStock = product.MinStock

		supply = &models.Supply{
			Supplier:  strings.TrimSpace(req.Supplier),
			ProductID: product.ID,
			Quantity:  req.Quantity,
			Cost:      req.Cost,
			Date:      time.Now(),
		}
		return tx.AppendSupply(ctx, supply)
	})
	if err != nil {
		return nil, err
	}

	util.SuppliesRecordedTotal.Inc()
	s.logger.Info("Supply recorded",
		zap.Int64("supply_id", supply.ID),
		zap.Int64("product_id", supply.ProductID),
		zap.Int("quantity", supply.Quantity))

	event := &models.SupplyReceivedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeSupplyReceived),
		SupplyID:    supply.ID,
		Supplier:    supply.Supplier,
		ProductID:   supply.ProductID,
		Quantity:    supply.Quantity,
		Cost:        supply.Cost,
		NewQuantity: newQuantity,
		MinStock:    minStock,
	}
	if err := s.events.PublishSupplyReceived(ctx, event); err != nil {
		s.logger.Error("Failed to publish SupplyReceived event", zap.Error(err))
	}

	return supply, nil
}

// ListSales returns the sales log newest-first.
func (s *StoreService) ListSales(ctx context.Context) ([]models.Sale, error) {
	sales, err := s.db.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	reverseSales(sales)
	return sales, nil
}

// ListSupplies returns the supplies log newest-first.
func (s *StoreService) ListSupplies(ctx context.Context) ([]models.Supply, error) {
	supplies, err := s.db.ListSupplies(ctx)
	if err != nil {
		return nil, err
	}
	reverseSupplies(supplies)
	return supplies, nil
}

func validateProductFields(name string, price decimal.Decimal, quantity, minStock int) error {
	if strings.TrimSpace(name) == "" {
		return &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if price.IsNegative() {
		return &models.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if quantity < 0 {
		return &models.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if minStock < 0 {
		return &models.ValidationError{Field: "min_stock", Reason: "must not be negative"}
	}
	return nil
}

func validateCustomerFields(name, phone string, discount decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(phone) == "" {
		return &models.ValidationError{Field: "phone", Reason: "must not be empty"}
	}
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
		return &models.ValidationError{Field: "discount", Reason: "must be between 0 and 100"}
	}
	return nil
}

func failureReason(err error) string {
	var nf *models.NotFoundError
	var is *models.InsufficientStockError
	var ve *models.ValidationError
	switch {
	case errors.As(err, &is):
		return "insufficient_stock"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &ve):
		return "validation"
	default:
		return "db_error"
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func reverseSales(s []models.Sale) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseSupplies(s []models.Supply) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
