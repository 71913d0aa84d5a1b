package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"store-service/internal/models"
	"store-service/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(name string, quantity int) *models.Product {
	return &models.Product{
		Name:     name,
		Category: models.CategoryElectronics,
		Price:    decimal.NewFromInt(10),
		Quantity: quantity,
		MinStock: 5,
	}
}

func TestSequentialIDs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		p := newProduct("Widget", 1)
		require.NoError(t, s.CreateProduct(ctx, p))
		assert.Equal(t, want, p.ID)
	}

	// deleting never frees an id for reuse
	require.NoError(t, s.DeleteProduct(ctx, 3))
	p := newProduct("Widget", 1)
	require.NoError(t, s.CreateProduct(ctx, p))
	assert.Equal(t, int64(4), p.ID)
}

func TestGetProductCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	p := newProduct("Widget", 7)
	require.NoError(t, s.CreateProduct(ctx, p))

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	got.Quantity = 0

	again, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, again.Quantity, "callers must not mutate stored state")
}

func TestNotFoundErrors(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.GetProduct(ctx, 42)
	var notFoundErr *models.NotFoundError
	require.Error(t, err)
	require.True(t, errors.As(err, &notFoundErr))
	assert.Equal(t, "product", notFoundErr.Entity)
	assert.Equal(t, int64(42), notFoundErr.ID)

	assert.Error(t, s.UpdateProduct(ctx, &models.Product{ID: 42}))
	assert.Error(t, s.DeleteProduct(ctx, 42))

	_, err = s.GetCustomer(ctx, 42)
	require.True(t, errors.As(err, &notFoundErr))
	assert.Equal(t, "customer", notFoundErr.Entity)
}

func TestWithinTxCommit(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	p := newProduct("Widget", 10)
	require.NoError(t, s.CreateProduct(ctx, p))

	err := s.WithinTx(ctx, func(tx service.Persistence) error {
		product, err := tx.GetProductForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		product.Quantity -= 4
		if err := tx.UpdateProduct(ctx, product); err != nil {
			return err
		}
		return tx.AppendSale(ctx, &models.Sale{
			ProductID: p.ID,
			Quantity:  4,
			Price:     product.Price,
			Total:     decimal.NewFromInt(40),
			Date:      time.Now(),
		})
	})
	require.NoError(t, err)

	after, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, after.Quantity)

	sales, err := s.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, int64(1), sales[0].ID)
}

func TestWithinTxRollback(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	p := newProduct("Widget", 10)
	require.NoError(t, s.CreateProduct(ctx, p))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx service.Persistence) error {
		product, err := tx.GetProductForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		product.Quantity = 0
		if err := tx.UpdateProduct(ctx, product); err != nil {
			return err
		}
		if err := tx.AppendSale(ctx, &models.Sale{ProductID: p.ID, Quantity: 10, Date: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	after, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, after.Quantity, "rollback must restore stock")

	sales, err := s.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales, "rollback must drop appended sales")

	// id counters roll back too, so the next sale still gets id 1
	require.NoError(t, s.AppendSale(ctx, &models.Sale{ProductID: p.ID, Quantity: 1, Date: time.Now()}))
	sales, err = s.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, int64(1), sales[0].ID)
}

func TestSalesBetweenInclusive(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{-time.Hour, 0, time.Hour, 48 * time.Hour} {
		require.NoError(t, s.AppendSale(ctx, &models.Sale{ProductID: 1, Quantity: 1, Date: base.Add(offset)}))
	}

	got, err := s.SalesBetween(ctx, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 3, "both bounds are inclusive")

	exact, err := s.SalesBetween(ctx, base, base)
	require.NoError(t, err)
	assert.Len(t, exact, 1)
}

func TestListProductsStableOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, s.CreateProduct(ctx, newProduct(name, 1)))
	}
	require.NoError(t, s.DeleteProduct(ctx, 2))

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].Name)
	assert.Equal(t, "C", products[1].Name)
}
