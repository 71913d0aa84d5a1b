package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"store-service/internal/memstore"
	"store-service/internal/models"
	"store-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopPublisher struct{}

func (noopPublisher) PublishProductCreated(context.Context, *models.ProductCreatedEvent) error {
	return nil
}
func (noopPublisher) PublishProductDeleted(context.Context, *models.ProductDeletedEvent) error {
	return nil
}
func (noopPublisher) PublishSaleRecorded(context.Context, *models.SaleRecordedEvent) error {
	return nil
}
func (noopPublisher) PublishSupplyReceived(context.Context, *models.SupplyReceivedEvent) error {
	return nil
}

type noopCache struct{}

func (noopCache) GetReport(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noopCache) SetReport(context.Context, string, interface{}, time.Duration) error {
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := memstore.NewStore()
	store := service.NewStoreService(db, noopPublisher{}, 10)
	reports := service.NewReportService(db, noopCache{}, time.Second, 10)

	router := gin.New()
	NewHandler(store, reports).SetupRoutes(router, "1000-S")
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func createTestProduct(t *testing.T, router *gin.Engine, name string, price string, quantity int) int64 {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/products", gin.H{
		"name":      name,
		"category":  "ELECTRONICS",
		"price":     price,
		"quantity":  quantity,
		"min_stock": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int64(decodeBody(t, w)["id"].(float64))
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestCreateProduct(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/products", gin.H{
		"name":     "Laptop",
		"category": "ELECTRONICS",
		"price":    "999.90",
		"quantity": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "Laptop", body["name"])
	assert.Equal(t, "ELECTRONICS", body["category"])
	assert.Equal(t, "Электроника", body["category_display"])
	assert.Equal(t, models.StockStatusLowStock, body["status"])
	assert.NotZero(t, body["id"])
}

func TestCreateProductBadCategory(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/products", gin.H{
		"name":     "Laptop",
		"category": "PASTRY",
		"price":    "10",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProductNotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/products/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	router := newTestRouter(t)
	id := createTestProduct(t, router, "Laptop", "100", 10)

	w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", id), gin.H{
		"price": "89.90",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "89.9", body["price"])
	assert.Equal(t, "Laptop", body["name"])

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchProducts(t *testing.T) {
	router := newTestRouter(t)
	createTestProduct(t, router, "Gaming Laptop", "100", 10)
	createTestProduct(t, router, "Office Chair", "50", 10)

	w := doJSON(t, router, http.MethodGet, "/api/v1/products/search?q=laptop", nil)
	require.Equal(t, http.StatusOK, w.Code)

	products := decodeBody(t, w)["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Gaming Laptop", products[0].(map[string]interface{})["name"])
}

func TestRecordSaleFlow(t *testing.T) {
	router := newTestRouter(t)
	id := createTestProduct(t, router, "Laptop", "100", 10)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sales", gin.H{
		"product_id": id,
		"quantity":   3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "300", decodeBody(t, w)["total"])

	// more than remains in stock
	w = doJSON(t, router, http.MethodPost, "/api/v1/sales", gin.H{
		"product_id": id,
		"quantity":   100,
	})
	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(7), body["available"])
	assert.Equal(t, float64(100), body["requested"])

	// unknown product
	w = doJSON(t, router, http.MethodPost, "/api/v1/sales", gin.H{
		"product_id": 999,
		"quantity":   1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordSupplyFlow(t *testing.T) {
	router := newTestRouter(t)
	id := createTestProduct(t, router, "Laptop", "100", 2)

	w := doJSON(t, router, http.MethodPost, "/api/v1/supplies", gin.H{
		"supplier":   "Acme",
		"product_id": id,
		"quantity":   8,
		"cost":       "400",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(10), decodeBody(t, w)["quantity"])
}

func TestCustomerEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/customers", gin.H{
		"name":     "Ivan",
		"phone":    "+7-900-000-00-01",
		"discount": "10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int64(decodeBody(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/customers/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ivan", decodeBody(t, w)["name"])

	// out-of-range discount
	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/customers/%d", id), gin.H{
		"discount": "150",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportEndpoints(t *testing.T) {
	router := newTestRouter(t)
	id := createTestProduct(t, router, "Laptop", "100", 10)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sales", gin.H{
		"product_id": id,
		"quantity":   8,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/reports/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["products"].([]interface{}), 1)

	w = doJSON(t, router, http.MethodGet, "/api/v1/reports/inventory-value", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "200", decodeBody(t, w)["total_value"])

	w = doJSON(t, router, http.MethodGet, "/api/v1/reports/best-sellers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sellers := decodeBody(t, w)["best_sellers"].([]interface{})
	require.Len(t, sellers, 1)
	assert.Equal(t, "Laptop", sellers[0].(map[string]interface{})["name"])

	w = doJSON(t, router, http.MethodGet, "/api/v1/reports/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody(t, w)
	assert.Equal(t, float64(1), summary["sales_count"])
	assert.Equal(t, "800", summary["total_sales"])

	w = doJSON(t, router, http.MethodGet, "/api/v1/sales?days=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCategories(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["categories"].([]interface{}), 5)
}
