package api

import (
	"time"

	"store-service/internal/models"

	"github.com/shopspring/decimal"
)

// ProductView is the presentation shape of a product: stable keys plus
// localized display text and the derived fields.
type ProductView struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Category        models.Category `json:"category"`
	CategoryDisplay string          `json:"category_display"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	MinStock        int             `json:"min_stock"`
	Status          string          `json:"status"`
	StatusDisplay   string          `json:"status_display"`
	TotalValue      decimal.Decimal `json:"total_value"`
	Barcode         *string         `json:"barcode,omitempty"`
	Description     *string         `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func productView(p *models.Product) ProductView {
	status := p.Status()
	return ProductView{
		ID:              p.ID,
		Name:            p.Name,
		Category:        p.Category,
		CategoryDisplay: p.Category.Display(),
		Price:           p.Price,
		Quantity:        p.Quantity,
		MinStock:        p.MinStock,
		Status:          status,
		StatusDisplay:   models.StockStatusDisplay(status),
		TotalValue:      p.TotalValue(),
		Barcode:         p.Barcode,
		Description:     p.Description,
		CreatedAt:       p.CreatedAt,
	}
}

func productViews(products []models.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, productView(&products[i]))
	}
	return views
}

// CategoryView pairs a category key with its display text.
type CategoryView struct {
	Key     models.Category `json:"key"`
	Display string          `json:"display"`
}

func categoryViews() []CategoryView {
	categories := models.Categories()
	views := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, CategoryView{Key: c, Display: c.Display()})
	}
	return views
}
