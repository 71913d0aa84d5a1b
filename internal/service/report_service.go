package service

import (
	"context"
	"sort"
	"time"

	"store-service/internal/models"
	"store-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Labels substituted when a report row references an entity that no longer
// exists (deleted product) or was never attached (guest sale).
const (
	UnknownProductLabel = "Неизвестно"
	GuestCustomerLabel  = "Гость"
)

const summaryCacheKey = "summary"

// Period bounds a report to start <= date <= end, inclusive on both ends.
type Period struct {
	Start time.Time
	End   time.Time
}

// BestSeller is a product ranked by total quantity sold.
type BestSeller struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// SaleRecord is a sale resolved for display: entity names instead of ids.
type SaleRecord struct {
	models.Sale
	ProductName  string `json:"product_name"`
	CustomerName string `json:"customer_name"`
}

// SupplyRecord is a supply resolved for display.
type SupplyRecord struct {
	models.Supply
	ProductName string `json:"product_name"`
}

// Summary is the dashboard aggregate.
type Summary struct {
	SalesCount        int             `json:"sales_count"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalSuppliesCost decimal.Decimal `json:"total_supplies_cost"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	InventoryValue    decimal.Decimal `json:"inventory_value"`
	LowStockCount     int             `json:"low_stock_count"`
	BestSellers       []BestSeller    `json:"best_sellers"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// ReportService is the read-only query/aggregation layer. All derived views
// are computed here from the entity collections and logs, so the rules exist
// in one place regardless of the persistence adapter in use.
type ReportService struct {
	db               Persistence
	cache            ReportCache
	logger           *zap.Logger
	cacheTTL         time.Duration
	bestSellersLimit int
}

// NewReportService creates a new report service
func NewReportService(db Persistence, cache ReportCache, cacheTTL time.Duration, bestSellersLimit int) *ReportService {
	return &ReportService{
		db:               db,
		cache:            cache,
		logger:           util.GetLogger(),
		cacheTTL:         cacheTTL,
		bestSellersLimit: bestSellersLimit,
	}
}

// LowStockProducts returns all products below their minimum stock threshold,
// including ones that are out of stock.
func (r *ReportService) LowStockProducts(ctx context.Context) ([]models.Product, error) {
	products, err := r.db.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]models.Product, 0)
	for _, p := range products {
		if p.Quantity < p.MinStock {
			low = append(low, p)
		}
	}
	return low, nil
}

// TotalInventoryValue sums price times quantity over the active catalog.
func (r *ReportService) TotalInventoryValue(ctx context.Context) (decimal.Decimal, error) {
	products, err := r.db.ListProducts(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.TotalValue())
	}
	return total, nil
}

// SalesInPeriod returns sales within the period, inclusive on both ends.
func (r *ReportService) SalesInPeriod(ctx context.Context, start, end time.Time) ([]models.Sale, error) {
	return r.db.SalesBetween(ctx, start, end)
}

// TotalSalesAmount sums sale totals, optionally limited to a period.
func (r *ReportService) TotalSalesAmount(ctx context.Context, period *Period) (decimal.Decimal, error) {
	sales, err := r.salesFor(ctx, period)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Total)
	}
	return total, nil
}

// TotalSuppliesCost sums supply costs, optionally limited to a period.
func (r *ReportService) TotalSuppliesCost(ctx context.Context, period *Period) (decimal.Decimal, error) {
	supplies, err := r.suppliesFor(ctx, period)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, s := range supplies {
		total = total.Add(s.Cost)
	}
	return total, nil
}

// GrossProfit is total sales minus total supply costs over matching periods.
func (r *ReportService) GrossProfit(ctx context.Context, period *Period) (decimal.Decimal, error) {
	sales, err := r.TotalSalesAmount(ctx, period)
	if err != nil {
		return decimal.Zero, err
	}
	costs, err := r.TotalSuppliesCost(ctx, period)
	if err != nil {
		return decimal.Zero, err
	}
	return sales.Sub(costs), nil
}

// BestSellers ranks products by total quantity sold, descending. Ties keep
// the order products first appear in the sales log. Deleted products stay in
// the ranking under a placeholder label.
func (r *ReportService) BestSellers(ctx context.Context, limit int) ([]BestSeller, error) {
	if limit <= 0 {
		limit = r.bestSellersLimit
	}

	sales, err := r.db.ListSales(ctx)
	if err != nil {
		return nil, err
	}

	sold := make(map[int64]int)
	order := make([]int64, 0)
	for _, s := range sales {
		if _, seen := sold[s.ProductID]; !seen {
			order = append(order, s.ProductID)
		}
		sold[s.ProductID] += s.Quantity
	}

	sort.SliceStable(order, func(i, j int) bool {
		return sold[order[i]] > sold[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	names, err := r.productNames(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]BestSeller, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, BestSeller{
			ProductID: id,
			Name:      productLabel(names, id),
			Quantity:  sold[id],
		})
	}
	return ranked, nil
}

// SalesLog returns resolved sale records newest-first, optionally limited to
// a period. Missing product or customer lookups never fail the report.
func (r *ReportService) SalesLog(ctx context.Context, period *Period) ([]SaleRecord, error) {
	sales, err := r.salesFor(ctx, period)
	if err != nil {
		return nil, err
	}

	names, err := r.productNames(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := r.customerNames(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]SaleRecord, 0, len(sales))
	for i := len(sales) - 1; i >= 0; i-- {
		s := sales[i]
		records = append(records, SaleRecord{
			Sale:         s,
			ProductName:  productLabel(names, s.ProductID),
			CustomerName: customerLabel(customers, s.CustomerID),
		})
	}
	return records, nil
}

// SuppliesLog returns resolved supply records newest-first.
func (r *ReportService) SuppliesLog(ctx context.Context, period *Period) ([]SupplyRecord, error) {
	supplies, err := r.suppliesFor(ctx, period)
	if err != nil {
		return nil, err
	}

	names, err := r.productNames(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]SupplyRecord, 0, len(supplies))
	for i := len(supplies) - 1; i >= 0; i-- {
		s := supplies[i]
		records = append(records, SupplyRecord{
			Supply:      s,
			ProductName: productLabel(names, s.ProductID),
		})
	}
	return records, nil
}

// RecentSales returns resolved sales from the last N days.
func (r *ReportService) RecentSales(ctx context.Context, days int) ([]SaleRecord, error) {
	return r.SalesLog(ctx, lastDays(days))
}

// RecentSupplies returns resolved supplies from the last N days.
func (r *ReportService) RecentSupplies(ctx context.Context, days int) ([]SupplyRecord, error) {
	return r.SuppliesLog(ctx, lastDays(days))
}

// Summary computes the dashboard aggregate, served from the cache when fresh.
// A cache failure degrades to recomputation, never to a failed report.
func (r *ReportService) Summary(ctx context.Context) (*Summary, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.Summary")
	defer span.End()

	var cached Summary
	hit, err := r.cache.GetReport(ctx, summaryCacheKey, &cached)
	if err != nil {
		r.logger.Warn("Report cache lookup failed", zap.Error(err))
	}
	if hit {
		util.ReportCacheHitsTotal.WithLabelValues("hit").Inc()
		return &cached, nil
	}
	util.ReportCacheHitsTotal.WithLabelValues("miss").Inc()

	sales, err := r.db.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	totalSales := decimal.Zero
	for _, s := range sales {
		totalSales = totalSales.Add(s.Total)
	}

	totalCosts, err := r.TotalSuppliesCost(ctx, nil)
	if err != nil {
		return nil, err
	}
	inventoryValue, err := r.TotalInventoryValue(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := r.LowStockProducts(ctx)
	if err != nil {
		return nil, err
	}
	bestSellers, err := r.BestSellers(ctx, r.bestSellersLimit)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		SalesCount:        len(sales),
		TotalSales:        totalSales,
		TotalSuppliesCost: totalCosts,
		GrossProfit:       totalSales.Sub(totalCosts),
		InventoryValue:    inventoryValue,
		LowStockCount:     len(lowStock),
		BestSellers:       bestSellers,
		GeneratedAt:       time.Now(),
	}

	if err := r.cache.SetReport(ctx, summaryCacheKey, summary, r.cacheTTL); err != nil {
		r.logger.Warn("Failed to cache summary report", zap.Error(err))
	}
	return summary, nil
}

func (r *ReportService) salesFor(ctx context.Context, period *Period) ([]models.Sale, error) {
	if period == nil {
		return r.db.ListSales(ctx)
	}
	return r.db.SalesBetween(ctx, period.Start, period.End)
}

func (r *ReportService) suppliesFor(ctx context.Context, period *Period) ([]models.Supply, error) {
	if period == nil {
		return r.db.ListSupplies(ctx)
	}
	return r.db.SuppliesBetween(ctx, period.Start, period.End)
}

func (r *ReportService) productNames(ctx context.Context) (map[int64]string, error) {
	products, err := r.db.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}

func (r *ReportService) customerNames(ctx context.Context) (map[int64]string, error) {
	customers, err := r.db.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}
	return names, nil
}

func productLabel(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	return UnknownProductLabel
}

func customerLabel(names map[int64]string, id *int64) string {
	if id == nil {
		return GuestCustomerLabel
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return GuestCustomerLabel
}

func lastDays(days int) *Period {
	now := time.Now()
	return &Period{Start: now.AddDate(0, 0, -days), End: now}
}
