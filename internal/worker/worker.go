package worker

import (
	"context"

	"store-service/internal/broker"
	"store-service/internal/models"
	"store-service/internal/util"

	"go.uber.org/zap"
)

// StockFlags tracks which products are currently low on stock.
type StockFlags interface {
	SetLowStockFlag(ctx context.Context, productID int64) error
	ClearLowStockFlag(ctx context.Context, productID int64) error
}

// StockAlertWorker consumes store events and maintains the low stock flag
// set: a sale dropping a product below its threshold raises a flag, a supply
// restoring the threshold clears it, a deletion clears it.
type StockAlertWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	flags        StockFlags
	logger       *zap.Logger
}

// NewStockAlertWorker creates a new stock alert worker
func NewStockAlertWorker(consumer *broker.Consumer, flags StockFlags) *StockAlertWorker {
	w := &StockAlertWorker{
		consumer: consumer,
		flags:    flags,
		logger:   util.ComponentLogger("stock-alert-worker"),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnSaleRecorded(w.handleSaleRecorded)
	eventHandler.OnSupplyReceived(w.handleSupplyReceived)
	eventHandler.OnProductDeleted(w.handleProductDeleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *StockAlertWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting stock alert worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StockAlertWorker) Stop() error {
	w.logger.Info("Stopping stock alert worker")
	return w.consumer.Close()
}

func (w *StockAlertWorker) handleSaleRecorded(ctx context.Context, event *models.SaleRecordedEvent) error {
	if event.RemainingQuantity >= event.MinStock {
		return nil
	}

	util.LowStockAlertsTotal.Inc()
	w.logger.Warn("Product low on stock",
		zap.Int64("product_id", event.ProductID),
		zap.Int("remaining", event.RemainingQuantity),
		zap.Int("min_stock", event.MinStock))

	return w.flags.SetLowStockFlag(ctx, event.ProductID)
}

func (w *StockAlertWorker) handleSupplyReceived(ctx context.Context, event *models.SupplyReceivedEvent) error {
	if event.NewQuantity < event.MinStock {
		return nil
	}

	w.logger.Info("Product stock restored",
		zap.Int64("product_id", event.ProductID),
		zap.Int("quantity", event.NewQuantity))

	return w.flags.ClearLowStockFlag(ctx, event.ProductID)
}

func (w *StockAlertWorker) handleProductDeleted(ctx context.Context, event *models.ProductDeletedEvent) error {
	return w.flags.ClearLowStockFlag(ctx, event.ProductID)
}
