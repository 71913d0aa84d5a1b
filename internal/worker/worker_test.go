package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"store-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlags struct {
	set     []int64
	cleared []int64
}

func (f *fakeFlags) SetLowStockFlag(_ context.Context, productID int64) error {
	f.set = append(f.set, productID)
	return nil
}

func (f *fakeFlags) ClearLowStockFlag(_ context.Context, productID int64) error {
	f.cleared = append(f.cleared, productID)
	return nil
}

func eventMessage(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func baseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   "test-event",
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func TestSaleBelowThresholdSetsFlag(t *testing.T) {
	flags := &fakeFlags{}
	w := NewStockAlertWorker(nil, flags)

	msg := eventMessage(t, &models.SaleRecordedEvent{
		BaseEvent:         baseEvent(models.EventTypeSaleRecorded),
		SaleID:            1,
		ProductID:         7,
		Quantity:          3,
		RemainingQuantity: 4,
		MinStock:          5,
	})
	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))

	assert.Equal(t, []int64{7}, flags.set)
	assert.Empty(t, flags.cleared)
}

func TestSaleAboveThresholdIsIgnored(t *testing.T) {
	flags := &fakeFlags{}
	w := NewStockAlertWorker(nil, flags)

	msg := eventMessage(t, &models.SaleRecordedEvent{
		BaseEvent:         baseEvent(models.EventTypeSaleRecorded),
		ProductID:         7,
		RemainingQuantity: 5,
		MinStock:          5,
	})
	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))

	assert.Empty(t, flags.set)
	assert.Empty(t, flags.cleared)
}

func TestSupplyRestoringStockClearsFlag(t *testing.T) {
	flags := &fakeFlags{}
	w := NewStockAlertWorker(nil, flags)

	msg := eventMessage(t, &models.SupplyReceivedEvent{
		BaseEvent:   baseEvent(models.EventTypeSupplyReceived),
		SupplyID:    1,
		ProductID:   7,
		Quantity:    10,
		NewQuantity: 14,
		MinStock:    5,
	})
	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))

	assert.Equal(t, []int64{7}, flags.cleared)
}

func TestSupplyStillBelowThresholdIsIgnored(t *testing.T) {
	flags := &fakeFlags{}
	w := NewStockAlertWorker(nil, flags)

	msg := eventMessage(t, &models.SupplyReceivedEvent{
		BaseEvent:   baseEvent(models.EventTypeSupplyReceived),
		ProductID:   7,
		NewQuantity: 3,
		MinStock:    5,
	})
	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))

	assert.Empty(t, flags.cleared)
}

func TestProductDeletedClearsFlag(t *testing.T) {
	flags := &fakeFlags{}
	w := NewStockAlertWorker(nil, flags)

	msg := eventMessage(t, &models.ProductDeletedEvent{
		BaseEvent: baseEvent(models.EventTypeProductDeleted),
		ProductID: 7,
	})
	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))

	assert.Equal(t, []int64{7}, flags.cleared)
}

func TestUnknownEventTypeIsIgnored(t *testing.T) {
	flags := &fakeFlags{}
	w := NewStockAlertWorker(nil, flags)

	msg := eventMessage(t, &models.BaseEvent{
		EventID:   "test-event",
		EventType: "SOMETHING_ELSE",
		Timestamp: time.Now(),
	})
	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))

	assert.Empty(t, flags.set)
	assert.Empty(t, flags.cleared)
}
