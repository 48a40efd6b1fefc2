package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"frameguru/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderStore struct {
	order           *models.Order
	shippingUpdates int
	appendedEntries []models.StatusHistoryEntry
}

func (f *fakeOrderStore) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	return nil, nil
}

func (f *fakeOrderStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	return nil, nil
}

func (f *fakeOrderStore) TierBasePrices(ctx context.Context) (map[int]float64, error) {
	return nil, nil
}

func (f *fakeOrderStore) GetFramingTierByNumber(ctx context.Context, tier int) (*models.FramingTier, error) {
	return nil, nil
}

func (f *fakeOrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return nil
}

func (f *fakeOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	return f.order, nil
}

func (f *fakeOrderStore) UpdateOrderShipping(ctx context.Context, orderID int64, trackingNumber string, estimatedCompletion *time.Time) error {
	f.shippingUpdates++
	return nil
}

func (f *fakeOrderStore) AppendStatus(ctx context.Context, orderID int64, entry *models.StatusHistoryEntry) error {
	f.appendedEntries = append(f.appendedEntries, *entry)
	return nil
}

func (f *fakeOrderStore) GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) ListNotificationsByOrder(ctx context.Context, orderID int64) ([]models.Notification, error) {
	return nil, nil
}

func TestAdvanceStatusRejectedRequestWritesNothing(t *testing.T) {
	fake := &fakeOrderStore{
		order: &models.Order{
			ID:            9,
			OrderNumber:   "FG-20250301-A1B2C3",
			CurrentStatus: models.StatusPlaced,
		},
	}
	svc := &OrderService{store: fake, logger: zap.NewNop()}

	_, err := svc.AdvanceStatus(context.Background(), 9, &AdvanceStatusRequest{
		Status:         "reframed",
		Actor:          "staff:lee",
		TrackingNumber: "1Z999AA10123456784",
	})
	require.ErrorIs(t, err, models.ErrUnknownStatus)

	_, err = svc.AdvanceStatus(context.Background(), 9, &AdvanceStatusRequest{
		Status:         models.StatusShipped,
		TrackingNumber: "1Z999AA10123456784",
	})
	require.ErrorIs(t, err, models.ErrMissingActor)

	// Neither rejected request may leave shipping details or history behind.
	assert.Zero(t, fake.shippingUpdates)
	assert.Empty(t, fake.appendedEntries)
}

func TestNewOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^FG-\d{8}-[0-9A-F]{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		num := newOrderNumber()
		assert.Regexp(t, pattern, num)
		assert.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
}

func TestNewOrderNumberDatePortion(t *testing.T) {
	num := newOrderNumber()
	assert.Equal(t, time.Now().Format("20060102"), num[3:11])
}

func TestNewBaseEvent(t *testing.T) {
	event := newBaseEvent("ORDER_STATUS_CHANGED")

	assert.Equal(t, "ORDER_STATUS_CHANGED", event.EventType)
	assert.NotEmpty(t, event.EventID)
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Second)

	other := newBaseEvent("ORDER_STATUS_CHANGED")
	assert.NotEqual(t, event.EventID, other.EventID)
}
