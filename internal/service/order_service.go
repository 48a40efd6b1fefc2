package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"frameguru/internal/broker"
	"frameguru/internal/models"
	"frameguru/internal/pricing"
	"frameguru/internal/redisclient"
	"frameguru/internal/store"
	"frameguru/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidOrderItem is returned when a requested order line cannot be
// priced: wrong size, missing framing configuration, unknown item type.
var ErrInvalidOrderItem = errors.New("invalid order item")

// orderStore is the persistence surface OrderService needs. The sqlx store
// satisfies it; tests use in-memory fakes.
type orderStore interface {
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	TierBasePrices(ctx context.Context) (map[int]float64, error)
	GetFramingTierByNumber(ctx context.Context, tier int) (*models.FramingTier, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrderShipping(ctx context.Context, orderID int64, trackingNumber string, estimatedCompletion *time.Time) error
	AppendStatus(ctx context.Context, orderID int64, entry *models.StatusHistoryEntry) error
	GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]models.Order, error)
	ListNotificationsByOrder(ctx context.Context, orderID int64) ([]models.Notification, error)
}

// OrderService owns order creation and status advancement.
type OrderService struct {
	store          orderStore
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	taxRate        float64
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(st *store.Store, redis *redisclient.Client, eventPublisher *broker.EventPublisher, taxRate float64) *OrderService {
	return &OrderService{
		store:          st,
		redis:          redis,
		eventPublisher: eventPublisher,
		taxRate:        taxRate,
		logger:         util.GetLogger(),
	}
}

// OrderItemRequest is one requested line: a standard product at a size, or a
// custom framing job priced through the calculator.
type OrderItemRequest struct {
	ItemType    string               `json:"item_type" binding:"required,oneof=standard custom"`
	ProductID   int64                `json:"product_id,omitempty"`
	Size        string               `json:"size,omitempty"`
	Quote       *pricing.QuoteRequest `json:"quote,omitempty"`
	FrameConfig *models.FrameConfig  `json:"frame_config,omitempty"`
	Quantity    int                  `json:"quantity" binding:"required,min=1"`
	Notes       string               `json:"notes,omitempty"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerID          int64              `json:"customer_id" binding:"required"`
	Items               []OrderItemRequest `json:"items" binding:"required,min=1"`
	ShippingMethod      string             `json:"shipping_method,omitempty"`
	ShippingAmount      float64            `json:"shipping_amount,omitempty"`
	DiscountAmount      float64            `json:"discount_amount,omitempty"`
	EstimatedCompletion *time.Time         `json:"estimated_completion,omitempty"`
	Notes               string             `json:"notes,omitempty"`
	Source              string             `json:"source,omitempty"`
}

// CreateOrder validates and prices the requested items, recomputes totals,
// persists the order with its opening history entry, and publishes the
// placement events.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	customer, err := s.store.GetCustomerByID(ctx, req.CustomerID)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("unknown_customer").Inc()
		return nil, err
	}

	items, err := s.buildItems(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	order := &models.Order{
		OrderNumber:         newOrderNumber(),
		CustomerID:          customer.ID,
		CurrentStatus:       models.StatusPlaced,
		ShippingMethod:      req.ShippingMethod,
		ShippingAmount:      req.ShippingAmount,
		DiscountAmount:      req.DiscountAmount,
		EstimatedCompletion: req.EstimatedCompletion,
		Notes:               req.Notes,
		Source:              req.Source,
		Items:               items,
	}
	if order.Source == "" {
		order.Source = "website"
	}

	order.RecomputeTotals()
	order.TaxAmount = models.RoundCents(order.Subtotal * s.taxRate)
	order.RecomputeTotals()

	if err := order.AdvanceStatus(models.StatusPlaced, "Order placed", "system"); err != nil {
		return nil, err
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber))

	placed := &models.OrderPlacedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeOrderPlaced),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
	}
	if err := s.eventPublisher.PublishOrderPlaced(ctx, placed); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	s.publishStatusChanged(ctx, order.ID, models.StatusPlaced, "Order placed", "system")

	return order, nil
}

// buildItems resolves unit prices: standard items from the product size
// table, custom items through the framing calculator.
func (s *OrderService) buildItems(ctx context.Context, reqs []OrderItemRequest) ([]models.OrderItem, error) {
	var tierPrices map[int]float64

	items := make([]models.OrderItem, 0, len(reqs))
	for i := range reqs {
		req := &reqs[i]
		item := models.OrderItem{
			ItemType: req.ItemType,
			Quantity: req.Quantity,
			Notes:    req.Notes,
		}

		switch req.ItemType {
		case models.ItemStandard:
			product, err := s.store.GetProductByID(ctx, req.ProductID)
			if err != nil {
				return nil, err
			}
			price := product.BasePrice
			if req.Size != "" {
				found := false
				for _, size := range product.Sizes {
					if size.Size == req.Size {
						price = size.Price
						found = true
						break
					}
				}
				if !found {
					return nil, fmt.Errorf("%w: product %s has no size %q", ErrInvalidOrderItem, product.SKU, req.Size)
				}
			}
			item.ProductID = &product.ID
			item.UnitPrice = price

		case models.ItemCustom:
			if req.Quote == nil {
				return nil, fmt.Errorf("%w: custom item requires a framing configuration", ErrInvalidOrderItem)
			}
			if tierPrices == nil {
				var err error
				tierPrices, err = s.store.TierBasePrices(ctx)
				if err != nil {
					return nil, err
				}
			}
			price, err := pricing.Quote(*req.Quote, tierPrices)
			if err != nil {
				return nil, err
			}
			tier, err := s.store.GetFramingTierByNumber(ctx, req.Quote.Tier)
			if err != nil {
				return nil, err
			}
			item.TierID = &tier.ID
			item.FrameConfig = req.FrameConfig
			item.UnitPrice = price

		default:
			return nil, fmt.Errorf("%w: unknown item type %q", ErrInvalidOrderItem, req.ItemType)
		}

		item.Subtotal = models.RoundCents(item.UnitPrice * float64(item.Quantity))
		items = append(items, item)
	}
	return items, nil
}

// AdvanceStatusRequest carries a status advancement.
type AdvanceStatusRequest struct {
	Status              string     `json:"status" binding:"required"`
	Note                string     `json:"note,omitempty"`
	Actor               string     `json:"actor" binding:"required"`
	TrackingNumber      string     `json:"tracking_number,omitempty"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
}

// AdvanceStatus appends a history entry, updates the current status, and
// publishes the change. Notification dispatch happens downstream of the
// published event; a dispatch failure can therefore never roll back the
// status change.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID int64, req *AdvanceStatusRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AdvanceStatus")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Validate through the aggregate before touching the database, so a
	// rejected request leaves no partial shipping update behind.
	if err := order.AdvanceStatus(req.Status, req.Note, req.Actor); err != nil {
		return nil, err
	}

	if req.TrackingNumber != "" || req.EstimatedCompletion != nil {
		if err := s.store.UpdateOrderShipping(ctx, orderID, req.TrackingNumber, req.EstimatedCompletion); err != nil {
			return nil, fmt.Errorf("failed to update shipping details: %w", err)
		}
		if req.TrackingNumber != "" {
			order.TrackingNumber = req.TrackingNumber
		}
		if req.EstimatedCompletion != nil {
			order.EstimatedCompletion = req.EstimatedCompletion
		}
	}

	entry := &order.StatusHistory[len(order.StatusHistory)-1]
	if err := s.store.AppendStatus(ctx, orderID, entry); err != nil {
		return nil, fmt.Errorf("failed to persist status change: %w", err)
	}

	util.StatusChangesTotal.WithLabelValues(req.Status).Inc()
	s.logger.Info("Order status advanced",
		zap.Int64("order_id", orderID),
		zap.String("status", req.Status),
		zap.String("actor", req.Actor))

	if err := s.redis.InvalidateStatusSummary(ctx, order.OrderNumber); err != nil {
		s.logger.Warn("Failed to invalidate status cache", zap.Error(err))
	}

	s.publishStatusChanged(ctx, orderID, req.Status, req.Note, req.Actor)

	return order, nil
}

func (s *OrderService) publishStatusChanged(ctx context.Context, orderID int64, status, note, actor string) {
	event := &models.OrderStatusChangedEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:   orderID,
		NewStatus: status,
		Note:      note,
		UpdatedBy: actor,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event",
			zap.Int64("order_id", orderID),
			zap.Error(err))
	}
}

// GetOrder retrieves an order with items and history.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, orderID)
}

// GetCustomerOrders retrieves a customer's orders, newest first.
func (s *OrderService) GetCustomerOrders(ctx context.Context, customerID int64) ([]models.Order, error) {
	return s.store.GetOrdersByCustomerID(ctx, customerID)
}

// GetOrderNotifications returns the notification audit trail for an order.
func (s *OrderService) GetOrderNotifications(ctx context.Context, orderID int64) ([]models.Notification, error) {
	return s.store.ListNotificationsByOrder(ctx, orderID)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// newOrderNumber builds a human-readable order number: FG-YYYYMMDD-XXXXXX.
func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("FG-%s-%s", time.Now().Format("20060102"), suffix)
}
