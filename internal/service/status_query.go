package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"frameguru/internal/models"
	"frameguru/internal/redisclient"
	"frameguru/internal/store"
	"frameguru/internal/util"

	"go.uber.org/zap"
)

const statusCacheTTL = time.Minute

// StatusDetails accompanies a found order's status message.
type StatusDetails struct {
	OrderNumber         string `json:"order_number"`
	Status              string `json:"status"`
	DateCreated         string `json:"date_created"`
	EstimatedCompletion string `json:"estimated_completion"`
	Items               int    `json:"items"`
	Total               string `json:"total"`
	TrackingNumber      string `json:"tracking_number,omitempty"`
}

// StatusSummary is the chatbot- and UI-facing answer to "where is my order".
// A missing order is a normal summary, not an error.
type StatusSummary struct {
	Found   bool           `json:"found"`
	Message string         `json:"message"`
	Details *StatusDetails `json:"details,omitempty"`
}

// StatusQueryService answers order status lookups. Read-only, safe for
// concurrent use.
type StatusQueryService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewStatusQueryService creates a status query service.
func NewStatusQueryService(st *store.Store, redis *redisclient.Client) *StatusQueryService {
	return &StatusQueryService{
		store:  st,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// Lookup translates an order number into a human-readable status summary.
func (s *StatusQueryService) Lookup(ctx context.Context, orderNumber string) (*StatusSummary, error) {
	ctx, span := util.StartSpan(ctx, "StatusQueryService.Lookup")
	defer span.End()

	if cached, err := s.redis.GetCachedStatusSummary(ctx, orderNumber); err == nil && cached != nil {
		var summary StatusSummary
		if err := json.Unmarshal(cached, &summary); err == nil {
			util.StatusLookupsTotal.WithLabelValues("cache_hit").Inc()
			return &summary, nil
		}
	}

	order, err := s.store.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		util.StatusLookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if order == nil {
		util.StatusLookupsTotal.WithLabelValues("not_found").Inc()
		return notFoundSummary(orderNumber), nil
	}

	summary := summarize(order)
	util.StatusLookupsTotal.WithLabelValues("found").Inc()

	if payload, err := json.Marshal(summary); err == nil {
		if err := s.redis.CacheStatusSummary(ctx, orderNumber, payload, statusCacheTTL); err != nil {
			s.logger.Debug("Failed to cache status summary", zap.Error(err))
		}
	}

	return summary, nil
}

func notFoundSummary(orderNumber string) *StatusSummary {
	return &StatusSummary{
		Message: fmt.Sprintf("I couldn't find an order with number %s. Please check the number and try again.", orderNumber),
	}
}

func summarize(order *models.Order) *StatusSummary {
	num := order.OrderNumber

	estimated := ""
	if order.EstimatedCompletion != nil {
		estimated = order.EstimatedCompletion.Format("January 2, 2006")
	}

	var message string
	switch order.CurrentStatus {
	case models.StatusPlaced:
		message = fmt.Sprintf("Your order #%s has been received and is awaiting payment confirmation.", num)
	case models.StatusPaymentConfirmed:
		message = fmt.Sprintf("Your payment for order #%s has been confirmed. We'll begin production soon.", num)
	case models.StatusInProduction:
		message = fmt.Sprintf("Your order #%s is currently in production.", num)
		if estimated != "" {
			message += fmt.Sprintf(" We expect to complete it by %s.", estimated)
		}
	case models.StatusQualityCheck:
		message = fmt.Sprintf("Your order #%s is in the final quality check phase.", num)
	case models.StatusReadyForPickup:
		message = fmt.Sprintf("Great news! Your order #%s is ready for pickup at our studio.", num)
	case models.StatusShipped:
		message = fmt.Sprintf("Your order #%s has been shipped", num)
		if order.TrackingNumber != "" {
			message += fmt.Sprintf(" with tracking number: %s", order.TrackingNumber)
		}
		message += "."
	case models.StatusDelivered:
		message = fmt.Sprintf("Your order #%s has been delivered. We hope you love your frames!", num)
	case models.StatusCancelled:
		message = fmt.Sprintf("Your order #%s has been cancelled.", num)
	default:
		message = fmt.Sprintf("Your order #%s is currently being processed.", num)
	}

	details := &StatusDetails{
		OrderNumber:         num,
		Status:              order.CurrentStatus,
		DateCreated:         order.CreatedAt.Format("1/2/2006"),
		EstimatedCompletion: estimated,
		Items:               len(order.Items),
		Total:               fmt.Sprintf("%.2f", order.TotalAmount),
	}
	if details.EstimatedCompletion == "" {
		details.EstimatedCompletion = "Not yet scheduled"
	}
	if order.CurrentStatus == models.StatusShipped && order.TrackingNumber != "" {
		details.TrackingNumber = order.TrackingNumber
	}

	return &StatusSummary{Found: true, Message: message, Details: details}
}
