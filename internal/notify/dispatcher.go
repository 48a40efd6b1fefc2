package notify

import (
	"context"
	"time"

	"frameguru/internal/models"
	"frameguru/internal/store"
	"frameguru/internal/util"

	"go.uber.org/zap"
)

// Store is the persistence surface the dispatcher and processor need. The
// sqlx store satisfies it; tests use in-memory fakes.
type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListDueNotifications(ctx context.Context, now time.Time) ([]store.DueNotification, error)
	ClaimNotification(ctx context.Context, id int64) (bool, error)
	MarkNotificationFailed(ctx context.Context, id int64, detail string) error
	CreateFollowUpNotification(ctx context.Context, n *models.Notification) (bool, error)
	GetRecentDeliveredOrders(ctx context.Context, windowDays int) ([]models.Order, error)
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
}

// DispatchResult reports what a status-change dispatch did. Send failures
// are captured here, never raised: a notification failure must not abort the
// status change that triggered it.
type DispatchResult struct {
	Success       bool                  `json:"success"`
	Error         string                `json:"error,omitempty"`
	Notifications []models.Notification `json:"notifications"`
}

// Dispatcher creates and sends notifications for order status changes.
type Dispatcher struct {
	store       Store
	email       EmailSender
	sms         SMSSender
	studio      StudioInfo
	sendTimeout time.Duration
	logger      *zap.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(st Store, email EmailSender, sms SMSSender, studio StudioInfo, sendTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		store:       st,
		email:       email,
		sms:         sms,
		studio:      studio,
		sendTimeout: sendTimeout,
		logger:      util.GetLogger(),
	}
}

// NotifyStatusChange resolves message content for the status and, for each
// channel the customer has enabled, records a notification and attempts an
// immediate send. Channels are independent: one channel's failure never
// blocks another. A channel the customer has not opted into, or SMS without a
// phone number, is skipped without a record.
func (d *Dispatcher) NotifyStatusChange(ctx context.Context, order *models.Order, customer *models.Customer, status string) DispatchResult {
	ctx, span := util.StartSpan(ctx, "Dispatcher.NotifyStatusChange")
	defer span.End()

	content := contentForStatus(order, status)
	result := DispatchResult{Success: true, Notifications: []models.Notification{}}

	if customer.EmailOptIn {
		n := d.sendOne(ctx, order, customer, content, models.ChannelEmail)
		if n != nil {
			result.Notifications = append(result.Notifications, *n)
			if n.Status == models.DeliveryFailed {
				result.Success = false
				result.Error = n.StatusMessage
			}
		}
	} else {
		util.NotificationsSkippedTotal.WithLabelValues(models.ChannelEmail).Inc()
	}

	if customer.SMSOptIn && customer.Phone != "" {
		n := d.sendOne(ctx, order, customer, content, models.ChannelSMS)
		if n != nil {
			result.Notifications = append(result.Notifications, *n)
			if n.Status == models.DeliveryFailed {
				result.Success = false
				result.Error = n.StatusMessage
			}
		}
	} else {
		util.NotificationsSkippedTotal.WithLabelValues(models.ChannelSMS).Inc()
	}

	return result
}

// sendOne records a pending notification, claims it, and attempts the send,
// writing the outcome back onto the record. Returns nil only when the record
// itself could not be created.
func (d *Dispatcher) sendOne(ctx context.Context, order *models.Order, customer *models.Customer, content messageContent, channel string) *models.Notification {
	n := &models.Notification{
		RecipientID:  customer.ID,
		OrderID:      &order.ID,
		Type:         content.Type,
		Channel:      channel,
		Status:       models.DeliveryPending,
		ScheduledFor: time.Now(),
	}
	switch channel {
	case models.ChannelEmail:
		n.Subject = content.Subject
		n.Content = emailBody(order, customer, content, d.studio)
	case models.ChannelSMS:
		n.Content = content.SMS
	}

	if err := d.store.CreateNotification(ctx, n); err != nil {
		d.logger.Error("Failed to create notification record",
			zap.String("channel", channel),
			zap.Int64("order_id", order.ID),
			zap.Error(err))
		return nil
	}

	// The dispatcher claims its own record so a sweep starting mid-dispatch
	// cannot double-send it.
	claimed, err := d.store.ClaimNotification(ctx, n.ID)
	if err != nil {
		d.logger.Error("Failed to claim notification", zap.Int64("id", n.ID), zap.Error(err))
		return n
	}
	if !claimed {
		return n
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	var res SendResult
	switch channel {
	case models.ChannelEmail:
		res = d.email.Send(sendCtx, customer.Email, n.Subject, n.Content)
	case models.ChannelSMS:
		res = d.sms.Send(sendCtx, customer.Phone, n.Content)
	}

	if res.Success {
		now := time.Now()
		n.Status = models.DeliverySent
		n.SentAt = &now
		util.NotificationsSentTotal.WithLabelValues(channel).Inc()
	} else {
		n.Status = models.DeliveryFailed
		n.StatusMessage = res.Error
		util.NotificationsFailedTotal.WithLabelValues(channel).Inc()
		if err := d.store.MarkNotificationFailed(ctx, n.ID, res.Error); err != nil {
			d.logger.Error("Failed to record send failure", zap.Int64("id", n.ID), zap.Error(err))
		}
		d.logger.Warn("Notification send failed",
			zap.String("channel", channel),
			zap.Int64("order_id", order.ID),
			zap.String("detail", res.Error))
	}

	return n
}

// SendTest fires a one-off test message to the given addresses, bypassing
// notification records. Used by the admin test endpoint.
func (d *Dispatcher) SendTest(ctx context.Context, email, phone string) map[string]SendResult {
	results := make(map[string]SendResult)

	if email != "" {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		results[models.ChannelEmail] = d.email.Send(sendCtx, email,
			"Frame Guru Notification System Test",
			"<p>This is a test message from Frame Guru. If you received this, our notification system is working correctly.</p>")
		cancel()
	}

	if phone != "" {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		results[models.ChannelSMS] = d.sms.Send(sendCtx, phone,
			"This is a test message from Frame Guru. If you received this, our notification system is working correctly.")
		cancel()
	}

	return results
}
