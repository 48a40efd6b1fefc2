package notify

import (
	"context"
	"time"

	"frameguru/internal/models"
	"frameguru/internal/util"

	"go.uber.org/zap"
)

// Processor sweeps pending notifications and schedules delivery follow-ups.
type Processor struct {
	store          Store
	email          EmailSender
	sms            SMSSender
	sendTimeout    time.Duration
	followUpWindow int
	logger         *zap.Logger
}

// NewProcessor creates a queue processor.
func NewProcessor(st Store, email EmailSender, sms SMSSender, sendTimeout time.Duration, followUpWindow int) *Processor {
	return &Processor{
		store:          st,
		email:          email,
		sms:            sms,
		sendTimeout:    sendTimeout,
		followUpWindow: followUpWindow,
		logger:         util.GetLogger(),
	}
}

// ProcessPending sends every notification still pending and due. Each record
// gets exactly one attempt: the claim is a conditional update on pending
// state, so concurrent sweeps cannot both send the same record, and a record
// always ends the sweep with a terminal status. Failed records are not
// retried automatically.
func (p *Processor) ProcessPending(ctx context.Context) (int, error) {
	ctx, span := util.StartSpan(ctx, "Processor.ProcessPending")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PendingSweepLatency.Observe(time.Since(start).Seconds())
	}()

	due, err := p.store.ListDueNotifications(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range due {
		n := &due[i]

		claimed, err := p.store.ClaimNotification(ctx, n.ID)
		if err != nil {
			p.logger.Error("Failed to claim notification", zap.Int64("id", n.ID), zap.Error(err))
			continue
		}
		if !claimed {
			// Another sweep got here first.
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, p.sendTimeout)
		var res SendResult
		switch n.Channel {
		case models.ChannelEmail:
			res = p.email.Send(sendCtx, n.RecipientEmail, n.Subject, n.Content)
		case models.ChannelSMS:
			res = p.sms.Send(sendCtx, n.RecipientPhone, n.Content)
		default:
			res = SendResult{Error: "unsupported notification channel: " + n.Channel}
		}
		cancel()

		if res.Success {
			util.NotificationsSentTotal.WithLabelValues(n.Channel).Inc()
		} else {
			util.NotificationsFailedTotal.WithLabelValues(n.Channel).Inc()
			if err := p.store.MarkNotificationFailed(ctx, n.ID, res.Error); err != nil {
				p.logger.Error("Failed to record send failure", zap.Int64("id", n.ID), zap.Error(err))
			}
		}

		processed++
		util.PendingSweepProcessed.Inc()
	}

	if processed > 0 {
		p.logger.Info("Pending notification sweep finished", zap.Int("processed", processed))
	}
	return processed, nil
}

// ScheduleFollowUps creates one follow-up notification for each order
// delivered within the window that does not already have one, scheduled for
// 10:00 the next day. The insert is conditional on a uniqueness constraint,
// so concurrent sweeps never double-schedule an order.
func (p *Processor) ScheduleFollowUps(ctx context.Context) (int, error) {
	ctx, span := util.StartSpan(ctx, "Processor.ScheduleFollowUps")
	defer span.End()

	orders, err := p.store.GetRecentDeliveredOrders(ctx, p.followUpWindow)
	if err != nil {
		return 0, err
	}

	scheduled := 0
	for i := range orders {
		order := &orders[i]

		customer, err := p.store.GetCustomerByID(ctx, order.CustomerID)
		if err != nil {
			p.logger.Error("Failed to load customer for follow-up",
				zap.Int64("order_id", order.ID), zap.Error(err))
			continue
		}

		n := &models.Notification{
			RecipientID:  customer.ID,
			OrderID:      &order.ID,
			Type:         models.NotificationFollowUp,
			Channel:      models.ChannelEmail,
			Subject:      "How are you enjoying your frames?",
			Content:      "Follow-up email content will be generated at sending time",
			Status:       models.DeliveryPending,
			ScheduledFor: followUpAt(time.Now()),
		}

		created, err := p.store.CreateFollowUpNotification(ctx, n)
		if err != nil {
			p.logger.Error("Failed to schedule follow-up",
				zap.Int64("order_id", order.ID), zap.Error(err))
			continue
		}
		if created {
			scheduled++
			util.FollowUpsScheduledTotal.Inc()
		}
	}

	if scheduled > 0 {
		p.logger.Info("Follow-up scheduling finished", zap.Int("scheduled", scheduled))
	}
	return scheduled, nil
}
