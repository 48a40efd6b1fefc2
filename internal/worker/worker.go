// Package worker runs the background halves of the system: the kafka
// consumer that turns status-change events into customer notifications, and
// the periodic sweeper that delivers queued records and schedules follow-ups.
package worker

import (
	"context"
	"time"

	"frameguru/internal/broker"
	"frameguru/internal/models"
	"frameguru/internal/notify"
	"frameguru/internal/store"
	"frameguru/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes order events and dispatches notifications.
// Kafka may redeliver a message after a crash between handle and commit, so
// every event is checked against the processed-events table before dispatch.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	dispatcher   *notify.Dispatcher
	logger       *zap.Logger
}

// NewNotificationWorker creates a notification worker.
func NewNotificationWorker(consumer *broker.Consumer, st *store.Store, dispatcher *notify.Dispatcher) *NotificationWorker {
	w := &NotificationWorker{
		consumer:   consumer,
		store:      st,
		dispatcher: dispatcher,
		logger:     util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderStatusChanged(w.handleStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker. Blocks until ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker.
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Debug("Skipping already processed event",
			zap.String("event_id", event.EventID))
		return nil
	}

	order, err := w.store.GetOrderByID(ctx, event.OrderID)
	if err != nil {
		w.logger.Error("Failed to load order for notification",
			zap.Int64("order_id", event.OrderID),
			zap.Error(err))
		return err
	}

	customer, err := w.store.GetCustomerByID(ctx, order.CustomerID)
	if err != nil {
		w.logger.Error("Failed to load customer for notification",
			zap.Int64("customer_id", order.CustomerID),
			zap.Error(err))
		return err
	}

	result := w.dispatcher.NotifyStatusChange(ctx, order, customer, event.NewStatus)
	if !result.Success {
		w.logger.Warn("Notification dispatch finished with failures",
			zap.Int64("order_id", event.OrderID),
			zap.String("status", event.NewStatus),
			zap.String("error", result.Error))
	}

	// A send failure is recorded on the notification row; the event itself
	// is done either way. Marking it keeps redeliveries from creating
	// duplicate records.
	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

// SweepWorker periodically delivers due queued notifications and, once a
// day, schedules follow-up messages for recently delivered orders.
type SweepWorker struct {
	processor     *notify.Processor
	sweepInterval time.Duration
	logger        *zap.Logger
}

// NewSweepWorker creates a sweep worker.
func NewSweepWorker(processor *notify.Processor, sweepInterval time.Duration) *SweepWorker {
	return &SweepWorker{
		processor:     processor,
		sweepInterval: sweepInterval,
		logger:        util.GetLogger(),
	}
}

// Start runs the sweep loop. Blocks until ctx is cancelled.
func (sw *SweepWorker) Start(ctx context.Context) error {
	sw.logger.Info("Starting sweep worker",
		zap.Duration("interval", sw.sweepInterval))

	sweep := time.NewTicker(sw.sweepInterval)
	defer sweep.Stop()

	followUps := time.NewTicker(24 * time.Hour)
	defer followUps.Stop()

	// Run once at startup so a restart doesn't delay overdue records by a
	// full interval.
	sw.runSweep(ctx)
	sw.runFollowUps(ctx)

	for {
		select {
		case <-ctx.Done():
			sw.logger.Info("Stopping sweep worker")
			return ctx.Err()
		case <-sweep.C:
			sw.runSweep(ctx)
		case <-followUps.C:
			sw.runFollowUps(ctx)
		}
	}
}

func (sw *SweepWorker) runSweep(ctx context.Context) {
	start := time.Now()
	processed, err := sw.processor.ProcessPending(ctx)
	if err != nil {
		sw.logger.Error("Notification sweep failed", zap.Error(err))
		return
	}
	if processed > 0 {
		sw.logger.Info("Notification sweep completed",
			zap.Int("processed", processed),
			zap.Duration("took", time.Since(start)))
	}
}

func (sw *SweepWorker) runFollowUps(ctx context.Context) {
	created, err := sw.processor.ScheduleFollowUps(ctx)
	if err != nil {
		sw.logger.Error("Follow-up scheduling failed", zap.Error(err))
		return
	}
	if created > 0 {
		sw.logger.Info("Scheduled follow-up notifications",
			zap.Int("created", created))
	}
}
