package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frameguru/internal/models"
)

// CreateNotification inserts a notification record in pending state.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, order_id, type, channel, subject, content, status, status_message, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`
	return s.db.GetContext(ctx, n, query,
		n.RecipientID, n.OrderID, n.Type, n.Channel, n.Subject, n.Content,
		n.Status, n.StatusMessage, n.ScheduledFor)
}

// DueNotification is a pending notification joined with the recipient's
// contact details, the shape the sweep needs to send without extra reads.
type DueNotification struct {
	models.Notification
	RecipientEmail string `db:"recipient_email"`
	RecipientPhone string `db:"recipient_phone"`
}

// ListDueNotifications returns pending notifications scheduled at or before
// now.
func (s *Store) ListDueNotifications(ctx context.Context, now time.Time) ([]DueNotification, error) {
	var due []DueNotification
	err := s.db.SelectContext(ctx, &due, `
		SELECT n.*, c.email AS recipient_email, c.phone AS recipient_phone
		FROM notifications n
		JOIN customers c ON c.id = n.recipient_id
		WHERE n.status = $1 AND n.scheduled_for <= $2
		ORDER BY n.scheduled_for`,
		models.DeliveryPending, now)
	return due, err
}

// ClaimNotification conditionally flips a pending record to sent. Exactly one
// of any number of concurrent sweeps wins the claim; losers get false and
// skip the record. The winner performs the single send attempt and, on
// failure, overwrites the record with the failed outcome.
func (s *Store) ClaimNotification(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET status = $1, sent_at = NOW()
		WHERE id = $2 AND status = $3`,
		models.DeliverySent, id, models.DeliveryPending)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// MarkNotificationFailed records a failed send outcome with its error detail.
func (s *Store) MarkNotificationFailed(ctx context.Context, id int64, detail string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET status = $1, status_message = $2, sent_at = NULL
		WHERE id = $3`,
		models.DeliveryFailed, detail, id)
	return err
}

// CreateFollowUpNotification schedules the day-after follow-up for an order
// if no follow-up exists for it yet. Dispatcher records for delivered orders
// also carry the follow_up type, so the NOT EXISTS guard suppresses the
// scheduled message when a delivery notification already went out. Only the
// scheduler's row carries a dedup key; its unique index makes the
// check-and-insert atomic under concurrent daily sweeps. Returns whether a
// row was created.
func (s *Store) CreateFollowUpNotification(ctx context.Context, n *models.Notification) (bool, error) {
	if n.OrderID == nil {
		return false, errors.New("follow-up notification requires an order id")
	}
	key := fmt.Sprintf("follow_up:%d", *n.OrderID)
	n.DedupKey = &key

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (recipient_id, order_id, type, channel, subject, content, status, scheduled_for, dedup_key)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE NOT EXISTS (
			SELECT 1 FROM notifications WHERE order_id = $2 AND type = $3)
		ON CONFLICT (dedup_key) DO NOTHING`,
		n.RecipientID, n.OrderID, n.Type, n.Channel, n.Subject, n.Content,
		n.Status, n.ScheduledFor, key)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// ListNotificationsByOrder returns the audit trail for an order.
func (s *Store) ListNotificationsByOrder(ctx context.Context, orderID int64) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT * FROM notifications WHERE order_id = $1 ORDER BY created_at", orderID)
	return notifications, err
}

// IsEventProcessed checks whether a broker event has already been handled.
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed records a handled broker event.
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
