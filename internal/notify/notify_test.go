package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"frameguru/internal/models"
	"frameguru/internal/store"
)

// fakeStore is an in-memory Store with the same semantics as the database:
// claims are a conditional flip on pending state under a lock, and the
// follow-up insert honors the dedup-key unique index plus the
// any-follow-up-exists suppression check.
type fakeStore struct {
	mu            sync.Mutex
	nextID        int64
	notifications map[int64]*models.Notification
	contacts      map[int64]*models.Customer
	delivered     []models.Order
	dedupKeys     map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		notifications: make(map[int64]*models.Notification),
		contacts:      make(map[int64]*models.Customer),
		dedupKeys:     make(map[string]bool),
	}
}

func (f *fakeStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	clone := *n
	f.notifications[n.ID] = &clone
	return nil
}

func (f *fakeStore) ListDueNotifications(ctx context.Context, now time.Time) ([]store.DueNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []store.DueNotification
	for _, n := range f.notifications {
		if n.Status == models.DeliveryPending && !n.ScheduledFor.After(now) {
			d := store.DueNotification{Notification: *n}
			if c, ok := f.contacts[n.RecipientID]; ok {
				d.RecipientEmail = c.Email
				d.RecipientPhone = c.Phone
			}
			due = append(due, d)
		}
	}
	return due, nil
}

func (f *fakeStore) ClaimNotification(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok || n.Status != models.DeliveryPending {
		return false, nil
	}
	now := time.Now()
	n.Status = models.DeliverySent
	n.SentAt = &now
	return true, nil
}

func (f *fakeStore) MarkNotificationFailed(ctx context.Context, id int64, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return fmt.Errorf("notification %d not found", id)
	}
	n.Status = models.DeliveryFailed
	n.StatusMessage = detail
	n.SentAt = nil
	return nil
}

func (f *fakeStore) CreateFollowUpNotification(ctx context.Context, n *models.Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.OrderID == nil {
		return false, fmt.Errorf("follow-up notification requires an order id")
	}
	// Same guards as the SQL: skip when any follow_up row exists for the
	// order (dispatched or scheduled), and enforce dedup-key uniqueness.
	for _, existing := range f.notifications {
		if existing.OrderID != nil && *existing.OrderID == *n.OrderID && existing.Type == models.NotificationFollowUp {
			return false, nil
		}
	}
	key := fmt.Sprintf("follow_up:%d", *n.OrderID)
	if f.dedupKeys[key] {
		return false, nil
	}
	n.DedupKey = &key
	f.dedupKeys[key] = true
	f.nextID++
	n.ID = f.nextID
	clone := *n
	f.notifications[n.ID] = &clone
	return true, nil
}

func (f *fakeStore) GetRecentDeliveredOrders(ctx context.Context, windowDays int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Order(nil), f.delivered...), nil
}

func (f *fakeStore) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return nil, fmt.Errorf("customer %d not found", id)
	}
	clone := *c
	return &clone, nil
}

func (f *fakeStore) byStatus(status string) []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.Status == status {
			out = append(out, n)
		}
	}
	return out
}

// fakeEmailSender records sends and returns a configurable result.
type fakeEmailSender struct {
	mu    sync.Mutex
	sent  []sentEmail
	fail  bool
	error string
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func (f *fakeEmailSender) Send(ctx context.Context, to, subject, htmlBody string) SendResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: htmlBody})
	if f.fail {
		return SendResult{Error: f.error}
	}
	return SendResult{Success: true, ID: "email-1"}
}

type fakeSMSSender struct {
	mu   sync.Mutex
	sent []sentSMS
	fail bool
}

type sentSMS struct {
	To   string
	Text string
}

func (f *fakeSMSSender) Send(ctx context.Context, to, text string) SendResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentSMS{To: to, Text: text})
	if f.fail {
		return SendResult{Error: "sms gateway unavailable"}
	}
	return SendResult{Success: true, ID: "sms-1"}
}

func testOrder() *models.Order {
	return &models.Order{
		ID:             42,
		OrderNumber:    "FG-20250301-A1B2",
		CustomerID:     7,
		CurrentStatus:  models.StatusPlaced,
		Subtotal:       135.98,
		TaxAmount:      11.22,
		ShippingAmount: 12.50,
		TotalAmount:    159.70,
	}
}

func testCustomer() *models.Customer {
	return &models.Customer{
		ID:         7,
		Email:      "ana@example.com",
		FirstName:  "Ana",
		LastName:   "Reyes",
		Phone:      "+15550123456",
		EmailOptIn: true,
		SMSOptIn:   true,
	}
}
