package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

// Order statuses
const (
	StatusPlaced           = "placed"
	StatusPaymentConfirmed = "payment_confirmed"
	StatusInProduction     = "in_production"
	StatusQualityCheck     = "quality_check"
	StatusReadyForPickup   = "ready_for_pickup"
	StatusShipped          = "shipped"
	StatusDelivered        = "delivered"
	StatusCancelled        = "cancelled"
)

// OrderStatuses is the closed set of statuses an order can carry.
var OrderStatuses = map[string]bool{
	StatusPlaced:           true,
	StatusPaymentConfirmed: true,
	StatusInProduction:     true,
	StatusQualityCheck:     true,
	StatusReadyForPickup:   true,
	StatusShipped:          true,
	StatusDelivered:        true,
	StatusCancelled:        true,
}

// Notification types
const (
	NotificationOrderConfirmation   = "order_confirmation"
	NotificationPaymentConfirmation = "payment_confirmation"
	NotificationStatusUpdate        = "status_update"
	NotificationShipping            = "shipping_notification"
	NotificationReadyForPickup      = "ready_for_pickup"
	NotificationFollowUp            = "follow_up"
)

// Notification channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelApp   = "app"
)

// Notification delivery statuses. A record moves pending -> sent|failed and
// never transitions again.
const (
	DeliveryPending = "pending"
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
)

// Order item types
const (
	ItemStandard = "standard"
	ItemCustom   = "custom"
)

var (
	ErrMissingActor  = errors.New("status change requires a non-empty actor")
	ErrUnknownStatus = errors.New("status is not in the order status set")
)

// Customer is a framing customer. Customers are created on first order or
// registration and are never hard-deleted.
type Customer struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Phone        string    `db:"phone" json:"phone,omitempty"`
	Street       string    `db:"street" json:"street,omitempty"`
	City         string    `db:"city" json:"city,omitempty"`
	State        string    `db:"state" json:"state,omitempty"`
	ZipCode      string    `db:"zip_code" json:"zip_code,omitempty"`
	Country      string    `db:"country" json:"country,omitempty"`
	EmailOptIn   bool      `db:"email_opt_in" json:"email_opt_in"`
	SMSOptIn     bool      `db:"sms_opt_in" json:"sms_opt_in"`
	Notes        string    `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastModified time.Time `db:"last_modified" json:"last_modified"`
}

// Product is a catalog entry. Products are soft-deactivated, never removed,
// so historical orders keep valid references.
type Product struct {
	ID          int64         `db:"id" json:"id"`
	SKU         string        `db:"sku" json:"sku"`
	Name        string        `db:"name" json:"name"`
	Category    string        `db:"category" json:"category"`
	Description string        `db:"description" json:"description,omitempty"`
	BasePrice   float64       `db:"base_price" json:"base_price"`
	FrameType   string        `db:"frame_type" json:"frame_type,omitempty"`
	ModelFile   string        `db:"model_file" json:"model_file,omitempty"`
	IsActive    bool          `db:"is_active" json:"is_active"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	Sizes       []ProductSize `db:"-" json:"sizes,omitempty"`
}

// ProductSize is one size/price/inventory tuple for a product.
type ProductSize struct {
	ID             int64   `db:"id" json:"-"`
	ProductID      int64   `db:"product_id" json:"-"`
	Size           string  `db:"size" json:"size"`
	Price          float64 `db:"price" json:"price"`
	InventoryCount int     `db:"inventory_count" json:"inventory_count"`
}

// FramingTier is a custom-framing service level (1-3).
type FramingTier struct {
	ID             int64          `db:"id" json:"id"`
	Tier           int            `db:"tier" json:"tier"`
	Name           string         `db:"name" json:"name"`
	Description    string         `db:"description" json:"description,omitempty"`
	BasePrice      float64        `db:"base_price" json:"base_price"`
	Features       pq.StringArray `db:"features" json:"features"`
	TurnaroundDays int            `db:"turnaround_days" json:"turnaround_days"`
	IsActive       bool           `db:"is_active" json:"is_active"`
}

// FrameConfig describes a custom framing job attached to an order item.
type FrameConfig struct {
	FrameType       string `json:"frame_type"`
	FrameStyle      string `json:"frame_style"`
	FrameColor      string `json:"frame_color"`
	Size            string `json:"size"`
	MatColor        string `json:"mat_color,omitempty"`
	HasSecondMat    bool   `json:"has_second_mat,omitempty"`
	SecondMatColor  string `json:"second_mat_color,omitempty"`
	ArtworkURL      string `json:"artwork_url,omitempty"`
	CustomObjectURL string `json:"custom_object_url,omitempty"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// Value implements driver.Valuer so a frame config persists as jsonb.
func (fc FrameConfig) Value() (driver.Value, error) {
	return json.Marshal(fc)
}

// Scan implements sql.Scanner for the jsonb frame_config column.
func (fc *FrameConfig) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("frame config: expected []byte from database")
	}
	return json.Unmarshal(b, fc)
}

// OrderItem is one line on an order: either a standard product at a size, or
// a custom framing job against a tier.
type OrderItem struct {
	ID          int64        `db:"id" json:"id"`
	OrderID     int64        `db:"order_id" json:"order_id"`
	ItemType    string       `db:"item_type" json:"item_type"`
	ProductID   *int64       `db:"product_id" json:"product_id,omitempty"`
	TierID      *int64       `db:"tier_id" json:"tier_id,omitempty"`
	FrameConfig *FrameConfig `db:"frame_config" json:"frame_config,omitempty"`
	Quantity    int          `db:"quantity" json:"quantity"`
	UnitPrice   float64      `db:"unit_price" json:"unit_price"`
	Subtotal    float64      `db:"subtotal" json:"subtotal"`
	Notes       string       `db:"notes" json:"notes,omitempty"`
}

// StatusHistoryEntry is one entry in an order's append-only status log.
type StatusHistoryEntry struct {
	ID        int64     `db:"id" json:"-"`
	OrderID   int64     `db:"order_id" json:"-"`
	Status    string    `db:"status" json:"status"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	Note      string    `db:"note" json:"note,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updated_by"`
}

// Order is a customer's purchase: line items, financials, and an append-only
// status history whose last entry always matches CurrentStatus.
type Order struct {
	ID                  int64                `db:"id" json:"id"`
	OrderNumber         string               `db:"order_number" json:"order_number"`
	CustomerID          int64                `db:"customer_id" json:"customer_id"`
	CurrentStatus       string               `db:"current_status" json:"current_status"`
	Subtotal            float64              `db:"subtotal" json:"subtotal"`
	TaxAmount           float64              `db:"tax_amount" json:"tax_amount"`
	ShippingAmount      float64              `db:"shipping_amount" json:"shipping_amount"`
	DiscountAmount      float64              `db:"discount_amount" json:"discount_amount"`
	TotalAmount         float64              `db:"total_amount" json:"total_amount"`
	ShippingMethod      string               `db:"shipping_method" json:"shipping_method,omitempty"`
	TrackingNumber      string               `db:"tracking_number" json:"tracking_number,omitempty"`
	EstimatedCompletion *time.Time           `db:"estimated_completion" json:"estimated_completion,omitempty"`
	CompletedDate       *time.Time           `db:"completed_date" json:"completed_date,omitempty"`
	Notes               string               `db:"notes" json:"notes,omitempty"`
	Source              string               `db:"source" json:"source,omitempty"`
	CreatedAt           time.Time            `db:"created_at" json:"created_at"`
	LastModified        time.Time            `db:"last_modified" json:"last_modified"`
	Items               []OrderItem          `db:"-" json:"items,omitempty"`
	StatusHistory       []StatusHistoryEntry `db:"-" json:"status_history,omitempty"`
}

// RecomputeTotals sums item subtotals into Subtotal and derives TotalAmount.
// It runs on every persist of the order; totals are not trusted before the
// first run.
func (o *Order) RecomputeTotals() {
	var subtotal float64
	for _, item := range o.Items {
		subtotal += item.Subtotal
	}
	o.Subtotal = RoundCents(subtotal)
	o.TotalAmount = RoundCents(o.Subtotal + o.TaxAmount + o.ShippingAmount - o.DiscountAmount)
}

// AdvanceStatus appends a history entry and sets the current status. Any
// member of the status set is accepted regardless of the current state; this
// is deliberate so staff can correct or override an order's position in the
// workflow. Strings outside the set are refused.
func (o *Order) AdvanceStatus(status, note, actor string) error {
	if actor == "" {
		return ErrMissingActor
	}
	if !OrderStatuses[status] {
		return ErrUnknownStatus
	}

	o.StatusHistory = append(o.StatusHistory, StatusHistoryEntry{
		OrderID:   o.ID,
		Status:    status,
		Timestamp: time.Now(),
		Note:      note,
		UpdatedBy: actor,
	})
	o.CurrentStatus = status
	if status == StatusDelivered && o.CompletedDate == nil {
		now := time.Now()
		o.CompletedDate = &now
	}
	return nil
}

// Notification is one attempted message to a customer over one channel.
// Records are mutated only to record a delivery outcome and never deleted.
type Notification struct {
	ID            int64      `db:"id" json:"id"`
	RecipientID   int64      `db:"recipient_id" json:"recipient_id"`
	OrderID       *int64     `db:"order_id" json:"order_id,omitempty"`
	Type          string     `db:"type" json:"type"`
	Channel       string     `db:"channel" json:"channel"`
	Subject       string     `db:"subject" json:"subject,omitempty"`
	Content       string     `db:"content" json:"content"`
	Status        string     `db:"status" json:"status"`
	StatusMessage string     `db:"status_message" json:"status_message,omitempty"`
	DedupKey      *string    `db:"dedup_key" json:"-"`
	ScheduledFor  time.Time  `db:"scheduled_for" json:"scheduled_for"`
	SentAt        *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// RoundCents rounds a dollar amount to the nearest cent, half up.
func RoundCents(v float64) float64 {
	if v < 0 {
		return -RoundCents(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}
