package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"frameguru/internal/models"
)

// CreateOrder inserts an order with its items and opening history entry in
// one transaction. Totals are expected to be recomputed by the caller first.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (order_number, customer_id, current_status, subtotal, tax_amount,
		                    shipping_amount, discount_amount, total_amount, shipping_method,
		                    tracking_number, estimated_completion, notes, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, last_modified`
	if err := tx.GetContext(ctx, order, query,
		order.OrderNumber, order.CustomerID, order.CurrentStatus, order.Subtotal,
		order.TaxAmount, order.ShippingAmount, order.DiscountAmount, order.TotalAmount,
		order.ShippingMethod, order.TrackingNumber, order.EstimatedCompletion,
		order.Notes, order.Source); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := tx.GetContext(ctx, &order.Items[i].ID, `
			INSERT INTO order_items (order_id, item_type, product_id, tier_id, frame_config, quantity, unit_price, subtotal, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			order.ID, order.Items[i].ItemType, order.Items[i].ProductID,
			order.Items[i].TierID, order.Items[i].FrameConfig, order.Items[i].Quantity,
			order.Items[i].UnitPrice, order.Items[i].Subtotal, order.Items[i].Notes); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	for i := range order.StatusHistory {
		order.StatusHistory[i].OrderID = order.ID
		if err := tx.GetContext(ctx, &order.StatusHistory[i].ID, `
			INSERT INTO status_history (order_id, status, timestamp, note, updated_by)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			order.ID, order.StatusHistory[i].Status, order.StatusHistory[i].Timestamp,
			order.StatusHistory[i].Note, order.StatusHistory[i].UpdatedBy); err != nil {
			return fmt.Errorf("failed to insert status history: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order with items and history.
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s.loadOrderChildren(ctx, &order)
}

// GetOrderByNumber retrieves an order by its human-readable number, nil when
// absent. Absence is a normal outcome on the public lookup path, not an
// error.
func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE order_number = $1", orderNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.loadOrderChildren(ctx, &order)
}

func (s *Store) loadOrderChildren(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := s.db.SelectContext(ctx, &order.Items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", order.ID); err != nil {
		return nil, err
	}
	if err := s.db.SelectContext(ctx, &order.StatusHistory,
		"SELECT * FROM status_history WHERE order_id = $1 ORDER BY timestamp, id", order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrdersByCustomerID retrieves a customer's orders, newest first, without
// children.
func (s *Store) GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
	return orders, err
}

// AppendStatus persists one status advancement: a new history row plus the
// denormalized current status, atomically.
func (s *Store) AppendStatus(ctx context.Context, orderID int64, entry *models.StatusHistoryEntry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.GetContext(ctx, &entry.ID, `
		INSERT INTO status_history (order_id, status, timestamp, note, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		orderID, entry.Status, entry.Timestamp, entry.Note, entry.UpdatedBy); err != nil {
		return fmt.Errorf("failed to insert status history: %w", err)
	}

	setCompleted := ""
	if entry.Status == models.StatusDelivered {
		setCompleted = ", completed_date = COALESCE(completed_date, NOW())"
	}
	res, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE orders SET current_status = $1, last_modified = NOW()%s WHERE id = $2`, setCompleted),
		entry.Status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}

	return tx.Commit()
}

// UpdateOrderShipping records tracking details and estimated completion.
func (s *Store) UpdateOrderShipping(ctx context.Context, orderID int64, trackingNumber string, estimatedCompletion *time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET tracking_number = COALESCE(NULLIF($1, ''), tracking_number),
		    estimated_completion = COALESCE($2, estimated_completion),
		    last_modified = NOW()
		WHERE id = $3`,
		trackingNumber, estimatedCompletion, orderID)
	return err
}

// GetRecentDeliveredOrders returns orders currently delivered whose
// completion date falls within the window. Used by the follow-up scheduler.
func (s *Store) GetRecentDeliveredOrders(ctx context.Context, windowDays int) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE current_status = $1
		  AND completed_date >= NOW() - ($2 || ' days')::interval`,
		models.StatusDelivered, windowDays)
	return orders, err
}
