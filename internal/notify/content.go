package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"frameguru/internal/models"
)

// StudioInfo is included in email bodies so customers can reach the shop.
type StudioInfo struct {
	Address string
	Phone   string
	Hours   string
}

// messageContent is the per-status notification tuple.
type messageContent struct {
	Type    string
	Subject string
	SMS     string
}

// contentForStatus resolves the notification type and wording for a status.
// Any string can reach this boundary; unrecognized statuses fall back to a
// generic update rather than an error.
func contentForStatus(order *models.Order, status string) messageContent {
	num := order.OrderNumber

	switch status {
	case models.StatusPlaced:
		return messageContent{
			Type:    models.NotificationOrderConfirmation,
			Subject: fmt.Sprintf("Order Confirmation: #%s", num),
			SMS: fmt.Sprintf("Your Frame Guru order #%s has been placed. Total: $%.2f. Track your order on our website.",
				num, order.TotalAmount),
		}
	case models.StatusPaymentConfirmed:
		return messageContent{
			Type:    models.NotificationPaymentConfirmation,
			Subject: fmt.Sprintf("Payment Confirmed: Order #%s", num),
			SMS:     fmt.Sprintf("Payment confirmed for your Frame Guru order #%s. We'll begin working on it soon!", num),
		}
	case models.StatusInProduction:
		eta := "To be determined"
		if order.EstimatedCompletion != nil {
			eta = order.EstimatedCompletion.Format("1/2/2006")
		}
		return messageContent{
			Type:    models.NotificationStatusUpdate,
			Subject: fmt.Sprintf("Your Order #%s is in Production", num),
			SMS:     fmt.Sprintf("Your Frame Guru order #%s is now in production. Estimated completion: %s", num, eta),
		}
	case models.StatusQualityCheck:
		return messageContent{
			Type:    models.NotificationStatusUpdate,
			Subject: fmt.Sprintf("Quality Check: Order #%s", num),
			SMS:     fmt.Sprintf("Your Frame Guru order #%s is now in quality check. Almost ready!", num),
		}
	case models.StatusReadyForPickup:
		return messageContent{
			Type:    models.NotificationReadyForPickup,
			Subject: fmt.Sprintf("Your Order #%s is Ready for Pickup", num),
			SMS:     fmt.Sprintf("Great news! Your Frame Guru order #%s is ready for pickup at our studio.", num),
		}
	case models.StatusShipped:
		tracking := ""
		if order.TrackingNumber != "" {
			tracking = fmt.Sprintf(". Tracking #: %s", order.TrackingNumber)
		}
		return messageContent{
			Type:    models.NotificationShipping,
			Subject: fmt.Sprintf("Your Order #%s Has Shipped", num),
			SMS:     fmt.Sprintf("Your Frame Guru order #%s has shipped%s!", num, tracking),
		}
	case models.StatusDelivered:
		return messageContent{
			Type:    models.NotificationFollowUp,
			Subject: "How are you enjoying your frames?",
			SMS: fmt.Sprintf("Your Frame Guru order #%s has been delivered. We hope you love your frames! Please let us know if you have any questions.",
				num),
		}
	default:
		return messageContent{
			Type:    models.NotificationStatusUpdate,
			Subject: fmt.Sprintf("Order #%s Status Updated", num),
			SMS:     fmt.Sprintf("Your Frame Guru order #%s status has been updated to: %s", num, status),
		}
	}
}

// emailBody renders the HTML body for a status notification.
func emailBody(order *models.Order, customer *models.Customer, content messageContent, studio StudioInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(content.Subject))
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(customer.FirstName))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(content.SMS))

	fmt.Fprintf(&b, "<table><tr><td>Order</td><td>#%s</td></tr>", html.EscapeString(order.OrderNumber))
	fmt.Fprintf(&b, "<tr><td>Subtotal</td><td>$%.2f</td></tr>", order.Subtotal)
	fmt.Fprintf(&b, "<tr><td>Tax</td><td>$%.2f</td></tr>", order.TaxAmount)
	fmt.Fprintf(&b, "<tr><td>Shipping</td><td>$%.2f</td></tr>", order.ShippingAmount)
	if order.DiscountAmount > 0 {
		fmt.Fprintf(&b, "<tr><td>Discount</td><td>-$%.2f</td></tr>", order.DiscountAmount)
	}
	fmt.Fprintf(&b, "<tr><td>Total</td><td>$%.2f</td></tr></table>", order.TotalAmount)

	if order.TrackingNumber != "" {
		fmt.Fprintf(&b, "<p>Tracking number: %s</p>", html.EscapeString(order.TrackingNumber))
	}
	if order.EstimatedCompletion != nil {
		fmt.Fprintf(&b, "<p>Estimated completion: %s</p>", order.EstimatedCompletion.Format("January 2, 2006"))
	}

	fmt.Fprintf(&b, "<p>Frame Guru Studio<br>%s<br>%s<br>%s</p>",
		html.EscapeString(studio.Address), html.EscapeString(studio.Phone), html.EscapeString(studio.Hours))

	return b.String()
}

// followUpAt returns 10:00 local time on the day after ref, when follow-up
// notifications go out.
func followUpAt(ref time.Time) time.Time {
	next := ref.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 10, 0, 0, 0, ref.Location())
}
