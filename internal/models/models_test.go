package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeTotals(t *testing.T) {
	order := &Order{
		TaxAmount:      11.55,
		ShippingAmount: 12.00,
		DiscountAmount: 5.00,
		Items: []OrderItem{
			{Subtotal: 135.98},
			{Subtotal: 49.99},
		},
	}

	order.RecomputeTotals()

	assert.Equal(t, 185.97, order.Subtotal)
	assert.Equal(t, 204.52, order.TotalAmount)
}

func TestRecomputeTotalsNoItems(t *testing.T) {
	order := &Order{
		TaxAmount:      5.00,
		ShippingAmount: 10.00,
	}

	order.RecomputeTotals()

	assert.Equal(t, 0.0, order.Subtotal)
	assert.Equal(t, 15.0, order.TotalAmount)
}

func TestAdvanceStatusAppendsHistory(t *testing.T) {
	order := &Order{ID: 7}

	require.NoError(t, order.AdvanceStatus(StatusPlaced, "Order placed", "system"))
	require.NoError(t, order.AdvanceStatus(StatusPaymentConfirmed, "", "staff:maria"))
	require.NoError(t, order.AdvanceStatus(StatusInProduction, "Frame cut", "staff:maria"))

	assert.Equal(t, StatusInProduction, order.CurrentStatus)
	require.Len(t, order.StatusHistory, 3)
	assert.Equal(t, StatusPlaced, order.StatusHistory[0].Status)
	assert.Equal(t, StatusInProduction, order.StatusHistory[2].Status)
	assert.Equal(t, "staff:maria", order.StatusHistory[2].UpdatedBy)

	// last history entry always matches the current status
	assert.Equal(t, order.CurrentStatus, order.StatusHistory[len(order.StatusHistory)-1].Status)
}

func TestAdvanceStatusRequiresActor(t *testing.T) {
	order := &Order{}

	err := order.AdvanceStatus(StatusPlaced, "note", "")
	assert.ErrorIs(t, err, ErrMissingActor)
	assert.Empty(t, order.StatusHistory)
	assert.Empty(t, order.CurrentStatus)
}

func TestAdvanceStatusRejectsUnknownStatus(t *testing.T) {
	order := &Order{}
	require.NoError(t, order.AdvanceStatus(StatusPlaced, "", "system"))

	err := order.AdvanceStatus("reframed", "", "system")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.Equal(t, StatusPlaced, order.CurrentStatus)
	assert.Len(t, order.StatusHistory, 1)
}

func TestAdvanceStatusAllowsBackwardMoves(t *testing.T) {
	// Staff can move an order back in the workflow to correct mistakes.
	order := &Order{}
	require.NoError(t, order.AdvanceStatus(StatusQualityCheck, "", "staff:lee"))
	require.NoError(t, order.AdvanceStatus(StatusInProduction, "Re-cut needed", "staff:lee"))

	assert.Equal(t, StatusInProduction, order.CurrentStatus)
	assert.Len(t, order.StatusHistory, 2)
}

func TestAdvanceStatusDeliveredSetsCompletedDate(t *testing.T) {
	order := &Order{}
	require.NoError(t, order.AdvanceStatus(StatusDelivered, "", "system"))

	require.NotNil(t, order.CompletedDate)
	assert.WithinDuration(t, time.Now(), *order.CompletedDate, time.Second)

	// a second delivery event keeps the original completion date
	first := *order.CompletedDate
	require.NoError(t, order.AdvanceStatus(StatusDelivered, "re-delivered", "staff:lee"))
	assert.Equal(t, first, *order.CompletedDate)
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 135.98, RoundCents(79.99*1.7))
	assert.Equal(t, 0.13, RoundCents(0.125))
	assert.Equal(t, 10.0, RoundCents(10.004))
	assert.Equal(t, 15.34, RoundCents(185.97*0.0825))
	assert.Equal(t, -0.13, RoundCents(-0.125))
	assert.Equal(t, 0.0, RoundCents(0))
}
