package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"frameguru/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(st Store, email EmailSender, sms SMSSender) *Dispatcher {
	studio := StudioInfo{Address: "214 Gallery Row", Phone: "(828) 555-0147", Hours: "Tue-Sat 10am-6pm"}
	return NewDispatcher(st, email, sms, studio, time.Second)
}

func TestNotifyStatusChangeBothChannels(t *testing.T) {
	st := newFakeStore()
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	d := newTestDispatcher(st, email, sms)

	result := d.NotifyStatusChange(context.Background(), testOrder(), testCustomer(), models.StatusPlaced)

	assert.True(t, result.Success)
	assert.Len(t, result.Notifications, 2)
	assert.Len(t, email.sent, 1)
	assert.Len(t, sms.sent, 1)
	assert.Equal(t, "ana@example.com", email.sent[0].To)
	assert.Contains(t, email.sent[0].Subject, "FG-20250301-A1B2")
	assert.Contains(t, sms.sent[0].Text, "has been placed")
	assert.Len(t, st.byStatus(models.DeliverySent), 2)
}

func TestNotifyStatusChangeNoPreferencesNoRecords(t *testing.T) {
	st := newFakeStore()
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	d := newTestDispatcher(st, email, sms)

	customer := testCustomer()
	customer.EmailOptIn = false
	customer.SMSOptIn = false

	result := d.NotifyStatusChange(context.Background(), testOrder(), customer, models.StatusInProduction)

	assert.True(t, result.Success)
	assert.Empty(t, result.Notifications)
	assert.Empty(t, email.sent)
	assert.Empty(t, sms.sent)
	assert.Empty(t, st.notifications)
}

func TestNotifyStatusChangeSMSRequiresPhone(t *testing.T) {
	st := newFakeStore()
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	d := newTestDispatcher(st, email, sms)

	customer := testCustomer()
	customer.Phone = ""

	result := d.NotifyStatusChange(context.Background(), testOrder(), customer, models.StatusQualityCheck)

	assert.True(t, result.Success)
	assert.Len(t, result.Notifications, 1)
	assert.Equal(t, models.ChannelEmail, result.Notifications[0].Channel)
	assert.Empty(t, sms.sent)
}

func TestNotifyStatusChangeShippedSMSCarriesTracking(t *testing.T) {
	st := newFakeStore()
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	d := newTestDispatcher(st, email, sms)

	order := testOrder()
	order.TrackingNumber = "1Z999"

	result := d.NotifyStatusChange(context.Background(), order, testCustomer(), models.StatusShipped)

	require.True(t, result.Success)
	require.Len(t, sms.sent, 1)
	assert.Contains(t, sms.sent[0].Text, "1Z999")
}

func TestNotifyStatusChangeDeliveredSendsBothChannels(t *testing.T) {
	st := newFakeStore()
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	d := newTestDispatcher(st, email, sms)

	result := d.NotifyStatusChange(context.Background(), testOrder(), testCustomer(), models.StatusDelivered)

	require.True(t, result.Success)
	require.Len(t, result.Notifications, 2)
	for _, n := range result.Notifications {
		assert.Equal(t, models.NotificationFollowUp, n.Type)
		assert.Nil(t, n.DedupKey)
	}
	// Delivered messages carry the follow_up type, but each channel still
	// gets its own record and its own send.
	assert.Len(t, email.sent, 1)
	assert.Len(t, sms.sent, 1)
	assert.Len(t, st.byStatus(models.DeliverySent), 2)
}

func TestNotifyStatusChangeEmailFailureDoesNotBlockSMS(t *testing.T) {
	st := newFakeStore()
	email := &fakeEmailSender{fail: true, error: "smtp relay refused"}
	sms := &fakeSMSSender{}
	d := newTestDispatcher(st, email, sms)

	result := d.NotifyStatusChange(context.Background(), testOrder(), testCustomer(), models.StatusReadyForPickup)

	assert.False(t, result.Success)
	assert.Equal(t, "smtp relay refused", result.Error)
	require.Len(t, result.Notifications, 2)
	assert.Len(t, sms.sent, 1, "SMS must still be attempted after the email failure")

	failed := st.byStatus(models.DeliveryFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, models.ChannelEmail, failed[0].Channel)
	assert.Equal(t, "smtp relay refused", failed[0].StatusMessage)
	assert.Len(t, st.byStatus(models.DeliverySent), 1)
}

func TestNotifyStatusChangeUnknownStatusFallsBack(t *testing.T) {
	st := newFakeStore()
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	d := newTestDispatcher(st, email, sms)

	result := d.NotifyStatusChange(context.Background(), testOrder(), testCustomer(), "reframed")

	assert.True(t, result.Success)
	require.Len(t, sms.sent, 1)
	assert.Contains(t, sms.sent[0].Text, "status has been updated to: reframed")
	assert.Contains(t, email.sent[0].Subject, "Status Updated")
}

func TestNotifyStatusChangeTwiceCreatesIndependentRecords(t *testing.T) {
	st := newFakeStore()
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	d := newTestDispatcher(st, email, sms)

	d.NotifyStatusChange(context.Background(), testOrder(), testCustomer(), models.StatusPlaced)
	d.NotifyStatusChange(context.Background(), testOrder(), testCustomer(), models.StatusPlaced)

	// No dedup at this layer: firing once per status change is the caller's job.
	assert.Len(t, st.notifications, 4)
}

func TestEmailBodyIncludesFinancials(t *testing.T) {
	order := testOrder()
	order.DiscountAmount = 5
	customer := testCustomer()
	content := contentForStatus(order, models.StatusPlaced)

	body := emailBody(order, customer, content, StudioInfo{Address: "x", Phone: "y", Hours: "z"})

	assert.True(t, strings.Contains(body, "$135.98"))
	assert.True(t, strings.Contains(body, "Hi Ana"))
	assert.True(t, strings.Contains(body, "-$5.00"))
}
