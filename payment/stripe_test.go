package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

func sign(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  secret,
	}).Header
}

func TestParseWebhook_CheckoutCompleted(t *testing.T) {
	s := NewStripe("sk_test", "whsec_test", "inr")
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_123",
			"object": "checkout.session",
			"amount_total": 1250,
			"payment_status": "paid",
			"metadata": {"checkoutId": "65f0c0ffee0000000000abcd"}
		}}
	}`)

	ev, err := s.ParseWebhook(payload, sign(payload, "whsec_test"))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "cs_test_123", ev.SessionID)
	assert.Equal(t, "65f0c0ffee0000000000abcd", ev.CheckoutID)
	assert.Equal(t, int64(1250), ev.AmountTotal)
	assert.Equal(t, PaymentStatusPaid, ev.PaymentStatus)
	assert.True(t, ev.Settled())
}

func TestParseWebhook_DelayedPayment(t *testing.T) {
	s := NewStripe("sk_test", "whsec_test", "inr")
	completed := []byte(`{"id":"evt_4","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_async","object":"checkout.session","payment_status":"unpaid"}}}`)

	ev, err := s.ParseWebhook(completed, sign(completed, "whsec_test"))
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusUnpaid, ev.PaymentStatus)
	assert.False(t, ev.Settled())

	succeeded := []byte(`{"id":"evt_5","object":"event","type":"checkout.session.async_payment_succeeded",
		"data":{"object":{"id":"cs_async","object":"checkout.session","payment_status":"paid"}}}`)

	ev, err = s.ParseWebhook(succeeded, sign(succeeded, "whsec_test"))
	require.NoError(t, err)
	assert.Equal(t, EventAsyncPaymentSucceeded, ev.Type)
	assert.Equal(t, "cs_async", ev.SessionID)
	assert.True(t, ev.Settled())
}

func TestParseWebhook_OtherEventsPassThrough(t *testing.T) {
	s := NewStripe("sk_test", "whsec_test", "inr")
	payload := []byte(`{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{}}}`)

	ev, err := s.ParseWebhook(payload, sign(payload, "whsec_test"))
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", ev.Type)
	assert.Empty(t, ev.SessionID)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	s := NewStripe("sk_test", "whsec_test", "inr")
	payload := []byte(`{"id":"evt_3","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)

	_, err := s.ParseWebhook(payload, sign(payload, "whsec_other"))
	assert.Error(t, err)
}
