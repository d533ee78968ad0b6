// Package payment talks to the hosted checkout provider
package payment

// Provider events that can create an order
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// Checkout payment states. Delayed methods complete the checkout while
// still unpaid and confirm later with EventAsyncPaymentSucceeded.
const (
	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// LineItem is one priced row on the hosted payment page. UnitAmount is in
// the currency's minor unit.
type LineItem struct {
	Name       string
	Image      string
	UnitAmount int64
	Quantity   int64
}

type CheckoutRequest struct {
	// CheckoutID is echoed back in the webhook metadata
	CheckoutID    string
	CustomerEmail string
	Items         []LineItem
	SuccessURL    string
	CancelURL     string
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is a verified provider callback
type Event struct {
	Type          string
	SessionID     string
	CheckoutID    string
	AmountTotal   int64
	PaymentStatus string
}

// Settled reports whether the customer's money has been collected
func (e *Event) Settled() bool {
	return e.PaymentStatus == PaymentStatusPaid || e.PaymentStatus == PaymentStatusNoPaymentRequired
}
