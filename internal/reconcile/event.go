// Package reconcile applies payment-provider events to local payment
// and project state.  The boundary layer (the webhook handler) owns
// signature verification and payload decoding; once an Event reaches
// this package its authenticity is trusted.
package reconcile

// Event is the tagged union of provider event kinds the reconciler
// understands.  The boundary maps raw provider payloads onto these
// types; anything it does not recognize becomes Unknown, which the
// reconciler treats as a successful no-op so new provider event types
// never turn into errors.
type Event interface{ eventKind() string }

// CheckoutCompleted reports that a hosted checkout session finished
// successfully.  SessionID identifies the payment row; ProjectID is
// carried in provider metadata and is informational only (the payment
// row is authoritative for the project link).
type CheckoutCompleted struct {
	SessionID       string
	PaymentIntentID string
	ProjectID       string
}

func (CheckoutCompleted) eventKind() string { return "checkout.completed" }

// PaymentFailed reports a failed payment attempt, identified by the
// provider payment-intent id.
type PaymentFailed struct {
	PaymentIntentID string
}

func (PaymentFailed) eventKind() string { return "payment.failed" }

// Unknown wraps any provider event kind without a mapping.
type Unknown struct {
	Type string
}

func (Unknown) eventKind() string { return "unknown" }
