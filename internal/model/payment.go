package model

import "time"

// Payment status values.  Rows start PENDING and are only moved by the
// reconciliation path in response to provider events.
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
	PaymentPartial = "PARTIAL"
)

// Payment type values recorded when a checkout is initiated.  A client
// may pay the full estimate up front or a 50% deposit.
const (
	PaymentTypeFull    = "FULL"
	PaymentTypeDeposit = "DEPOSIT"
)

// Payment represents a row in the `payments` table.  A payment always
// belongs to exactly one project form.  Rows are never deleted on
// their own; they are removed only when the owning project form is
// hard-deleted.
//
// Fields:
//  ID              – primary key identifier.
//  ProjectFormID   – owning project form.
//  Amount          – amount in dollars.
//  SessionID       – provider checkout session id (nullable until known).
//  PaymentIntentID – provider payment-intent id (nullable until reconciled).
//  PaymentType     – FULL or DEPOSIT.
//  Status          – PENDING, PAID, FAILED or PARTIAL.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Payment struct {
	ID              uint64    // payments.id
	ProjectFormID   uint64    // payments.project_form_id
	Amount          float64   // payments.amount
	SessionID       *string   // payments.session_id (nullable)
	PaymentIntentID *string   // payments.payment_intent_id (nullable)
	PaymentType     string    // payments.payment_type
	Status          string    // payments.status
	CreatedAt       time.Time // payments.created_at
	UpdatedAt       time.Time // payments.updated_at
}
