// Package queue defines message payloads exchanged over the message broker.
package queue

// ProjectSubmittedEvent is published when a new intake is accepted.
// It carries enough for downstream consumers to notify or run
// analytics without querying the primary database.
type ProjectSubmittedEvent struct {
	ProjectID     uint64   `json:"project_id"`
	UserID        uint64   `json:"user_id"`
	BusinessName  string   `json:"business_name"`
	WebsiteType   string   `json:"website_type"`
	Features      []string `json:"features"`
	NumberOfPages int      `json:"number_of_pages"`
	Budget        float64  `json:"budget"`
	EstimatedCost float64  `json:"estimated_cost"`
	SubmittedAt   string   `json:"submitted_at"`
}

// PaymentReconciledEvent is published after a provider event has been
// applied, whether the outcome was PAID or FAILED.
type PaymentReconciledEvent struct {
	PaymentID    uint64  `json:"payment_id"`
	ProjectID    uint64  `json:"project_id"`
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
	ReconciledAt string  `json:"reconciled_at"`
}
