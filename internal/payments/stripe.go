// Package payments wraps the hosted payment provider.  The rest of
// the application depends on the Provider interface so handlers can be
// tested with a fake and the Stripe client stays an injected
// dependency rather than a package-level singleton.
package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
)

// CheckoutParams describes one hosted-checkout session to create.
// AmountCents is the charge in the smallest currency unit.
type CheckoutParams struct {
	ProjectID   uint64
	UserID      uint64
	Description string
	AmountCents int64
	PaymentType string // FULL or DEPOSIT
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the provider's answer: the session id used later
// to reconcile the webhook event, and the URL the client is redirected
// to.
type CheckoutSession struct {
	ID  string
	URL string
}

// Provider creates hosted checkout sessions.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error)
}

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	api *stripeclient.API
}

var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider builds a provider from a secret API key.
func NewStripeProvider(apiKey string) *StripeProvider {
	api := &stripeclient.API{}
	api.Init(apiKey, nil)
	return &StripeProvider{api: api}
}

// CreateCheckoutSession opens a single-payment checkout session.  The
// project id and payment type travel in session metadata so the
// webhook can tie the provider event back to local rows.
func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("project_id", fmt.Sprintf("%d", p.ProjectID))
	params.AddMetadata("user_id", fmt.Sprintf("%d", p.UserID))
	params.AddMetadata("payment_type", p.PaymentType)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}
