package handler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/launchform/intake-api/internal/model"
	"github.com/launchform/intake-api/internal/queue"
	"github.com/launchform/intake-api/internal/reconcile"
	"github.com/launchform/intake-api/internal/repository"
	queue_publisher "github.com/launchform/intake-api/internal/service"
)

// maxWebhookBody caps how much of a webhook payload is read.
const maxWebhookBody = 1 << 16

// WebhookHandler is the trust boundary for payment-provider callbacks.
// It verifies the payload signature, maps the raw provider event onto
// the reconcile event union and hands it to the reconciler.  Event
// types without a mapping are acknowledged and dropped.
type WebhookHandler struct {
	Secret     string
	Reconciler *reconcile.Reconciler
	Payments   *repository.PaymentRepo
}

func NewWebhookHandler(secret string, r *reconcile.Reconciler, pay *repository.PaymentRepo) *WebhookHandler {
	if r == nil || pay == nil {
		panic("nil dependency passed to NewWebhookHandler")
	}
	return &WebhookHandler{Secret: secret, Reconciler: r, Payments: pay}
}

// HandlePaymentEvent serves POST /webhooks/payment.  A bad signature is
// 400; a mapped event that cannot be applied is 500 so the provider
// retries delivery.  Reconciliation is idempotent, so retries and
// duplicate deliveries are safe.
func (h *WebhookHandler) HandlePaymentEvent(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "read payload failed"})
	}

	event, err := webhook.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"), h.Secret)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "signature verification failed"})
	}

	ev, err := mapEvent(event)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed event payload"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Reconciler.Reconcile(ctx, ev); err != nil {
		log.Printf("webhook: reconcile %s failed: %v", event.Type, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reconcile failed"})
	}

	h.publishOutcome(ctx, ev)
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// mapEvent translates a verified provider event into the reconcile
// union.  Unrecognized types become Unknown, which reconciles as a
// no-op.
func mapEvent(event stripe.Event) (reconcile.Event, error) {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, err
		}
		intentID := ""
		if sess.PaymentIntent != nil {
			intentID = sess.PaymentIntent.ID
		}
		return reconcile.CheckoutCompleted{
			SessionID:       sess.ID,
			PaymentIntentID: intentID,
			ProjectID:       sess.Metadata["project_id"],
		}, nil
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, err
		}
		return reconcile.PaymentFailed{PaymentIntentID: pi.ID}, nil
	default:
		return reconcile.Unknown{Type: string(event.Type)}, nil
	}
}

// publishOutcome emits a PaymentReconciledEvent for applied events.
// Failures only log; the webhook has already been acknowledged.
func (h *WebhookHandler) publishOutcome(ctx context.Context, ev reconcile.Event) {
	var (
		pay model.Payment
		err error
	)
	switch e := ev.(type) {
	case reconcile.CheckoutCompleted:
		pay, err = h.Payments.GetBySessionID(ctx, e.SessionID)
	case reconcile.PaymentFailed:
		pay, err = h.Payments.GetByIntentID(ctx, e.PaymentIntentID)
	default:
		return
	}
	if err != nil {
		log.Printf("webhook: load payment for event failed: %v", err)
		return
	}
	go func(p model.Payment) {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := queue_publisher.PublishPaymentReconciled(pubCtx, queue.PaymentReconciledEvent{
			PaymentID:    p.ID,
			ProjectID:    p.ProjectFormID,
			Amount:       p.Amount,
			Status:       p.Status,
			ReconciledAt: time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			log.Printf("publish payment reconciled %d: %v", p.ID, err)
		}
	}(pay)
}
