package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	stripe "github.com/stripe/stripe-go/v82"

	"github.com/launchform/intake-api/internal/model"
	"github.com/launchform/intake-api/internal/reconcile"
	"github.com/launchform/intake-api/internal/repository"
)

const testWebhookSecret = "whsec_test_secret"

// noopStore satisfies reconcile.Store for events that never touch
// persistence.
type noopStore struct{}

func (noopStore) PaymentBySessionID(context.Context, string) (model.Payment, error) {
	return model.Payment{}, repository.ErrNotFound
}
func (noopStore) PaymentByIntentID(context.Context, string) (model.Payment, error) {
	return model.Payment{}, repository.ErrNotFound
}
func (noopStore) MarkPaymentPaid(context.Context, uint64, string) error { return nil }
func (noopStore) MarkPaymentFailed(context.Context, uint64) error       { return nil }
func (noopStore) SetProjectStatus(context.Context, uint64, string) error {
	return nil
}
func (noopStore) Atomic(_ context.Context, fn func(reconcile.Store) error) error {
	return fn(noopStore{})
}

// signStripePayload builds a Stripe-Signature header for payload.
func signStripePayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newWebhookTestHandler() *WebhookHandler {
	return NewWebhookHandler(testWebhookSecret,
		reconcile.NewReconciler(noopStore{}),
		repository.NewPaymentRepo(nil))
}

func postWebhook(h *WebhookHandler, payload []byte, sig string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(string(payload)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Stripe-Signature", sig)
	rec := httptest.NewRecorder()
	_ = h.HandlePaymentEvent(e.NewContext(req, rec))
	return rec
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)
	rec := postWebhook(newWebhookTestHandler(), payload, "t=1,v1=deadbeef")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)
	rec := postWebhook(newWebhookTestHandler(), payload, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhookAcksUnknownEventType(t *testing.T) {
	payload := []byte(fmt.Sprintf(
		`{"id":"evt_2","object":"event","api_version":%q,"type":"customer.created","data":{"object":{}}}`,
		stripe.APIVersion))
	rec := postWebhook(newWebhookTestHandler(), payload, signStripePayload(payload, testWebhookSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got, ok := body["received"].(bool); !ok || !got {
		t.Fatalf("expected received=true, got %v", body)
	}
}

func TestWebhookRetriesUnknownSession(t *testing.T) {
	// A completed checkout for a session with no local payment row must
	// answer 500 so the provider redelivers.
	obj := `{"id":"cs_missing","object":"checkout.session","payment_intent":"pi_1","metadata":{"project_id":"7"}}`
	payload := []byte(fmt.Sprintf(
		`{"id":"evt_3","object":"event","api_version":%q,"type":"checkout.session.completed","data":{"object":%s}}`,
		stripe.APIVersion, obj))
	rec := postWebhook(newWebhookTestHandler(), payload, signStripePayload(payload, testWebhookSecret))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMapEventCheckoutCompleted(t *testing.T) {
	raw := json.RawMessage(`{"id":"cs_test_123","object":"checkout.session","payment_intent":"pi_test_456","metadata":{"project_id":"9"}}`)
	ev, err := mapEvent(stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	})
	if err != nil {
		t.Fatalf("mapEvent: %v", err)
	}
	cc, ok := ev.(reconcile.CheckoutCompleted)
	if !ok {
		t.Fatalf("expected CheckoutCompleted, got %T", ev)
	}
	if cc.SessionID != "cs_test_123" {
		t.Errorf("session id = %q", cc.SessionID)
	}
	if cc.PaymentIntentID != "pi_test_456" {
		t.Errorf("payment intent id = %q", cc.PaymentIntentID)
	}
	if cc.ProjectID != "9" {
		t.Errorf("project id = %q", cc.ProjectID)
	}
}

func TestMapEventPaymentFailed(t *testing.T) {
	raw := json.RawMessage(`{"id":"pi_test_789","object":"payment_intent"}`)
	ev, err := mapEvent(stripe.Event{
		Type: "payment_intent.payment_failed",
		Data: &stripe.EventData{Raw: raw},
	})
	if err != nil {
		t.Fatalf("mapEvent: %v", err)
	}
	pf, ok := ev.(reconcile.PaymentFailed)
	if !ok {
		t.Fatalf("expected PaymentFailed, got %T", ev)
	}
	if pf.PaymentIntentID != "pi_test_789" {
		t.Errorf("payment intent id = %q", pf.PaymentIntentID)
	}
}

func TestMapEventUnknownType(t *testing.T) {
	ev, err := mapEvent(stripe.Event{
		Type: "invoice.created",
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	})
	if err != nil {
		t.Fatalf("mapEvent: %v", err)
	}
	u, ok := ev.(reconcile.Unknown)
	if !ok {
		t.Fatalf("expected Unknown, got %T", ev)
	}
	if u.Type != "invoice.created" {
		t.Errorf("type = %q", u.Type)
	}
}
