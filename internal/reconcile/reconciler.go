package reconcile

import (
	"context"
	"fmt"
	"log"

	"github.com/launchform/intake-api/internal/model"
)

// Store is the persistence surface the reconciler needs.  Atomic runs
// fn against a transaction-bound view of the same store: if fn returns
// an error every write made inside it must be discarded.  The store is
// injected so the reconciler carries no process-wide state and can be
// exercised against a fake in tests.
type Store interface {
	PaymentBySessionID(ctx context.Context, sessionID string) (model.Payment, error)
	PaymentByIntentID(ctx context.Context, intentID string) (model.Payment, error)
	MarkPaymentPaid(ctx context.Context, paymentID uint64, intentID string) error
	MarkPaymentFailed(ctx context.Context, paymentID uint64) error
	SetProjectStatus(ctx context.Context, projectID uint64, status string) error
	Atomic(ctx context.Context, fn func(Store) error) error
}

// Reconciler applies provider events to payments and their projects.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	if store == nil {
		panic("nil store passed to NewReconciler")
	}
	return &Reconciler{store: store}
}

// Reconcile applies one provider event.  It is safe to call twice with
// the same event: re-applying a PAID or FAILED transition to a row
// already in that state is a successful no-op.  Unknown event kinds
// are logged and succeed without touching state.
func (r *Reconciler) Reconcile(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case CheckoutCompleted:
		return r.checkoutCompleted(ctx, e)
	case PaymentFailed:
		return r.paymentFailed(ctx, e)
	case Unknown:
		log.Printf("reconcile: ignoring unhandled event type %q", e.Type)
		return nil
	default:
		log.Printf("reconcile: ignoring unmapped event %T", ev)
		return nil
	}
}

// checkoutCompleted marks the payment PAID, records the intent id and
// moves the project to IN_PROGRESS.  Both writes happen inside one
// Atomic scope so a concurrent reader can never observe a PAID payment
// next to a still-SUBMITTED project.
func (r *Reconciler) checkoutCompleted(ctx context.Context, e CheckoutCompleted) error {
	p, err := r.store.PaymentBySessionID(ctx, e.SessionID)
	if err != nil {
		return fmt.Errorf("lookup payment by session %s: %w", e.SessionID, err)
	}
	if p.Status == model.PaymentPaid {
		// Redelivered event; the first delivery already applied it.
		return nil
	}
	return r.store.Atomic(ctx, func(s Store) error {
		if err := s.MarkPaymentPaid(ctx, p.ID, e.PaymentIntentID); err != nil {
			return fmt.Errorf("mark payment %d paid: %w", p.ID, err)
		}
		if err := s.SetProjectStatus(ctx, p.ProjectFormID, model.StatusInProgress); err != nil {
			return fmt.Errorf("set project %d in progress: %w", p.ProjectFormID, err)
		}
		return nil
	})
}

// paymentFailed marks the payment FAILED.  The project status is left
// alone; a failed attempt does not cancel the intake.
func (r *Reconciler) paymentFailed(ctx context.Context, e PaymentFailed) error {
	p, err := r.store.PaymentByIntentID(ctx, e.PaymentIntentID)
	if err != nil {
		return fmt.Errorf("lookup payment by intent %s: %w", e.PaymentIntentID, err)
	}
	if p.Status == model.PaymentFailed {
		return nil
	}
	if err := r.store.MarkPaymentFailed(ctx, p.ID); err != nil {
		return fmt.Errorf("mark payment %d failed: %w", p.ID, err)
	}
	return nil
}
