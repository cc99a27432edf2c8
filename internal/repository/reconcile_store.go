package repository

import (
	"context"
	"database/sql"

	"github.com/launchform/intake-api/internal/model"
	"github.com/launchform/intake-api/internal/reconcile"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ReconcileStore adapts the payments and project_forms tables to the
// reconcile.Store interface.  Outside Atomic it runs against the pool;
// inside it runs against the transaction, so the paired payment and
// project writes of a checkout-completed event commit or roll back
// together.
type ReconcileStore struct {
	db *sql.DB
	q  dbtx
}

var _ reconcile.Store = (*ReconcileStore)(nil)

func NewReconcileStore(db *sql.DB) *ReconcileStore {
	return &ReconcileStore{db: db, q: db}
}

func (s *ReconcileStore) PaymentBySessionID(ctx context.Context, sessionID string) (model.Payment, error) {
	return scanPayment(s.q.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE session_id=? LIMIT 1", sessionID))
}

func (s *ReconcileStore) PaymentByIntentID(ctx context.Context, intentID string) (model.Payment, error) {
	return scanPayment(s.q.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE payment_intent_id=? LIMIT 1", intentID))
}

func (s *ReconcileStore) MarkPaymentPaid(ctx context.Context, paymentID uint64, intentID string) error {
	return s.exec(ctx,
		"UPDATE payments SET status=?, payment_intent_id=? WHERE id=?",
		model.PaymentPaid, intentID, paymentID)
}

func (s *ReconcileStore) MarkPaymentFailed(ctx context.Context, paymentID uint64) error {
	return s.exec(ctx, "UPDATE payments SET status=? WHERE id=?", model.PaymentFailed, paymentID)
}

func (s *ReconcileStore) SetProjectStatus(ctx context.Context, projectID uint64, status string) error {
	return s.exec(ctx, "UPDATE project_forms SET status=? WHERE id=?", status, projectID)
}

// Atomic runs fn against a transaction-bound copy of the store.  Any
// error from fn rolls the transaction back.
func (s *ReconcileStore) Atomic(ctx context.Context, fn func(reconcile.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&ReconcileStore{db: s.db, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// exec runs a single-row update.  Zero affected rows may mean either a
// missing row or a same-value write, so existence is not re-checked
// here; the reconciler always loads the row first.
func (s *ReconcileStore) exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := s.q.ExecContext(ctx, query, args...)
	return err
}
