package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/launchform/intake-api/internal/model"
)

// PaymentRepo persists payment rows.  Rows are created PENDING when a
// checkout is initiated; status changes happen only through the
// reconcile store in response to provider events.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentColumns = "id, project_form_id, amount, session_id, payment_intent_id, payment_type, status, created_at, updated_at"

// Create inserts a payment row and populates its generated id.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO payments (project_form_id, amount, session_id, payment_intent_id, payment_type, status)
		 VALUES (?,?,?,?,?,?)`,
		p.ProjectFormID, p.Amount, p.SessionID, p.PaymentIntentID, p.PaymentType, p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetBySessionID looks a payment up by the provider checkout session id.
func (r *PaymentRepo) GetBySessionID(ctx context.Context, sessionID string) (model.Payment, error) {
	return scanPayment(r.DB.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE session_id=? LIMIT 1", sessionID))
}

// GetByIntentID looks a payment up by the provider payment-intent id.
func (r *PaymentRepo) GetByIntentID(ctx context.Context, intentID string) (model.Payment, error) {
	return scanPayment(r.DB.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE payment_intent_id=? LIMIT 1", intentID))
}

// ListByProject returns all payments for one project, newest first.
func (r *PaymentRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE project_form_id=? ORDER BY created_at DESC, id DESC", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPayment(row rowScanner) (model.Payment, error) {
	var (
		p       model.Payment
		session sql.NullString
		intent  sql.NullString
	)
	err := row.Scan(&p.ID, &p.ProjectFormID, &p.Amount, &session, &intent, &p.PaymentType, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Payment{}, ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	if session.Valid {
		v := session.String
		p.SessionID = &v
	}
	if intent.Valid {
		v := intent.String
		p.PaymentIntentID = &v
	}
	return p, nil
}
