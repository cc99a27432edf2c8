package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/launchform/intake-api/internal/model"
)

// ProjectRepo provides CRUD operations for project forms.  A project
// form always belongs to exactly one user; ownership checks live in
// the queries themselves wherever a caller-scoped read is wanted, and
// in LoadForActor for mutations that admins may also perform.
type ProjectRepo struct{ DB *sql.DB }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{DB: db} }

const projectColumns = `id, user_id, business_name, industry, website_type, features,
	number_of_pages, deadline, budget, estimated_cost, notes, status, created_at, updated_at`

// ProjectWithPayments bundles a project form with its payment rows
// for list and detail responses.
type ProjectWithPayments struct {
	model.ProjectForm
	OwnerEmail string
	Payments   []model.Payment
}

// Create inserts a project form and reads the row back to populate
// generated fields (id, timestamps).  Status must be set by the
// caller; the handler always submits with SUBMITTED.
func (r *ProjectRepo) Create(ctx context.Context, p *model.ProjectForm) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO project_forms
		 (user_id, business_name, industry, website_type, features, number_of_pages, deadline, budget, estimated_cost, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.UserID, p.BusinessName, p.Industry, string(p.WebsiteType), features,
		p.NumberOfPages, p.Deadline.Format("2006-01-02"), p.Budget, p.EstimatedCost, p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	got, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = got
	return nil
}

// GetByID returns one project form regardless of owner.  Callers that
// need ownership enforcement use LoadForActor or GetForUser instead.
func (r *ProjectRepo) GetByID(ctx context.Context, id uint64) (model.ProjectForm, error) {
	return scanProject(r.DB.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM project_forms WHERE id=?", id))
}

// GetForUser returns one project owned by the given user, with its
// payments attached.  A project owned by someone else is reported as
// ErrNotFound, not ErrForbidden, so the endpoint does not leak which
// ids exist.
func (r *ProjectRepo) GetForUser(ctx context.Context, id, userID uint64) (*ProjectWithPayments, error) {
	p, err := scanProject(r.DB.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM project_forms WHERE id=? AND user_id=?", id, userID))
	if err != nil {
		return nil, err
	}
	payments, err := r.paymentsFor(ctx, []uint64{p.ID})
	if err != nil {
		return nil, err
	}
	return &ProjectWithPayments{ProjectForm: p, Payments: payments[p.ID]}, nil
}

// LoadForActor returns a project for mutation by the acting user.  The
// project must exist (else ErrNotFound) and the actor must be its
// owner or an admin (else ErrForbidden).
func (r *ProjectRepo) LoadForActor(ctx context.Context, id uint64, actor model.User) (model.ProjectForm, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return model.ProjectForm{}, err
	}
	if !actor.IsAdmin() && p.UserID != actor.ID {
		return model.ProjectForm{}, ErrForbidden
	}
	return p, nil
}

// ListByUser returns the user's projects, newest first, each with its
// payments.
func (r *ProjectRepo) ListByUser(ctx context.Context, userID uint64) ([]ProjectWithPayments, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM project_forms WHERE user_id=? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

// ListAll returns every project, newest first, with owner email and
// payments.  Used by the admin dashboard.
func (r *ProjectRepo) ListAll(ctx context.Context) ([]ProjectWithPayments, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.business_name, p.industry, p.website_type, p.features,
		        p.number_of_pages, p.deadline, p.budget, p.estimated_cost, p.notes, p.status,
		        p.created_at, p.updated_at, u.email
		 FROM project_forms p
		 JOIN users u ON u.id = p.user_id
		 ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var (
		out    []ProjectWithPayments
		ids    []uint64
		emails []string
	)
	for rows.Next() {
		p, email, err := scanProjectWithEmail(rows)
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
		emails = append(emails, email)
		out = append(out, ProjectWithPayments{ProjectForm: p})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	payments, err := r.paymentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].OwnerEmail = emails[i]
		out[i].Payments = payments[out[i].ID]
	}
	return out, nil
}

// UpdateStatus writes the status (and optional notes) of a project.
// Any status value may replace any other; no transition graph is
// enforced.  ErrNotFound is returned when the id does not exist.
func (r *ProjectRepo) UpdateStatus(ctx context.Context, id uint64, status string, notes *string) error {
	var (
		res sql.Result
		err error
	)
	if notes != nil {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE project_forms SET status=?, notes=? WHERE id=?", status, *notes, id)
	} else {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE project_forms SET status=? WHERE id=?", status, id)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	// RowsAffected is 0 both for a missing row and for a no-op write of
	// the same values, so recheck existence before reporting NotFound.
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a project and its payment rows in one transaction.
// Dependent payments are cascaded deliberately: a hard-deleted intake
// leaves no orphaned payment history behind.
func (r *ProjectRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE project_form_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM project_forms WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// collect scans project rows, then attaches payments in one query.
func (r *ProjectRepo) collect(ctx context.Context, rows *sql.Rows) ([]ProjectWithPayments, error) {
	defer rows.Close()
	var (
		out []ProjectWithPayments
		ids []uint64
	)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
		out = append(out, ProjectWithPayments{ProjectForm: p})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	payments, err := r.paymentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Payments = payments[out[i].ID]
	}
	return out, nil
}

// paymentsFor loads payments for a set of project ids in one query.
func (r *ProjectRepo) paymentsFor(ctx context.Context, ids []uint64) (map[uint64][]model.Payment, error) {
	byProject := make(map[uint64][]model.Payment, len(ids))
	if len(ids) == 0 {
		return byProject, nil
	}
	args := make([]interface{}, 0, len(ids))
	placeholders := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		placeholders = append(placeholders, "?")
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, project_form_id, amount, session_id, payment_intent_id, payment_type, status, created_at, updated_at
		 FROM payments WHERE project_form_id IN (`+strings.Join(placeholders, ",")+`)
		 ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		byProject[p.ProjectFormID] = append(byProject[p.ProjectFormID], p)
	}
	return byProject, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...interface{}) error }

func scanProject(row rowScanner) (model.ProjectForm, error) {
	var (
		p           model.ProjectForm
		industry    sql.NullString
		notes       sql.NullString
		websiteType string
		features    []byte
	)
	err := row.Scan(&p.ID, &p.UserID, &p.BusinessName, &industry, &websiteType, &features,
		&p.NumberOfPages, &p.Deadline, &p.Budget, &p.EstimatedCost, &notes, &p.Status,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProjectForm{}, ErrNotFound
	}
	if err != nil {
		return model.ProjectForm{}, err
	}
	p.WebsiteType = model.WebsiteType(websiteType)
	if industry.Valid {
		v := industry.String
		p.Industry = &v
	}
	if notes.Valid {
		v := notes.String
		p.Notes = &v
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return model.ProjectForm{}, err
		}
	}
	return p, nil
}

func scanProjectWithEmail(rows *sql.Rows) (model.ProjectForm, string, error) {
	var (
		p           model.ProjectForm
		industry    sql.NullString
		notes       sql.NullString
		websiteType string
		features    []byte
		email       string
	)
	err := rows.Scan(&p.ID, &p.UserID, &p.BusinessName, &industry, &websiteType, &features,
		&p.NumberOfPages, &p.Deadline, &p.Budget, &p.EstimatedCost, &notes, &p.Status,
		&p.CreatedAt, &p.UpdatedAt, &email)
	if err != nil {
		return model.ProjectForm{}, "", err
	}
	p.WebsiteType = model.WebsiteType(websiteType)
	if industry.Valid {
		v := industry.String
		p.Industry = &v
	}
	if notes.Valid {
		v := notes.String
		p.Notes = &v
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return model.ProjectForm{}, "", err
		}
	}
	return p, email, nil
}
