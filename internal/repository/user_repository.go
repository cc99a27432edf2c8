package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/launchform/intake-api/internal/model"
	"github.com/launchform/intake-api/internal/utils"
)

// UserRepo persists user accounts.  Accounts are created on
// registration and never deleted by the application.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, external_id, email, password_hash, first_name, last_name, role, created_at, updated_at"

// Create inserts a user with the USER role and returns its ID.  Emails
// are normalized to lower case; the unique constraint maps to
// ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password, firstName, lastName string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, role) VALUES (?,?,?,?,?)",
		email, hash, firstName, lastName, model.RoleUser)
	if err != nil {
		// MySQL 1062: duplicate entry for the unique email index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpsertExternal creates or refreshes the account tied to an external
// identity, keyed by email.  It mirrors the first-authenticated-request
// flow of a hosted auth provider: the first call creates the row with
// the USER role, later calls only record the external id.  The full
// row is returned either way.
func (r *UserRepo) UpsertExternal(ctx context.Context, externalID, email, firstName, lastName string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (external_id, email, password_hash, first_name, last_name, role)
		 VALUES (?,?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE external_id = VALUES(external_id)`,
		externalID, email, "", firstName, lastName, model.RoleUser)
	if err != nil {
		return model.User{}, err
	}
	return r.GetByEmail(ctx, email)
}

// GetByEmail fetches a user by normalized email.  ErrNotFound is
// returned when no such account exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u   model.User
		ext sql.NullString
	)
	err := row.Scan(&u.ID, &ext, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if ext.Valid {
		v := ext.String
		u.ExternalID = &v
	}
	return u, nil
}
