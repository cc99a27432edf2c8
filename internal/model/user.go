package model

import "time"

// Role values stored in users.role.  USER is the default for every
// account created through registration or first-login upsert; ADMIN
// accounts are promoted out of band (seed data or manual SQL).
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a row in the `users` table.  The record is created
// on registration (or upserted on the first authenticated request when
// an external identity is presented) and is never deleted by the
// application.
//
// Fields:
//  ID           – primary key identifier.
//  ExternalID   – identifier issued by the external auth provider (nullable).
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password (empty for external-only users).
//  FirstName    – given name.
//  LastName     – family name.
//  Role         – USER or ADMIN.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	ExternalID   *string   // users.external_id (nullable)
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
