package model

import "time"

// WebsiteType enumerates the kinds of site a client can request.
// The value feeds the pricing multiplier.
type WebsiteType string

const (
	WebsiteBusiness  WebsiteType = "BUSINESS"
	WebsiteEcommerce WebsiteType = "ECOMMERCE"
	WebsitePortfolio WebsiteType = "PORTFOLIO"
	WebsiteBlog      WebsiteType = "BLOG"
	WebsiteCustom    WebsiteType = "CUSTOM"
)

// WebsiteTypes lists every valid website type value.
var WebsiteTypes = []WebsiteType{
	WebsiteBusiness, WebsiteEcommerce, WebsitePortfolio, WebsiteBlog, WebsiteCustom,
}

// ValidWebsiteType reports whether s is one of the enumerated types.
func ValidWebsiteType(s string) bool {
	for _, t := range WebsiteTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Project status values.  The status column is an unconstrained write:
// any authorized actor may set any of these values at any time; no
// transition graph is enforced.
const (
	StatusDraft      = "DRAFT"
	StatusSubmitted  = "SUBMITTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// ProjectStatuses lists every valid project status value.
var ProjectStatuses = []string{
	StatusDraft, StatusSubmitted, StatusInProgress, StatusCompleted, StatusCancelled,
}

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ProjectForm represents a row in the `project_forms` table: one
// submitted intake describing a prospective project.  A form always
// belongs to exactly one user.  EstimatedCost is a cache derived from
// NumberOfPages, Features and WebsiteType; it can be recomputed at any
// time and is never authoritative.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – owning user.
//  BusinessName  – name of the client's business.
//  Industry      – free-form industry label (nullable).
//  WebsiteType   – enumerated site kind.
//  Features      – selected feature names (stored as a JSON array, non-empty).
//  NumberOfPages – requested page count, 1–100.
//  Deadline      – requested delivery date; strictly future at submission.
//  Budget        – client-declared budget in dollars.
//  EstimatedCost – derived price in dollars.
//  Notes         – admin notes attached on status updates (nullable).
//  Status        – lifecycle status.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type ProjectForm struct {
	ID            uint64    // project_forms.id
	UserID        uint64    // project_forms.user_id
	BusinessName  string    // project_forms.business_name
	Industry      *string   // project_forms.industry (nullable)
	WebsiteType   WebsiteType // project_forms.website_type
	Features      []string  // project_forms.features (JSON array)
	NumberOfPages int       // project_forms.number_of_pages
	Deadline      time.Time // project_forms.deadline
	Budget        float64   // project_forms.budget
	EstimatedCost float64   // project_forms.estimated_cost
	Notes         *string   // project_forms.notes (nullable)
	Status        string    // project_forms.status
	CreatedAt     time.Time // project_forms.created_at
	UpdatedAt     time.Time // project_forms.updated_at
}
