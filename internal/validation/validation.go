// Package validation gates create/update payloads before they reach
// the repositories.  It is built on go-playground/validator so that
// every rule lives on the request struct itself, and it surfaces every
// invalid field in a single pass rather than stopping at the first
// violation.  Validation never touches stored state.
package validation

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/launchform/intake-api/internal/model"
)

// DeadlineLayout is the wire format for project deadlines.
const DeadlineLayout = "2006-01-02"

// FieldErrors maps a field's JSON name to a human-readable message.
// A nil or empty map means the payload passed validation.
type FieldErrors map[string]string

// Error implements the error interface so FieldErrors can travel
// through error returns when convenient.
func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// IntakeRequest is the body of POST /v1/projects.
type IntakeRequest struct {
	BusinessName  string   `json:"business_name" validate:"required,min=2,max=100"`
	Industry      string   `json:"industry" validate:"omitempty,max=100"`
	WebsiteType   string   `json:"website_type" validate:"required,websitetype"`
	Features      []string `json:"features" validate:"required,min=1,max=20,dive,required"`
	NumberOfPages int      `json:"number_of_pages" validate:"required,min=1,max=100"`
	Deadline      string   `json:"deadline" validate:"required,futuredate"`
	Budget        float64  `json:"budget" validate:"required,min=500,max=1000000"`
}

// StatusUpdateRequest is the body of PATCH /v1/projects/:id.
type StatusUpdateRequest struct {
	Status string  `json:"status" validate:"required,projectstatus"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

// RegisterRequest is the body of POST /v1/auth/register.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string `json:"last_name" validate:"required,min=2,max=50"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json names so FieldErrors line up with
	// what the client actually sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("websitetype", func(fl validator.FieldLevel) bool {
		return model.ValidWebsiteType(fl.Field().String())
	})
	_ = v.RegisterValidation("projectstatus", func(fl validator.FieldLevel) bool {
		return model.ValidProjectStatus(fl.Field().String())
	})
	_ = v.RegisterValidation("futuredate", func(fl validator.FieldLevel) bool {
		t, err := time.Parse(DeadlineLayout, fl.Field().String())
		if err != nil {
			return false
		}
		return t.After(time.Now().UTC())
	})
	return v
}

// Check validates any of the request structs above and returns one
// message per invalid field, or nil when the payload is valid.
func Check(req any) FieldErrors {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"payload": "invalid payload"}
	}
	fe := make(FieldErrors, len(verrs))
	for _, e := range verrs {
		// Keep the first message per field; dive rules can report both
		// the slice and an element under the same parent name.
		name := e.Field()
		if _, exists := fe[name]; !exists {
			fe[name] = messageFor(e)
		}
	}
	return fe
}

// ParseDeadline converts a validated deadline string to a time.Time.
func ParseDeadline(s string) (time.Time, error) {
	return time.Parse(DeadlineLayout, s)
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "websitetype":
		return "must be one of BUSINESS, ECOMMERCE, PORTFOLIO, BLOG, CUSTOM"
	case "projectstatus":
		return "must be one of DRAFT, SUBMITTED, IN_PROGRESS, COMPLETED, CANCELLED"
	case "futuredate":
		return "must be a date (YYYY-MM-DD) in the future"
	case "min":
		if e.Kind() == reflect.Slice {
			return "must have at least " + e.Param() + " entries"
		}
		if e.Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.Slice {
			return "must have at most " + e.Param() + " entries"
		}
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	default:
		return "is invalid"
	}
}
