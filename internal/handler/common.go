package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/launchform/intake-api/internal/model"
	"github.com/launchform/intake-api/internal/repository"
	"github.com/launchform/intake-api/internal/validation"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// getUserID extracts the authenticated user id placed in context by the
// JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// currentUser loads the authenticated user's row and writes the error
// response itself when that fails.  Tokens outlive account deletions,
// so a missing row maps to 401 rather than 500.  Callers return nil
// when ok is false.
func currentUser(ctx context.Context, c echo.Context, users *repository.UserRepo) (model.User, bool) {
	uid, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return model.User{}, false
	}
	u, err := users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return model.User{}, false
	}
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
		return model.User{}, false
	}
	return u, true
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// ----- response shapes -----

type paymentView struct {
	ID              uint64    `json:"id"`
	ProjectFormID   uint64    `json:"project_form_id"`
	Amount          float64   `json:"amount"`
	SessionID       *string   `json:"session_id"`
	PaymentIntentID *string   `json:"payment_intent_id"`
	PaymentType     string    `json:"payment_type"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type projectView struct {
	ID            uint64        `json:"id"`
	UserID        uint64        `json:"user_id"`
	BusinessName  string        `json:"business_name"`
	Industry      *string       `json:"industry"`
	WebsiteType   string        `json:"website_type"`
	Features      []string      `json:"features"`
	NumberOfPages int           `json:"number_of_pages"`
	Deadline      string        `json:"deadline"`
	Budget        float64       `json:"budget"`
	EstimatedCost float64       `json:"estimated_cost"`
	Notes         *string       `json:"notes"`
	Status        string        `json:"status"`
	OwnerEmail    string        `json:"owner_email,omitempty"`
	Payments      []paymentView `json:"payments,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func paymentToView(p model.Payment) paymentView {
	return paymentView{
		ID:              p.ID,
		ProjectFormID:   p.ProjectFormID,
		Amount:          p.Amount,
		SessionID:       p.SessionID,
		PaymentIntentID: p.PaymentIntentID,
		PaymentType:     p.PaymentType,
		Status:          p.Status,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func projectToView(p model.ProjectForm, ownerEmail string, payments []model.Payment) projectView {
	v := projectView{
		ID:            p.ID,
		UserID:        p.UserID,
		BusinessName:  p.BusinessName,
		Industry:      p.Industry,
		WebsiteType:   string(p.WebsiteType),
		Features:      p.Features,
		NumberOfPages: p.NumberOfPages,
		Deadline:      p.Deadline.Format(validation.DeadlineLayout),
		Budget:        p.Budget,
		EstimatedCost: p.EstimatedCost,
		Notes:         p.Notes,
		Status:        p.Status,
		OwnerEmail:    ownerEmail,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for _, pay := range payments {
		v.Payments = append(v.Payments, paymentToView(pay))
	}
	return v
}
