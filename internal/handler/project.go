package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/launchform/intake-api/internal/model"
	"github.com/launchform/intake-api/internal/pricing"
	"github.com/launchform/intake-api/internal/queue"
	"github.com/launchform/intake-api/internal/repository"
	queue_publisher "github.com/launchform/intake-api/internal/service"
	"github.com/launchform/intake-api/internal/validation"
)

// ProjectHandler serves the intake CRUD endpoints.
type ProjectHandler struct {
	Users    *repository.UserRepo
	Projects *repository.ProjectRepo
	Payments *repository.PaymentRepo
}

func NewProjectHandler(u *repository.UserRepo, p *repository.ProjectRepo, pay *repository.PaymentRepo) *ProjectHandler {
	if u == nil || p == nil || pay == nil {
		panic("nil repository passed to NewProjectHandler")
	}
	return &ProjectHandler{Users: u, Projects: p, Payments: pay}
}

// Create accepts a full intake, derives the estimated cost server-side
// and stores the form as SUBMITTED.  Every invalid field is reported in
// one pass under "errors".
func (h *ProjectHandler) Create(c echo.Context) error {
	var req validation.IntakeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fe := validation.Check(req); fe != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fe})
	}
	deadline, err := validation.ParseDeadline(req.Deadline)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": validation.FieldErrors{
			"deadline": "must be a date (YYYY-MM-DD) in the future",
		}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	p := model.ProjectForm{
		UserID:        uid,
		BusinessName:  req.BusinessName,
		WebsiteType:   model.WebsiteType(req.WebsiteType),
		Features:      req.Features,
		NumberOfPages: req.NumberOfPages,
		Deadline:      deadline,
		Budget:        req.Budget,
		EstimatedCost: float64(pricing.Estimate(req.NumberOfPages, req.Features, model.WebsiteType(req.WebsiteType))),
		Status:        model.StatusSubmitted,
	}
	if req.Industry != "" {
		p.Industry = &req.Industry
	}
	if err := h.Projects.Create(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create project failed"})
	}

	// Best effort: a broker outage must not fail the intake.
	go func(p model.ProjectForm) {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		err := queue_publisher.PublishProjectSubmitted(pubCtx, queue.ProjectSubmittedEvent{
			ProjectID:     p.ID,
			UserID:        p.UserID,
			BusinessName:  p.BusinessName,
			WebsiteType:   string(p.WebsiteType),
			Features:      p.Features,
			NumberOfPages: p.NumberOfPages,
			Budget:        p.Budget,
			EstimatedCost: p.EstimatedCost,
			SubmittedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			log.Printf("publish project submitted %d: %v", p.ID, err)
		}
	}(p)

	return c.JSON(http.StatusCreated, echo.Map{"project": projectToView(p, "", nil)})
}

// List returns the caller's projects, newest first, payments included.
func (h *ProjectHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Projects.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list projects failed"})
	}
	views := make([]projectView, 0, len(items))
	for _, it := range items {
		views = append(views, projectToView(it.ProjectForm, "", it.Payments))
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": views})
}

// Get returns one project.  Owners see their own; admins see any.
// Projects owned by someone else answer 404 for regular users so ids
// do not leak.
func (h *ProjectHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, okUser := currentUser(ctx, c, h.Users)
	if !okUser {
		return nil
	}

	if u.IsAdmin() {
		p, err := h.Projects.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load project failed"})
		}
		payments, err := h.Payments.ListByProject(ctx, p.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load payments failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"project": projectToView(p, "", payments)})
	}

	pw, err := h.Projects.GetForUser(ctx, id, u.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load project failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"project": projectToView(pw.ProjectForm, "", pw.Payments)})
}

// UpdateStatus writes a new lifecycle status (and optional notes) on a
// project.  Any status can follow any other; the owner or an admin may
// write it.
func (h *ProjectHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}
	var req validation.StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fe := validation.Check(req); fe != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fe})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, okUser := currentUser(ctx, c, h.Users)
	if !okUser {
		return nil
	}
	if _, err := h.Projects.LoadForActor(ctx, id, u); err != nil {
		return projectLoadError(c, err)
	}
	if err := h.Projects.UpdateStatus(ctx, id, req.Status, req.Notes); err != nil {
		return projectLoadError(c, err)
	}
	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load project failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"project": projectToView(p, "", nil)})
}

// Delete removes a project together with its payment rows.
func (h *ProjectHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, okUser := currentUser(ctx, c, h.Users)
	if !okUser {
		return nil
	}
	if _, err := h.Projects.LoadForActor(ctx, id, u); err != nil {
		return projectLoadError(c, err)
	}
	if err := h.Projects.Delete(ctx, id); err != nil {
		return projectLoadError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminList returns every project with owner emails for the dashboard.
func (h *ProjectHandler) AdminList(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Projects.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list projects failed"})
	}
	views := make([]projectView, 0, len(items))
	for _, it := range items {
		views = append(views, projectToView(it.ProjectForm, it.OwnerEmail, it.Payments))
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": views})
}

// projectLoadError maps repository sentinels onto HTTP responses.
func projectLoadError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "project operation failed"})
	}
}
