package handler

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/launchform/intake-api/internal/config"
	"github.com/launchform/intake-api/internal/model"
	"github.com/launchform/intake-api/internal/payments"
	"github.com/launchform/intake-api/internal/repository"
)

// PaymentHandler creates hosted checkout sessions for projects.
type PaymentHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Projects *repository.ProjectRepo
	Payments *repository.PaymentRepo
	Provider payments.Provider
}

func NewPaymentHandler(cfg config.Config, u *repository.UserRepo, p *repository.ProjectRepo, pay *repository.PaymentRepo, prov payments.Provider) *PaymentHandler {
	if u == nil || p == nil || pay == nil || prov == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Cfg: cfg, Users: u, Projects: p, Payments: pay, Provider: prov}
}

type checkoutReq struct {
	ProjectID   uint64 `json:"project_id"`
	Amount      int64  `json:"amount"`       // cents; 0 falls back to the estimate
	PaymentType string `json:"payment_type"` // FULL (default) or DEPOSIT
}

// CreateCheckout opens a checkout session and records a PENDING payment
// row keyed by the session id.  The charge defaults to the project's
// estimated cost (half of it for a DEPOSIT) when the client sends no
// amount.
func (h *PaymentHandler) CreateCheckout(c echo.Context) error {
	var req checkoutReq
	if err := c.Bind(&req); err != nil || req.ProjectID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "project_id required"})
	}
	if req.Amount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}
	switch req.PaymentType {
	case "":
		req.PaymentType = model.PaymentTypeFull
	case model.PaymentTypeFull, model.PaymentTypeDeposit:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_type must be FULL or DEPOSIT"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, ok := currentUser(ctx, c, h.Users)
	if !ok {
		return nil
	}
	p, err := h.Projects.LoadForActor(ctx, req.ProjectID, u)
	if err != nil {
		return projectLoadError(c, err)
	}
	if p.EstimatedCost <= 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "project has no estimated cost"})
	}

	amount := p.EstimatedCost
	if req.PaymentType == model.PaymentTypeDeposit {
		amount = math.Round(amount*50) / 100 // half, kept to cents
	}
	if req.Amount > 0 {
		amount = float64(req.Amount) / 100
	}

	sess, err := h.Provider.CreateCheckoutSession(c.Request().Context(), payments.CheckoutParams{
		ProjectID:   p.ID,
		UserID:      u.ID,
		Description: fmt.Sprintf("Website project for %s", p.BusinessName),
		AmountCents: int64(math.Round(amount * 100)),
		PaymentType: req.PaymentType,
		SuccessURL:  h.Cfg.CheckoutSuccessURL,
		CancelURL:   h.Cfg.CheckoutCancelURL,
	})
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "create checkout session failed"})
	}

	pay := model.Payment{
		ProjectFormID: p.ID,
		Amount:        amount,
		SessionID:     &sess.ID,
		PaymentType:   req.PaymentType,
		Status:        model.PaymentPending,
	}
	if err := h.Payments.Create(ctx, &pay); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save payment failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"payment":      paymentToView(pay),
		"checkout_url": sess.URL,
	})
}
