package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/launchform/intake-api/internal/config"
	"github.com/launchform/intake-api/internal/handler"
	"github.com/launchform/intake-api/internal/middleware"
	"github.com/launchform/intake-api/internal/model"
	"github.com/launchform/intake-api/internal/repository"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth     *handler.AuthHandler
	Projects *handler.ProjectHandler
	Payments *handler.PaymentHandler
	Webhook  *handler.WebhookHandler
	Users    *repository.UserRepo
}

// Register wires all routes onto e.  Three surfaces exist:
//
//	public     – health check and the auth endpoints that mint tokens
//	protected  – /v1 behind JWTAuth, rate limiting and the response cache
//	webhooks   – provider callbacks, authenticated by payload signature
//	             instead of JWTs
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Token minting lives outside the JWT group: these endpoints are how
	// a client gets a token in the first place.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	// Provider callbacks carry no JWT; the handler verifies the payload
	// signature itself.
	e.POST("/webhooks/payment", h.Webhook.HandlePaymentEvent)

	// Everything else requires an authenticated caller.  Deployments that
	// terminate auth at a trusted proxy switch to identity headers; the
	// proxy-asserted account is upserted on its first request.
	v1 := e.Group("/v1")
	if cfg.TrustProxyAuth {
		v1.Use(middleware.TrustedIdentity(h.Users))
	} else {
		v1.Use(middleware.JWTAuth(cfg.JWTSecret))
	}
	v1.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	v1.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	v1.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	v1.GET("/me", h.Auth.Me)
	v1.POST("/auth/logout", h.Auth.Logout)

	v1.POST("/projects", h.Projects.Create)
	v1.GET("/projects", h.Projects.List)
	v1.GET("/projects/:id", h.Projects.Get)
	v1.PATCH("/projects/:id", h.Projects.UpdateStatus)
	v1.DELETE("/projects/:id", h.Projects.Delete)

	v1.POST("/payment-intents", h.Payments.CreateCheckout)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/projects", h.Projects.AdminList)
}
