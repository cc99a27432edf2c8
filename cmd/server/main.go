package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/launchform/intake-api/internal/config"
	"github.com/launchform/intake-api/internal/database"
	"github.com/launchform/intake-api/internal/handler"
	"github.com/launchform/intake-api/internal/payments"
	"github.com/launchform/intake-api/internal/queue"
	"github.com/launchform/intake-api/internal/reconcile"
	"github.com/launchform/intake-api/internal/repository"
	"github.com/launchform/intake-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("database migrate failed: %v", err)
	}

	// Redis is optional: a nil client disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	projects := repository.NewProjectRepo(db)
	pays := repository.NewPaymentRepo(db)

	provider := payments.NewStripeProvider(cfg.StripeSecretKey)
	reconciler := reconcile.NewReconciler(repository.NewReconcileStore(db))

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Projects: handler.NewProjectHandler(users, projects, pays),
		Payments: handler.NewPaymentHandler(cfg, users, projects, pays, provider),
		Webhook:  handler.NewWebhookHandler(cfg.StripeWebhookSecret, reconciler, pays),
		Users:    users,
	}

	e := echo.New()
	router.Register(e, cfg, h, rdb)

	// Consumer reconnects on its own; a dead broker only costs the
	// event log, never the API.
	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
