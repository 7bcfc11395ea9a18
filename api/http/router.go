package http

import (
	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"

	"github.com/artem13815/finance/api/http/handlers"
	"github.com/artem13815/finance/api/http/middleware"
)

// Routes groups the handlers and middleware mounted by Register.
type Routes struct {
	Auth         *handlers.AuthHandler
	Users        *handlers.UserHandler
	Transactions *handlers.TransactionHandler
	Health       *handlers.HealthHandler
	// AuthMW guards every route below /users and /transactions.
	AuthMW fiber.Handler
	// AuthLimiter throttles /auth; nil disables throttling.
	AuthLimiter *middleware.RateLimiter
	// CORS runs before every route when set.
	CORS fiber.Handler
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, r Routes) {
	if r.CORS != nil {
		app.Use(r.CORS)
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", r.Health.Health)
	v1.Get("/ready", r.Health.Ready)

	a := v1.Group("/auth")
	if r.AuthLimiter != nil {
		a.Use(r.AuthLimiter.Handler())
	}
	a.Post("/register", r.Auth.Register)
	a.Post("/login", r.Auth.Login)
	a.Post("/refresh", r.Auth.Refresh)
	a.Post("/logout", r.Auth.Logout)

	u := v1.Group("/users", r.AuthMW)
	u.Get("/me", r.Users.Me)
	u.Put("/me", r.Users.Update)
	u.Delete("/me", r.Users.Delete)

	tx := v1.Group("/transactions", r.AuthMW)
	tx.Post("/", r.Transactions.Create)
	tx.Get("/", r.Transactions.List)
	// Fixed paths first so they are not taken for an id.
	tx.Get("/summary", r.Transactions.Summary)
	tx.Get("/categories", r.Transactions.Categories)
	tx.Get("/:id", r.Transactions.Get)
	tx.Put("/:id", r.Transactions.Update)
	tx.Delete("/:id", r.Transactions.Delete)
}
