package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/showkit/catalog-api/internal/config"
	"github.com/showkit/catalog-api/internal/metrics"
	"github.com/showkit/catalog-api/internal/middleware"
	"github.com/showkit/catalog-api/internal/store"
	apperrors "github.com/showkit/catalog-api/pkg/errors"
)

// Stores bundles the shared state handed to handlers. Stores are owned
// here and passed by reference, never reached through globals.
type Stores struct {
	Items       *store.ItemStore
	PublicItems *store.ItemStore
	Users       *store.UserStore
	Tokens      store.TokenRegistry
}

// Setup configures all API routes
func Setup(app *fiber.App, cfg *config.Config, logger *logrus.Logger, stores *Stores) {
	authMiddleware := middleware.NewAuthMiddleware(stores.Tokens, stores.Users, logger)

	authHandler := NewAuthHandler(stores.Users, stores.Tokens, logger)
	itemsHandler := NewItemsHandler(stores.Items, logger)
	publicHandler := NewPublicItemsHandler(stores.PublicItems, logger)

	// Landing page and status endpoints (no auth required)
	app.Get("/", landingPage)
	app.Get("/api", apiStatus)

	// Health check endpoints (no auth required)
	app.Get("/healthz", healthCheck)
	app.Get("/version", versionHandler)

	// Metrics endpoint (no auth required)
	app.Get(cfg.Observability.MetricsPath, metrics.PrometheusHandler())

	app.Use(metrics.HTTPMetricsMiddleware())

	// Auth routes (public endpoints - no auth required)
	app.Post("/token", authHandler.IssueToken)
	app.Post("/token/revoke", authHandler.RevokeToken)
	app.Post("/users", authHandler.Register)

	// Public item routes (read-only, no auth required)
	publicRoutes := app.Group("/public/items")
	publicRoutes.Get("/", publicHandler.List)
	publicRoutes.Get("/:id", publicHandler.Get)

	// Protected item routes (require authentication)
	itemRoutes := app.Group("/items")
	itemRoutes.Use(authMiddleware.Authenticate())
	itemRoutes.Get("/", itemsHandler.List)
	itemRoutes.Post("/", itemsHandler.Create)
	itemRoutes.Get("/:id", itemsHandler.Get)
	itemRoutes.Put("/:id", itemsHandler.Replace)
	itemRoutes.Patch("/:id", itemsHandler.Patch)
	itemRoutes.Delete("/:id", itemsHandler.Delete)

	// 404 handler
	app.Use(notFoundHandler)
}

// respondError writes a standardized error response for an AppError
func respondError(c *fiber.Ctx, appErr *apperrors.AppError) error {
	return c.Status(appErr.HTTPStatus()).JSON(appErr.ToErrorResponse(c.Get("X-Request-ID")))
}

// healthCheck returns the health status of the service
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "catalog-api",
	})
}

// versionHandler returns version information
func versionHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "catalog-api",
		"version": getVersion(),
	})
}

// notFoundHandler handles 404 errors
func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": fiber.Map{
			"code":     apperrors.CodeNotFound,
			"message":  "The requested resource was not found",
			"path":     c.Path(),
			"trace_id": c.Get("X-Request-ID"),
		},
	})
}

// getVersion returns the build version
func getVersion() string {
	// This would typically be set during build
	return "dev"
}
