package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"github.com/showkit/catalog-api/internal/config"
	"github.com/showkit/catalog-api/internal/logging"
	"github.com/showkit/catalog-api/internal/metrics"
	"github.com/showkit/catalog-api/internal/models"
	"github.com/showkit/catalog-api/internal/routes"
	"github.com/showkit/catalog-api/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logging.New(cfg)

	// Initialize metrics
	if err := metrics.Init(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize metrics")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Catalog API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"status": code,
			}).Error("Request error")

			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":     "INTERNAL_ERROR",
					"message":  "Internal server error",
					"trace_id": c.Get("X-Request-ID"),
				},
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Requested-With",
	}))

	// Build stores and seed demo data
	stores, memoryRegistry, err := buildStores(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize stores")
	}

	// Optional background sweep of expired tokens. Lazy eviction on
	// lookup is the functional contract; the sweeper only reclaims
	// entries that are never looked up again.
	if memoryRegistry != nil && cfg.Auth.SweepEnabled {
		memoryRegistry.StartSweeper(cfg.Auth.SweepInterval, logger)
		defer memoryRegistry.StopSweeper()
	}

	// Setup routes
	routes.Setup(app, cfg, logger, stores)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Gracefully shutting down...")
		if err := app.Shutdown(); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logger.WithField("port", cfg.Server.Port).Info("Starting Catalog API server")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

// buildStores constructs the item, user, and token stores and seeds the
// demo data. The memory registry is returned separately so the caller
// can start its sweeper; it is nil when Redis is enabled.
func buildStores(cfg *config.Config, logger *logrus.Logger) (*routes.Stores, *store.MemoryTokenRegistry, error) {
	items := store.NewItemStore()
	publicItems := store.NewItemStore()
	users := store.NewUserStore()

	seedItems(items, publicItems, logger)

	if _, err := users.Create(cfg.Seed.Username, cfg.Seed.Email, cfg.Seed.Password); err != nil {
		return nil, nil, err
	}
	logger.WithField("username", cfg.Seed.Username).Info("Seeded demo user")

	var registry store.TokenRegistry
	var memoryRegistry *store.MemoryTokenRegistry

	if cfg.Redis.Enabled {
		redisClient, err := store.NewRedisClient(&cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		registry = store.NewRedisTokenRegistry(redisClient, cfg.Auth.TokenTTL)
		logger.Info("Using Redis-backed token registry")
	} else {
		memoryRegistry = store.NewMemoryTokenRegistry(cfg.Auth.TokenTTL)
		registry = memoryRegistry
		logger.Info("Using in-memory token registry")
	}

	return &routes.Stores{
		Items:       items,
		PublicItems: publicItems,
		Users:       users,
		Tokens:      registry,
	}, memoryRegistry, nil
}

// seedItems populates both collections with the demo catalog
func seedItems(items, publicItems *store.ItemStore, logger *logrus.Logger) {
	for _, payload := range []models.ItemPayload{
		{Name: "Laptop", Description: "High-performance laptop with 16GB RAM", Price: 999.99, Tags: []string{"electronics", "computers"}},
		{Name: "Smartphone", Description: "Latest model with 5G support", Price: 699.99, Tags: []string{"electronics", "mobile"}, IsOffer: true},
		{Name: "Coffee Maker", Description: "Automatic coffee maker with timer", Price: 79.99, Tags: []string{"appliances", "kitchen"}},
	} {
		item := items.Create(payload)
		logger.WithFields(logrus.Fields{"item_id": item.ID, "name": item.Name}).Debug("Seeded item")
	}

	for _, payload := range []models.ItemPayload{
		{Name: "Public Demo Item", Description: "This item is publicly viewable", Price: 19.99, Tags: []string{"public", "demo"}, IsOffer: true},
		{Name: "Free Sample", Description: "Another publicly available item", Price: 0.01, Tags: []string{"public", "free"}},
	} {
		item := publicItems.Create(payload)
		logger.WithFields(logrus.Fields{"item_id": item.ID, "name": item.Name}).Debug("Seeded public item")
	}
}
