package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"toko/internal/config"
	"toko/internal/handlers"
	"toko/internal/middleware"
	"toko/internal/models"
	"toko/internal/repositories"
	"toko/internal/services"
	"toko/internal/telemetry"
	"toko/pkg/logger"
	"toko/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.AppName, cfg.Env)

	// run returns instead of exiting so its deferred cleanups always execute.
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// A nil *rabbitmq.Client must not end up inside the interface.
	var publisher services.EventPublisher
	if cfg.RabbitMQEnabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: services.EventsExchange}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				log.WithError(err).Warn("failed to close RabbitMQ client")
			}
		}()
		if err := mqClient.ConsumeEvents(rabbitmq.LogEvents(log)); err != nil {
			log.WithError(err).Error("failed to start RabbitMQ consumer")
		}
		publisher = mqClient
	} else {
		log.Info("RabbitMQ disabled, events will not be published")
	}

	app, err := newApp(cfg, db, publisher, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	listenErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("starting server")
		listenErr <- app.Listen(cfg.Port)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("error during Fiber shutdown")
	}
	log.Info("server gracefully stopped")
	return nil
}

// openDatabase connects to the configured store.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}
	return db, nil
}

// gormConfig is shared with the tests so both translate driver errors
// (duplicate keys and the like) the same way.
func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Product{}, &models.Review{}, &models.Order{})
}

// newApp wires repositories, services and handlers into a Fiber app.
func newApp(cfg *config.Config, db *gorm.DB, publisher services.EventPublisher, log *logrus.Logger) (*fiber.App, error) {
	productRepo := repositories.NewGORMProductRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	productService := services.NewProductService(productRepo, log)
	reviewService := services.NewReviewService(reviewRepo, productRepo, publisher, log)
	orderService := services.NewOrderService(orderRepo, productRepo, publisher, log)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL, log)

	if cfg.HasAdmin() {
		if err := authService.EnsureAdmin(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return nil, err
		}
	}
	if cfg.Env == "development" {
		seedProducts(productService, log)
	}

	app := fiber.New(fiber.Config{AppName: cfg.AppName})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.MetricsEnabled {
		app.Use(telemetry.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status, code = "degraded", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"rabbitmq": publisher != nil,
		})
	})

	requireAuth := middleware.AuthRequired(authService, log)
	requireAdmin := middleware.AdminOnly()

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, log).RegisterRoutes(apiV1, requireAuth)
	handlers.NewProductHandler(productService, log).RegisterRoutes(apiV1, requireAuth, requireAdmin)
	handlers.NewReviewHandler(reviewService, log).RegisterRoutes(apiV1, requireAuth)
	handlers.NewOrderHandler(orderService, log).RegisterRoutes(apiV1, requireAuth, requireAdmin)

	return app, nil
}

// seedProducts populates an empty catalog with a few development products.
func seedProducts(service *services.ProductService, log logrus.FieldLogger) {
	existing, err := service.GetAllProducts()
	if err != nil || len(existing) > 0 {
		return
	}
	products := []map[string]any{
		{"name": "Laptop", "description": "High performance laptop", "price": 1200.00, "category": "computers", "stock": 10, "RAM": "32GB"},
		{"name": "Keyboard", "description": "Mechanical keyboard", "price": 75.00, "category": "accessories", "stock": 25, "Switches": "brown"},
		{"name": "Mouse", "description": "Ergonomic wireless mouse", "price": 25.00, "category": "accessories", "stock": 50, "Color": "black"},
	}
	for _, doc := range products {
		p, err := service.CreateProduct(doc)
		if err != nil {
			log.WithError(err).WithField("name", doc["name"]).Warn("failed to seed product")
			continue
		}
		log.WithFields(logrus.Fields{"name": p.Name, "product_id": p.ID}).Info("seeded product")
	}
}
