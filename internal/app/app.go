// Package app wires configuration, storage, messaging and HTTP routes into a
// runnable Fiber application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"productapi/internal/config"
	"productapi/internal/database"
	"productapi/internal/docs"
	"productapi/internal/handlers"
	"productapi/internal/middleware"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// App bundles the HTTP server with the resources it owns.
type App struct {
	Fiber       *fiber.App
	DB          *gorm.DB
	MQ          *rabbitmq.Client
	Products    repositories.ProductRepository
	AuthService *services.AuthService
	cfg         config.Config
}

// New opens the database, connects to RabbitMQ when configured and registers
// every route. The caller owns the returned App and must Close it.
func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	var userRepo repositories.UserRepository
	if cfg.UsesDatabase() {
		db, err := database.Open(cfg)
		if err != nil {
			return nil, err
		}
		a.DB = db
		if err := database.Migrate(db); err != nil {
			a.Close()
			return nil, err
		}
		a.Products = repositories.NewGORMProductRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
	} else {
		log.Println("Using in-memory product storage")
		a.Products = repositories.NewMemoryProductRepository()
	}

	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.MQ = mq
		publisher = mq
	} else {
		log.Println("RABBITMQ_URL not set, product events are disabled")
	}

	if cfg.SeedProducts {
		if _, err := database.SeedProducts(context.Background(), a.Products); err != nil {
			a.Close()
			return nil, err
		}
	}

	productService := services.NewProductService(a.Products, publisher)
	if userRepo != nil {
		a.AuthService = services.NewAuthService(userRepo, cfg.JWTSecret)
	} else if cfg.AuthEnabled {
		a.Close()
		return nil, fmt.Errorf("auth needs a database-backed driver, got %q", cfg.DBDriver)
	}

	a.Fiber = fiber.New(fiber.Config{
		AppName:      "productapi",
		ErrorHandler: handlers.ErrorHandler,
	})
	a.Fiber.Use(recover.New())
	a.Fiber.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	a.Fiber.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	a.Fiber.Get("/health", a.handleHealth)
	a.Fiber.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(docs.OpenAPI)
	})

	api := a.Fiber.Group("/api")

	var writeGuard []fiber.Handler
	if cfg.AuthEnabled {
		handlers.NewAuthHandler(a.AuthService).RegisterRoutes(api)
		writeGuard = append(writeGuard, middleware.AuthRequired(a.AuthService))
	}
	handlers.NewProductHandler(productService).RegisterRoutes(api, writeGuard...)

	return a, nil
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	status, code, dbState := "healthy", fiber.StatusOK, "memory"
	if a.DB != nil {
		dbState = "up"
		if err := database.Ping(ctx, a.DB); err != nil {
			log.Printf("Health check: database ping failed: %v", err)
			status, code, dbState = "unhealthy", fiber.StatusServiceUnavailable, "down"
		}
	}

	mqState := "disabled"
	if a.MQ != nil {
		mqState = "disconnected"
		if a.MQ.Connected() {
			mqState = "connected"
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"database": dbState,
		"rabbitmq": mqState,
		"time":     time.Now().Format(time.RFC3339),
	})
}

// Listen serves HTTP on the configured port until Shutdown is called.
func (a *App) Listen() error {
	return a.Fiber.Listen(a.cfg.AppPort)
}

// Shutdown stops accepting requests and waits up to the configured timeout
// for in-flight ones.
func (a *App) Shutdown() error {
	if a.Fiber == nil {
		return nil
	}
	return a.Fiber.ShutdownWithTimeout(a.cfg.ShutdownTimeout)
}

// Close releases the broker connection and the database pool.
func (a *App) Close() error {
	var errs []error
	if a.MQ != nil {
		if err := a.MQ.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq: %w", err))
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
