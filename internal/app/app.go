package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/logging"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/seed"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"gorm.io/gorm"
)

// bodySlack leaves room for the text fields next to a maximum size image.
const bodySlack = 1 << 20

// App is the assembled catalog service.
type App struct {
	Fiber *fiber.App

	cfg    config.Config
	log    *zerolog.Logger
	db     *gorm.DB
	events *rabbitmq.Client
}

// New wires the store, services and HTTP routes described by cfg.
func New(cfg config.Config, log *zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", cfg.UploadDir, err)
	}

	productRepo, err := a.openStore()
	if err != nil {
		return nil, err
	}
	if err := seed.Load(productRepo); err != nil {
		a.close()
		return nil, err
	}

	// A nil *rabbitmq.Client must not end up inside a non-nil interface.
	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.EventsQueue}, logging.Named(log, "events"))
		if err != nil {
			a.close()
			return nil, err
		}
		a.events = client
		publisher = client

		if cfg.ConsumeEvents {
			if err := client.ConsumeEvents(a.logEvent); err != nil {
				a.close()
				return nil, err
			}
		}
	}

	productService := services.NewProductService(productRepo, publisher, logging.Named(log, "catalog"))
	productHandler := handlers.NewProductHandler(productService, logging.Named(log, "http"))

	uploadCfg := middleware.DefaultUploadConfig(cfg.UploadDir)
	uploadCfg.MaxSize = cfg.MaxUploadSize

	a.Fiber = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// Parsed form values are stored in the catalog, so they must outlive the request buffer.
		Immutable:             true,
		BodyLimit:             int(cfg.MaxUploadSize) + bodySlack,
		ErrorHandler:          errorHandler(logging.Named(log, "http")),
	})

	a.Fiber.Use(recover.New())
	a.Fiber.Use(logger.New(logger.Config{
		Format: "${status} - ${latency} ${method} ${path}",
		Output: logging.Named(log, "access"),
	}))
	a.Fiber.Use(cors.New())

	a.Fiber.Static("/uploads", cfg.UploadDir)
	a.Fiber.Get("/health", a.handleHealth)

	api := a.Fiber.Group("/api")
	productHandler.RegisterRoutes(api, middleware.UploadGate(uploadCfg, logging.Named(log, "upload")))

	return a, nil
}

func (a *App) openStore() (repositories.ProductRepository, error) {
	switch a.cfg.StoreDriver {
	case config.StoreSQLite:
		db, err := repositories.OpenSQLite(a.cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		return repositories.NewGORMProductRepository(db), nil
	default:
		return repositories.NewMemoryProductRepository(), nil
	}
}

// Listen serves HTTP on the configured port until Shutdown is called.
func (a *App) Listen() error {
	a.log.Info().Str("addr", a.cfg.Address()).Str("store", a.cfg.StoreDriver).Msg("starting catalog server")
	return a.Fiber.Listen(a.cfg.Address())
}

// Shutdown stops the HTTP server and releases the store and event client.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
	}
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) close() error {
	var errs []error
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			errs = append(errs, err)
		}
		a.events = nil
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close sqlite database: %w", err))
			}
		}
		a.db = nil
	}
	return errors.Join(errs...)
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	events := "disabled"
	if a.events != nil {
		events = "connected"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
		"store":  a.cfg.StoreDriver,
		"events": events,
	})
}

func (a *App) logEvent(msg amqp.Delivery) error {
	var event models.ProductEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		// Redelivering a payload that cannot be decoded would loop forever.
		a.log.Warn().Err(err).Uint64("tag", msg.DeliveryTag).Msg("dropping malformed product event")
		return nil
	}
	a.log.Info().Str("event", event.Type).Str("product_id", event.ProductID).Msg("product event received")
	return nil
}

// errorHandler renders errors that escape handlers and middleware.
func errorHandler(log *zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}

		return c.Status(code).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}
}
