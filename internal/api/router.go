package api

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/veldkamp-software/passfoto/internal/api/docs"
	"github.com/veldkamp-software/passfoto/internal/api/handler"
	"github.com/veldkamp-software/passfoto/internal/api/middleware"
	"github.com/veldkamp-software/passfoto/internal/pipeline"
	"github.com/veldkamp-software/passfoto/internal/repository"
	"github.com/veldkamp-software/passfoto/internal/stats"
	"github.com/veldkamp-software/passfoto/internal/webhook"
	"github.com/veldkamp-software/passfoto/internal/ws"
)

type Dependencies struct {
	Pipeline  *pipeline.Service
	PhotoRepo repository.PhotoRepositoryInterface
	Store     handler.PhotoStore
	Pool      repository.PgxPool
	DB        *sql.DB
}

type Router struct {
	app           *fiber.App
	logger        *slog.Logger
	deps          *Dependencies
	wsHub         *ws.Hub
	webhookWorker *webhook.Worker
	cancelWorker  context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Passfoto API",
		BodyLimit:    12 * 1024 * 1024,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	var db *sql.DB
	if r.deps != nil {
		db = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(db)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	v1 := r.app.Group("/v1")

	// Only configure application routes if dependencies were provided
	if r.deps != nil {
		// WebSocket hub for live validation progress
		r.wsHub = ws.NewHub()
		go r.wsHub.Run()

		hubSink := ws.NewHubSink(r.wsHub)
		r.deps.Pipeline.AddSink(hubSink)

		// Webhook service, completion sink and retry worker
		webhookService := webhook.NewService(r.deps.Pool)
		r.deps.Pipeline.AddSink(webhook.NewSink(webhookService, r.logger))

		r.webhookWorker = webhook.NewWorker(r.deps.Pool, webhookService, r.logger)
		ctx, cancel := context.WithCancel(context.Background())
		r.cancelWorker = cancel
		go r.webhookWorker.Run(ctx)

		// Photo routes
		photoHandler := handler.NewPhotoHandler(r.deps.Pipeline, r.deps.PhotoRepo, r.deps.Store, hubSink, r.logger)
		v1.Post("/photos/validate", photoHandler.Validate)
		v1.Get("/photos", photoHandler.List)
		v1.Get("/photos/:id", photoHandler.Get)
		v1.Delete("/photos/:id", photoHandler.Delete)

		// Check set
		v1.Get("/checks", photoHandler.Checks)

		// Aggregate validation figures
		statsHandler := handler.NewStatsHandler(stats.NewRepository(r.deps.Pool), r.logger)
		v1.Get("/stats", statsHandler.Overview)
		v1.Get("/stats/daily", statsHandler.Daily)

		// Webhook management
		webhooksHandler := handler.NewWebhooksHandler(webhookService, r.logger)
		v1.Get("/webhooks", webhooksHandler.List)
		v1.Post("/webhooks", webhooksHandler.Create)
		v1.Delete("/webhooks/:id", webhooksHandler.Delete)

		// WebSocket endpoint
		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.wsHub))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.cancelWorker != nil {
		r.cancelWorker()
	}

	return r.app.Shutdown()
}
