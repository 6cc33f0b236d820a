package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"amazon-tracker/config"
	"amazon-tracker/storage"
	"amazon-tracker/utils"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	cfg *config.Config
}

// New creates a new server with middleware and routes configured.
func New(cfg *config.Config, store storage.ProductReader, log *utils.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName: "amazon-tracker",
		// Keywords with spaces arrive percent-encoded in the path.
		UnescapePath: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Per-IP fixed-window rate limiting. Probes and metrics are exempt so
	// schedulers and scrapers cannot starve them.
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return jsonError(c, fiber.StatusTooManyRequests, "rate limit exceeded, try again later")
		},
		Next: func(c fiber.Ctx) bool {
			switch c.Path() {
			case "/metrics", "/healthz", "/readyz":
				return true
			}
			return false
		},
	}))

	products := NewProductHandler(store, log)
	probes := NewProbeHandler(store)

	app.Get("/", products.Home)
	app.Get("/healthz", probes.Liveness)
	app.Get("/readyz", probes.Readiness)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/products", products.Keywords)
	app.Get("/products/:keyword", products.Products)
	app.Get("/products/:keyword/stats", products.Stats)

	return &Server{App: app, cfg: cfg}
}

// Start serves on the configured address.
func (s *Server) Start() error {
	return s.App.Listen(s.cfg.ServerAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
