package server

import (
	"context"
	"os"
	"path/filepath"

	"datasense-be/internal/bootstrap"
	"datasense-be/internal/config"
	"datasense-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    10 * 1024 * 1024, // 10MB
		ErrorHandler: serverutils.ErrorHandler,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	registerStatic(app, cfg.App.StaticDir)
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info("Server", "Server is running", map[string]interface{}{
		"address": "http://localhost:" + s.cfg.App.Port,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// registerStatic serves the browser client when the directory exists.
func registerStatic(app *fiber.App, dir string) {
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}

	app.Static("/static", dir)

	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err == nil {
		app.Get("/", func(c *fiber.Ctx) error {
			return c.SendFile(index)
		})
	}
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.ChatbotController.RegisterRoutes(app)
	c.ChannelHandler.RegisterRoutes(app)
}
