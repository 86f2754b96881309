package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"datasense-be/internal/bootstrap"
	"datasense-be/internal/config"
	"datasense-be/internal/pkg/logger"
	"datasense-be/internal/server"
	"datasense-be/internal/tracer"
	"datasense-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}
	defer database.Close(gormDB)

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(context.Background(), gormDB, cfg, sysLogger)
	if err != nil {
		log.Fatalf("Unable to bootstrap dependencies: %v", err)
	}
	defer container.Close()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	// 6. Wait for a signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			sysLogger.Error("Main", "Server stopped", map[string]interface{}{"error": err.Error()})
		}
	case sig := <-quit:
		sysLogger.Info("Main", "Shutting down", map[string]interface{}{"signal": sig.String()})
	}

	// 7. Graceful shutdown: stop HTTP first, then let premium runs finish
	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sysLogger.Warn("Main", "HTTP shutdown incomplete", map[string]interface{}{"error": err.Error()})
	}
	if err := container.Supervisor.Shutdown(ctx); err != nil {
		sysLogger.Warn("Main", "Premium tasks cancelled at shutdown", map[string]interface{}{
			"error":   err.Error(),
			"running": container.Supervisor.Running(),
		})
	}
}
