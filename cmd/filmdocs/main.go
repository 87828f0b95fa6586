package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/filmdocs/internal/middleware"
	"github.com/amaumene/filmdocs/pkg/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	InitializeLogger()
	InitializeConfig()
	InitializeTelemetry()
	defer telemetry.Flush()

	InitializeDatabase()
	InitializeServices()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(Logger),
		middleware.Metrics(serviceContainer.Metrics),
		middleware.CORS(),
		middleware.Gzip("/film/document", "/metrics"),
	)
	handler.RegisterRoutes(r)

	serviceContainer.Cleanup.Start(ctx)

	srv := &http.Server{
		Addr:              ":" + Config.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		Logger.Infof("[App] starting HTTP server on port %s", Config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Fatalf("[App] HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	Logger.Infof("[App] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Logger.Errorf("[App] graceful shutdown failed: %v", err)
	}

	serviceContainer.Cleanup.Stop()
	serviceContainer.Pool.Close()
	if DB != nil {
		if err := DB.Close(); err != nil {
			Logger.Errorf("[App] failed to close database: %v", err)
		}
	}
	Logger.Infof("[App] stopped")
}
