package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/app"
	"github.com/iyhunko/product-catalog/internal/config"
	httpAPI "github.com/iyhunko/product-catalog/internal/http"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/logger"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/service"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("application run failed", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("application stopped gracefully")
}

// run connects the store, then serves the product API and metrics until ctx is cancelled.
func run(ctx context.Context) error {
	conf, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.InitJSONLogger(conf.DebugMode)
	if conf.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// No listener is opened until the store has answered a ping.
	store, err := app.OpenStore(ctx, conf)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			slog.Error("Failed to close store", slog.Any("err", err))
		} else {
			slog.Info("store closed")
		}
	}()

	publisher, err := app.NewPublisher(ctx, conf)
	if err != nil {
		return fmt.Errorf("failed to configure notifications: %w", err)
	}

	productService := service.NewProductService(store, publisher)
	router := httpAPI.InitRouter(conf, gin.New(), controller.New(store), controller.NewProductController(productService))

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsServer := metrics.NewServer(conf)

	g, gCtx := errgroup.WithContext(ctx)
	for name, srv := range map[string]*http.Server{"HTTP": httpServer, "metrics": metricsServer} {
		name, srv := name, srv
		g.Go(func() error {
			slog.Info("server listening", slog.String("server", name), slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server failed: %w", name, err)
			}
			return nil
		})
		// gracefully shutdown on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			slog.Info("Shutting down server...", slog.String("server", name))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}
