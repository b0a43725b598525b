package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quincaillerie/api"
	"quincaillerie/internal/catalog"
	"quincaillerie/internal/config"
	"quincaillerie/internal/gateway"
	"quincaillerie/internal/logging"
	"quincaillerie/internal/sales"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("error loading config: %v", err))
	}

	logger, err := logging.New("sales", cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logging.Sync(logger)

	// the backend reads amounts as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	httpClient := gateway.NewHTTPClient(gateway.Config{
		BaseURL: cfg.BackendURL,
		Token:   cfg.BackendToken,
		Timeout: cfg.BackendTimeout,
	})
	defer httpClient.Close()

	var storage sales.Storage
	switch cfg.Storage {
	case config.StorageRemote:
		storage = gateway.NewClient(httpClient, logger)
	default:
		storage = sales.NewLocalStorage()
	}

	salesService := sales.NewService(storage, logger)
	products := catalog.NewClient(httpClient, logger)

	if cfg.AppEnv != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.InitRoutes(r, salesService, products, logger)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", cfg.Storage),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("error trying to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
