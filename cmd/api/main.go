package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/YouHyuksoo/HANES-sub001/api/routes"
	"github.com/YouHyuksoo/HANES-sub001/internal/bom"
	"github.com/YouHyuksoo/HANES-sub001/internal/issuance"
	"github.com/YouHyuksoo/HANES-sub001/internal/items"
	"github.com/YouHyuksoo/HANES-sub001/internal/orders"
	"github.com/YouHyuksoo/HANES-sub001/internal/production"
	"github.com/YouHyuksoo/HANES-sub001/pkg/config"
	"github.com/YouHyuksoo/HANES-sub001/pkg/db"
	"github.com/YouHyuksoo/HANES-sub001/pkg/events"
	"github.com/YouHyuksoo/HANES-sub001/pkg/logger"
	"github.com/YouHyuksoo/HANES-sub001/pkg/metrics"
	"github.com/YouHyuksoo/HANES-sub001/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	eventService := events.NewService(events.NewRepository(dbClient.DB()), logg)

	ordersRepo := orders.NewRepository(dbClient.DB())
	itemsRepo := items.NewRepository(dbClient.DB())
	productionRepo := production.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(
		ordersRepo,
		itemsRepo,
		bom.NewResolver(dbClient.DB()),
		orders.NewAggregator(productionRepo),
		dbClient,
		eventService,
		metrics.NewOrderMetrics(registry),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	lotsRepo := issuance.NewLotRepository(dbClient.DB())
	issuanceService, err := issuance.NewService(
		issuance.NewRepository(dbClient.DB()),
		lotsRepo,
		issuance.NewStockRepository(dbClient.DB()),
		dbClient,
		eventService,
		metrics.NewIssuanceMetrics(registry),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create issuance service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			registry,
			ordersService,
			issuanceService,
			lotsRepo,
			itemsRepo,
			productionRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
