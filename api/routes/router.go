package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YouHyuksoo/HANES-sub001/api/controllers"
	"github.com/YouHyuksoo/HANES-sub001/api/middleware"
	"github.com/YouHyuksoo/HANES-sub001/internal/issuance"
	"github.com/YouHyuksoo/HANES-sub001/internal/items"
	internalorders "github.com/YouHyuksoo/HANES-sub001/internal/orders"
	"github.com/YouHyuksoo/HANES-sub001/internal/production"
	"github.com/YouHyuksoo/HANES-sub001/pkg/config"
	"github.com/YouHyuksoo/HANES-sub001/pkg/db"
	"github.com/YouHyuksoo/HANES-sub001/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	gatherer prometheus.Gatherer,
	ordersSvc internalorders.Service,
	issuanceSvc issuance.Service,
	lotsRepo issuance.LotRepository,
	itemsRepo items.Repository,
	productionRepo production.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", controllers.OrderCreate(ordersSvc, logg))
		r.Get("/", controllers.OrderList(ordersSvc, logg))
		r.Get("/{orderId}", controllers.OrderDetail(ordersSvc, logg))
		r.Patch("/{orderId}", controllers.OrderUpdate(ordersSvc, logg))
		r.Delete("/{orderId}", controllers.OrderDelete(ordersSvc, logg))
		r.Post("/{orderId}/start", controllers.OrderStart(ordersSvc, logg))
		r.Post("/{orderId}/pause", controllers.OrderPause(ordersSvc, logg))
		r.Post("/{orderId}/complete", controllers.OrderComplete(ordersSvc, logg))
		r.Post("/{orderId}/cancel", controllers.OrderCancel(ordersSvc, logg))
		r.Post("/{orderId}/status", controllers.OrderChangeStatus(ordersSvc, logg))
	})

	r.Route("/api/v1/issuances", func(r chi.Router) {
		r.Post("/", controllers.IssuanceCreate(issuanceSvc, logg))
		r.Post("/scan", controllers.IssuanceScan(issuanceSvc, logg))
		r.Get("/", controllers.IssuanceList(issuanceSvc, logg))
		r.Get("/{issuanceId}", controllers.IssuanceDetail(issuanceSvc, logg))
		r.Post("/{issuanceId}/cancel", controllers.IssuanceCancel(issuanceSvc, logg))
	})

	r.Route("/api/v1/lots", func(r chi.Router) {
		r.Get("/", controllers.LotList(lotsRepo, logg))
		r.Get("/{lotId}", controllers.LotDetail(lotsRepo, logg))
	})

	r.Route("/api/v1/items", func(r chi.Router) {
		r.Get("/", controllers.ItemList(itemsRepo, logg))
		r.Get("/{itemCode}", controllers.ItemDetail(itemsRepo, logg))
	})

	r.Route("/api/v1/production-results", func(r chi.Router) {
		r.Post("/", controllers.ProductionResultCreate(productionRepo, logg))
		r.Get("/", controllers.ProductionResultList(productionRepo, logg))
	})

	return r
}
