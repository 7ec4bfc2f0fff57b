package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/dutyledger/internal/api/handler"
	"github.com/mcoot/dutyledger/internal/api/middleware"
	"github.com/mcoot/dutyledger/internal/api/response"
	"github.com/mcoot/dutyledger/internal/dependencies/clock"
	"github.com/mcoot/dutyledger/internal/metrics"
	sharedmw "github.com/mcoot/dutyledger/internal/middleware"
	"github.com/mcoot/dutyledger/internal/services/ledger"
	"github.com/mcoot/dutyledger/internal/services/processlog"
	"github.com/mcoot/dutyledger/internal/services/query"
	"github.com/mcoot/dutyledger/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	Clock             clock.Clock
	RegistryService   *registry.Service
	LedgerService     *ledger.Service
	QueryService      *query.Service
	ProcessLogService *processlog.Service
	Metrics           *metrics.Metrics
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	// Match on the escaped path so a {name} may contain an encoded '/'.
	// Handlers unescape the variable.
	r := mux.NewRouter().UseEncodedPath()

	// Create handlers
	personHandler := handler.NewPersonHandler(cfg.RegistryService, cfg.QueryService, cfg.ProcessLogService)
	dutyHandler := handler.NewDutyHandler(cfg.LedgerService, cfg.QueryService, cfg.ProcessLogService, cfg.Clock)
	processLogHandler := handler.NewProcessLogHandler(cfg.ProcessLogService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger, cfg.ProcessLogService))
	api.Use(sharedmw.Logging(cfg.Logger))

	// Person routes
	api.HandleFunc("/persons", personHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/persons", personHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/persons/{name}", personHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/persons/{name}/duties", dutyHandler.History).Methods(http.MethodGet)
	api.HandleFunc("/persons/{name}/retire", dutyHandler.Retire).Methods(http.MethodPost)

	// Duty routes
	api.HandleFunc("/duties", dutyHandler.Assign).Methods(http.MethodPost)

	// Process log
	api.HandleFunc("/process-logs", processLogHandler.List).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Prometheus scrape endpoint, outside the API prefix
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
