package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rtowner/charguess/internal/api/handler"
	apimiddleware "github.com/rtowner/charguess/internal/api/middleware"
	"github.com/rtowner/charguess/internal/chat"
	"github.com/rtowner/charguess/internal/middleware"
	"github.com/rtowner/charguess/internal/services/catalog"
	"github.com/rtowner/charguess/internal/services/leaderboard"
	"github.com/rtowner/charguess/internal/services/ledger"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Dispatcher      *chat.Dispatcher
	Ledger          *ledger.Service
	Leaderboard     *leaderboard.Service
	Catalog         *catalog.Service
	LeaderboardSize int
	WebhookSecret   string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	eventHandler := handler.NewEventHandler(cfg.Dispatcher)
	playerHandler := handler.NewPlayerHandler(cfg.Ledger, cfg.Leaderboard, cfg.LeaderboardSize)
	catalogHandler := handler.NewCatalogHandler(cfg.Catalog)

	// Create middleware
	webhookAuth := apimiddleware.WebhookAuth(cfg.WebhookSecret)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Event ingestion (webhook secret required)
	events := api.PathPrefix("/events").Subrouter()
	events.Use(webhookAuth)
	events.HandleFunc("", eventHandler.Post).Methods(http.MethodPost)

	// Read-only player routes
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", playerHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/stats", playerHandler.Stats).Methods(http.MethodGet)

	// Character pool routes (mutations require the webhook secret)
	api.HandleFunc("/characters", catalogHandler.List).Methods(http.MethodGet)
	characters := api.PathPrefix("/characters").Subrouter()
	characters.Use(webhookAuth)
	characters.HandleFunc("", catalogHandler.Create).Methods(http.MethodPost)
	characters.HandleFunc("/{id}", catalogHandler.Delete).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
