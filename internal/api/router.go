package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/shootout/internal/api/handler"
	"github.com/mcoot/shootout/internal/api/middleware"
	"github.com/mcoot/shootout/internal/api/response"
	httpmiddleware "github.com/mcoot/shootout/internal/middleware"
	"github.com/mcoot/shootout/internal/services/combat"
	"github.com/mcoot/shootout/internal/services/ledger"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger *slog.Logger
	Ledger *ledger.Ledger
	Engine *combat.Engine
	// APIToken is the bearer token the chat adapter must present (optional)
	APIToken string
	// Check pings backing services for the health endpoint (optional)
	Check func(ctx context.Context) error
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.Ledger)
	combatHandler := handler.NewCombatHandler(cfg.Engine)

	// Create middleware
	tokenMiddleware := middleware.Token(cfg.APIToken)
	loggingMiddleware := httpmiddleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler(cfg.Check)).Methods(http.MethodGet)

	// Player routes
	players := api.PathPrefix("/players").Subrouter()
	players.Use(tokenMiddleware)
	players.HandleFunc("/{id}", playerHandler.Register).Methods(http.MethodPost)
	players.HandleFunc("/{id}", playerHandler.Get).Methods(http.MethodGet)
	players.HandleFunc("/{id}/adjust", playerHandler.Adjust).Methods(http.MethodPost)
	players.HandleFunc("/{id}/vest", playerHandler.SetVest).Methods(http.MethodPost)

	// Combat routes
	combatRoutes := api.PathPrefix("/combat").Subrouter()
	combatRoutes.Use(tokenMiddleware)
	combatRoutes.HandleFunc("/shoot", combatHandler.Shoot).Methods(http.MethodPost)
	combatRoutes.HandleFunc("/revive", combatHandler.Revive).Methods(http.MethodPost)
	combatRoutes.HandleFunc("/marker-failure", combatHandler.MarkerFailure).Methods(http.MethodPost)

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "unavailable", Error: err.Error()})
				return
			}
		}
		response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
	}
}
