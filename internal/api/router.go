package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/racesync/internal/api/apierr"
	"github.com/mcoot/racesync/internal/api/handler"
	"github.com/mcoot/racesync/internal/api/middleware"
	httpmw "github.com/mcoot/racesync/internal/middleware"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger  *slog.Logger
	Storage storage.Storage
	// SessionID selects the session to report on. Optional.
	SessionID func() model.SessionID
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	logger := cfg.Logger.With(slog.String("component", "status_api"))

	status := handler.NewStatusHandler(cfg.Storage, cfg.SessionID)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RecoverJSON(logger))
	api.Use(httpmw.Logging(logger))
	api.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, apierr.NewMethodNotAllowedError(r.Method))
	})

	api.HandleFunc("/health", status.Health).Methods(http.MethodGet)
	api.HandleFunc("/session", status.Session).Methods(http.MethodGet)
	api.HandleFunc("/races", status.Races).Methods(http.MethodGet)
	api.HandleFunc("/races/{id}", status.Race).Methods(http.MethodGet)

	return r
}
