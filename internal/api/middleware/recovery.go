package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/racesync/internal/api/apierr"
	"github.com/mcoot/racesync/internal/middleware"
)

// RecoverJSON answers a panicking status handler with an INTERNAL_ERROR body
func RecoverJSON(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recover(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
