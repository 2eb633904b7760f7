package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicResponder writes the reply for a request whose handler panicked
type PanicResponder func(w http.ResponseWriter, r *http.Request, recovered any)

// Recover logs a handler panic with its stack and lets respond answer the
// request. http.ErrAbortHandler is re-raised so the server drops the connection.
func Recover(logger *slog.Logger, respond PanicResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				logger.Error("handler panicked",
					slog.String("route", r.Method+" "+r.URL.Path),
					slog.Any("panic", recovered),
					slog.String("stack", string(debug.Stack())))
				respond(w, r, recovered)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
