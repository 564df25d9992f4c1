package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/shootout/internal/api/apierr"
	"github.com/mcoot/shootout/internal/middleware"
)

// Recovery answers a panicking API handler with the standard INTERNAL_ERROR body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
