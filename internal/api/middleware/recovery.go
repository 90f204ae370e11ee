package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/tycoon-backend/internal/api/apierr"
	"github.com/mcoot/tycoon-backend/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// A panicking handler yields the same opaque 500 body as an unmapped error.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
