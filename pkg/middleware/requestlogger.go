package middleware

import (
	"log/slog"
	"net/http"

	"github.com/rststore/storefront/pkg/logger"
)

// RequestLogger derives a request-scoped logger carrying correlation_id,
// user_id, and the active trace/span IDs, and parks it in the context for
// logger.FromContext. Mount it after RequestLogging and Tracing so both
// sources are populated; Auth may run before or after, since the user ID
// also arrives via the X-User-ID header on trusted internal calls.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID := UserIDFromContext(ctx)
			if userID == "" {
				userID = r.Header.Get("X-User-ID")
			}
			if userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
