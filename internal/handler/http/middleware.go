package http

import (
	"net/http"
	"strings"

	"github.com/rststore/storefront/internal/auth"
	"github.com/rststore/storefront/pkg/middleware"
	"github.com/rststore/storefront/pkg/pagination"
)

// Roles recognized by the router. The admin flag on the JWT maps onto these
// so pkg/middleware.RequireRole can gate admin routes.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// NewTokenValidator bridges the JWT manager to the auth middleware.
func NewTokenValidator(jwtManager *auth.JWTManager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.Validate(token)
		if err != nil {
			return nil, err
		}
		role := RoleCustomer
		if claims.IsAdmin {
			role = RoleAdmin
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   role,
		}, nil
	}
}

// identityFromRequest reconstructs the acting principal from the claims the
// auth middleware stored in the request context.
func identityFromRequest(r *http.Request) auth.Identity {
	ctx := r.Context()
	return auth.Identity{
		UserID:  middleware.UserIDFromContext(ctx),
		IsAdmin: middleware.RoleFromContext(ctx) == RoleAdmin,
	}
}

// parsePagination reads page/per_page query parameters with defaults and
// an upper bound enforced by pkg/pagination.
func parsePagination(r *http.Request) (page, perPage int) {
	p := pagination.FromRequest(r)
	return p.Page, p.PerPage
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
