package auth

import (
	apperrors "github.com/rststore/storefront/pkg/errors"
)

// Identity is the resolved acting principal for a request.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// RequireAdmin fails with Forbidden unless the identity carries the admin flag.
func RequireAdmin(id Identity) error {
	if !id.IsAdmin {
		return apperrors.Forbidden("admin privileges required")
	}
	return nil
}

// RequireSelfOrAdmin fails with Forbidden unless the identity is the target
// user or an admin.
func RequireSelfOrAdmin(id Identity, targetUserID string) error {
	if id.IsAdmin || id.UserID == targetUserID {
		return nil
	}
	return apperrors.Forbidden("access restricted to the owner or an admin")
}
