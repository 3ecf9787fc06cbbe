package middleware

import (
	"net/http"

	"okr/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(role, permission string) bool
}

// Authorize writes 401 for anonymous callers and 403 for callers whose role
// lacks permission. It reports whether the request may continue. Handlers
// call it directly when the permission depends on the request itself.
func Authorize(w http.ResponseWriter, r *http.Request, permission string, store PermissionStore) bool {
	user, ok := GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required", GetRequestID(r.Context()))
		return false
	}
	if permission == "" || !store.HasPermission(user.RoleName, permission) {
		api.Fail(w, http.StatusForbidden, api.CodeForbidden, "insufficient permissions", GetRequestID(r.Context()))
		return false
	}
	return true
}

func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Authorize(w, r, permission, store) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireUser rejects anonymous requests without checking a permission.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
