package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "authgate/internal/api/context"
	"authgate/internal/api/handlers"
	"authgate/internal/api/middleware"
	"authgate/internal/pkg/errors"
	"authgate/internal/platform/session"
)

type Dependencies struct {
	AuthHandler      *handlers.AuthHandler
	APIKeyHandler    *handlers.APIKeyHandler
	ScopeHandler     *handlers.ScopeHandler
	AuditHandler     *handlers.AuditHandler
	HealthHandler    *handlers.HealthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	APIKeyMiddleware *middleware.APIKeyMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Console surface: session-authenticated key lifecycle.
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))

	authMid := deps.AuthMiddleware
	keyMid := deps.APIKeyMiddleware

	router.POST("/api/v1/api-keys",
		chain(deps.APIKeyHandler.Create, authMid.Handle, requireRole("admin", "owner"), middleware.RateLimit("api_write")))
	router.GET("/api/v1/api-keys",
		chain(deps.APIKeyHandler.List, authMid.Handle, middleware.RateLimit("api_read")))
	router.DELETE("/api/v1/api-keys/:key_id",
		chain(deps.APIKeyHandler.Revoke, authMid.Handle, requireRole("admin", "owner"), middleware.RateLimit("api_write")))

	router.GET("/api/v1/audit-logs",
		chain(deps.AuditHandler.List, authMid.Handle, middleware.RateLimit("api_read")))

	// Public surface: every request passes the API key gate first.
	router.GET("/api/public/v1/auth/scope",
		chain(deps.ScopeHandler.Get, keyMid.Handle, middleware.RateLimit("public")))
	router.GET("/api/public/v1/projects/:project_id/access",
		chain(deps.ScopeHandler.CheckProjectAccess, keyMid.Handle, middleware.RateLimit("public")))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := r.Context().Value(apiContext.Claims).(*session.Claims)

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
