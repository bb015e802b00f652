package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	apiContext "authgate/internal/api/context"
	"authgate/internal/engine/auth"
	"authgate/internal/pkg/errors"
)

// APIKeyMiddleware is the gate on the public surface: it extracts the bearer
// credential, runs it through the verifier and puts the resolved scope into
// the request context. Any non-success outcome rejects the request before
// business logic runs.
type APIKeyMiddleware struct {
	svc *auth.Service
}

func NewAPIKeyMiddleware(svc *auth.Service) *APIKeyMiddleware {
	return &APIKeyMiddleware{svc: svc}
}

func (m *APIKeyMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}
		raw := parts[1]

		scope, err := m.svc.Authenticate(r.Context(), raw)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Scope, scope)
		if cred, perr := auth.ParseCredential(raw); perr == nil {
			ctx = context.WithValue(ctx, apiContext.Actor, cred.LookupPrefix)
		}
		next(w, r.WithContext(ctx))
	}
}

// writeAuthError maps the closed domain error set onto HTTP responses.
// Malformed and invalid credentials are both 401; the response body does not
// distinguish no-record from digest-mismatch.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, auth.ErrMalformed), stderrors.Is(err, auth.ErrInvalidCredential):
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid API key", nil)
	case stderrors.Is(err, auth.ErrForbidden):
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient scope", nil)
	default:
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Authentication unavailable", nil)
	}
}

// WriteAuthError is the mapping handlers use after guard checks.
func WriteAuthError(w http.ResponseWriter, err error) {
	writeAuthError(w, err)
}
