package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	apiContext "authgate/internal/api/context"
	"authgate/internal/engine/auth"
	"authgate/internal/platform/models"
)

type stubKeyStore struct {
	records map[string][]*models.APIKey
}

func (s *stubKeyStore) FindActiveByLookupPrefix(_ context.Context, prefix string) ([]*models.APIKey, error) {
	return s.records[prefix], nil
}

func (s *stubKeyStore) TouchLastUsed(_ context.Context, _ string) error { return nil }

type stubPlanSource struct{}

func (stubPlanSource) GetOrgPlan(_ context.Context, _ string) (string, error) {
	return "pro", nil
}

func newTestMiddleware(t *testing.T) *APIKeyMiddleware {
	t.Helper()

	digest, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	store := &stubKeyStore{records: map[string][]*models.APIKey{
		"sk_abc123": {{
			ID:             "key_1",
			OrganizationID: "org_1",
			LookupPrefix:   "sk_abc123",
			SecretDigest:   string(digest),
			DigestAlgo:     auth.DigestAlgoBcrypt,
		}},
	}}

	cache := auth.NewMemoryScopeCache(0)
	t.Cleanup(cache.Close)

	svc := auth.NewService(store, stubPlanSource{}, cache, time.Minute)
	return NewAPIKeyMiddleware(svc)
}

func TestAPIKeyMiddleware(t *testing.T) {
	mw := newTestMiddleware(t)

	t.Run("Valid Key", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer sk_abc123.secret")

		rr := httptest.NewRecorder()
		handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := r.Context().Value(apiContext.Scope).(auth.Scope)
			if !ok {
				t.Fatal("Expected scope in context")
			}
			if scope.OrganizationID() != "org_1" {
				t.Errorf("Expected org_1, got %s", scope.OrganizationID())
			}
			if actor := r.Context().Value(apiContext.Actor); actor != "sk_abc123" {
				t.Errorf("Expected actor sk_abc123, got %v", actor)
			}
			w.WriteHeader(http.StatusOK)
		})

		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
		}
	})

	t.Run("Missing Header", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)

		rr := httptest.NewRecorder()
		handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be called")
		})

		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusUnauthorized)
		}
	})

	t.Run("Malformed Key", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-key")

		rr := httptest.NewRecorder()
		handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be called")
		})

		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusUnauthorized)
		}
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer sk_abc123.wrong")

		rr := httptest.NewRecorder()
		handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be called")
		})

		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusUnauthorized)
		}
	})

	t.Run("Unknown Prefix Same Status As Wrong Secret", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer sk_zzz999.whatever")

		rr := httptest.NewRecorder()
		handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be called")
		})

		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusUnauthorized)
		}
	})
}
