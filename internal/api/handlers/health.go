package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"authgate/internal/engine/auth"
	"authgate/internal/platform/database"
)

type HealthHandler struct {
	globalDB *database.GlobalDB
	cache    *auth.MemoryScopeCache
}

func NewHealthHandler(globalDB *database.GlobalDB, cache *auth.MemoryScopeCache) *HealthHandler {
	return &HealthHandler{globalDB: globalDB, cache: cache}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := h.globalDB.DB.Ping(); err != nil {
		checks["global_db"] = "unhealthy: " + err.Error()
	} else {
		checks["global_db"] = "healthy"
	}

	checks["scope_cache"] = "healthy"

	status := "healthy"
	for _, check := range checks {
		if len(check) >= 9 && check[:9] == "unhealthy" {
			status = "degraded"
			break
		}
	}

	response := struct {
		Status       string            `json:"status"`
		Timestamp    int64             `json:"timestamp"`
		Checks       map[string]string `json:"checks"`
		CachedScopes int               `json:"cached_scopes"`
	}{
		Status:       status,
		Timestamp:    time.Now().Unix(),
		Checks:       checks,
		CachedScopes: h.cache.Len(),
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
