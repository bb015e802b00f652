package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	apiContext "authgate/internal/api/context"
	"authgate/internal/engine/auth"
	"authgate/internal/pkg/errors"
	"authgate/internal/platform/audit"
	"authgate/internal/platform/models"
	"authgate/internal/platform/repositories"
	"authgate/internal/platform/session"
)

type APIKeyHandler struct {
	keyRepo     *repositories.APIKeyRepository
	projectRepo *repositories.ProjectRepository
	authSvc     *auth.Service
	auditLog    *audit.Logger
	bcryptCost  int
}

func NewAPIKeyHandler(keyRepo *repositories.APIKeyRepository, projectRepo *repositories.ProjectRepository, authSvc *auth.Service, auditLog *audit.Logger, bcryptCost int) *APIKeyHandler {
	return &APIKeyHandler{
		keyRepo:     keyRepo,
		projectRepo: projectRepo,
		authSvc:     authSvc,
		auditLog:    auditLog,
		bcryptCost:  bcryptCost,
	}
}

type createKeyRequest struct {
	Name          string `json:"name"`
	ProjectID     string `json:"project_id,omitempty"`
	ExpiresInDays int    `json:"expires_in_days,omitempty"`
}

type createKeyResponse struct {
	ID            string  `json:"id"`
	Key           string  `json:"key"`
	Name          string  `json:"name"`
	ProjectID     *string `json:"project_id,omitempty"`
	DisplayPrefix string  `json:"display_prefix"`
	ExpiresAt     *int64  `json:"expires_at,omitempty"`
	CreatedAt     int64   `json:"created_at"`
}

// Create mints a new API key. A key without a project binding acts
// organization-wide; one with a binding is confined to that project. The raw
// key appears in this response and nowhere else.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*session.Claims)

	var req createKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Key name is required", nil)
		return
	}

	var projectID *string
	if req.ProjectID != "" {
		project, err := h.projectRepo.GetByID(req.ProjectID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return
		}
		// Tenant ownership is re-checked here, at the point of access.
		// Unknown and cross-tenant projects get the same answer.
		if project == nil || project.OrganizationID != claims.OrganizationID || project.DeletedAt != nil {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Project not accessible", nil)
			return
		}
		projectID = &req.ProjectID
	}

	minted, err := auth.MintKey(h.bcryptCost)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate key", nil)
		return
	}

	apiKey := &models.APIKey{
		OrganizationID: claims.OrganizationID,
		ProjectID:      projectID,
		CreatedBy:      claims.UserID,
		Name:           req.Name,
		LookupPrefix:   minted.LookupPrefix,
		SecretDigest:   minted.SecretDigest,
		DigestAlgo:     minted.DigestAlgo,
		Fingerprint:    minted.Fingerprint,
		DisplayPrefix:  minted.DisplayPrefix,
	}

	if req.ExpiresInDays > 0 {
		exp := time.Now().Add(time.Duration(req.ExpiresInDays) * 24 * time.Hour).Unix()
		apiKey.ExpiresAt = &exp
	}

	if err := h.keyRepo.Create(apiKey); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store key", nil)
		return
	}

	h.auditLog.Log(r.Context(), r, "api_key.created", "api_key", apiKey.ID, map[string]interface{}{
		"name":           apiKey.Name,
		"display_prefix": apiKey.DisplayPrefix,
		"project_id":     req.ProjectID,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createKeyResponse{
		ID:            apiKey.ID,
		Key:           minted.Raw,
		Name:          apiKey.Name,
		ProjectID:     apiKey.ProjectID,
		DisplayPrefix: apiKey.DisplayPrefix,
		ExpiresAt:     apiKey.ExpiresAt,
		CreatedAt:     apiKey.CreatedAt,
	})
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*session.Claims)

	keys, err := h.keyRepo.ListByOrg(claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(keys)
}

// Revoke marks the key revoked and drops its cached scope, so the staleness
// window closes immediately instead of waiting out the cache TTL.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*session.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	keyID := params.ByName("key_id")

	key, err := h.keyRepo.GetByID(keyID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if key == nil || key.OrganizationID != claims.OrganizationID {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Key not accessible", nil)
		return
	}

	if err := h.keyRepo.Revoke(keyID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to revoke key", nil)
		return
	}

	h.authSvc.Invalidate(key.Fingerprint)

	h.auditLog.Log(r.Context(), r, "api_key.revoked", "api_key", key.ID, map[string]interface{}{
		"display_prefix": key.DisplayPrefix,
	})

	w.WriteHeader(http.StatusNoContent)
}
