package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "authgate/internal/api/context"
	"authgate/internal/api/middleware"
	"authgate/internal/engine/auth"
	"authgate/internal/platform/repositories"
)

// ScopeHandler serves scope introspection on the public surface: the
// endpoints the gate itself owns. Callers use them to see what their key
// resolves to and whether it reaches a given project, without performing any
// mutation.
type ScopeHandler struct {
	gate        *auth.EntitlementGate
	projectRepo *repositories.ProjectRepository
}

func NewScopeHandler(gate *auth.EntitlementGate, projectRepo *repositories.ProjectRepository) *ScopeHandler {
	return &ScopeHandler{gate: gate, projectRepo: projectRepo}
}

type scopeResponse struct {
	AccessLevel    auth.AccessLevel      `json:"access_level"`
	OrganizationID string                `json:"organization_id"`
	ProjectID      string                `json:"project_id,omitempty"`
	Plan           auth.PlanTier         `json:"plan"`
	Entitlements   map[auth.Feature]bool `json:"entitlements"`
}

func (h *ScopeHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope := r.Context().Value(apiContext.Scope).(auth.Scope)

	resp := scopeResponse{
		AccessLevel:    scope.Level(),
		OrganizationID: scope.OrganizationID(),
		Plan:           scope.Plan(),
		Entitlements:   h.gate.Snapshot(scope.Plan()),
	}
	if projectID, ok := scope.ProjectID(); ok {
		resp.ProjectID = projectID
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CheckProjectAccess answers whether the presented key may act on a project.
// Ownership is re-checked against the scope here, at the point of access;
// unknown and cross-tenant projects get the same Forbidden answer.
func (h *ScopeHandler) CheckProjectAccess(w http.ResponseWriter, r *http.Request) {
	scope := r.Context().Value(apiContext.Scope).(auth.Scope)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	projectID := params.ByName("project_id")

	project, err := h.projectRepo.GetByID(projectID)
	if err != nil {
		middleware.WriteAuthError(w, auth.ErrInternal)
		return
	}
	if project == nil || project.DeletedAt != nil {
		middleware.WriteAuthError(w, auth.ErrForbidden)
		return
	}

	if err := auth.AuthorizeProject(scope, project.OrganizationID, project.ID, true); err != nil {
		middleware.WriteAuthError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
