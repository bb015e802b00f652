package handlers

import (
	"encoding/json"
	"net/http"

	apiContext "authgate/internal/api/context"
	"authgate/internal/engine/auth"
	"authgate/internal/pkg/errors"
	"authgate/internal/platform/database"
	"authgate/internal/platform/repositories"
	"authgate/internal/platform/session"
)

type AuditHandler struct {
	globalDB *database.GlobalDB
	orgRepo  *repositories.OrganizationRepository
	gate     *auth.EntitlementGate
}

func NewAuditHandler(globalDB *database.GlobalDB, orgRepo *repositories.OrganizationRepository, gate *auth.EntitlementGate) *AuditHandler {
	return &AuditHandler{globalDB: globalDB, orgRepo: orgRepo, gate: gate}
}

// List returns the org's recent audit entries. Gated on the audit-logs
// entitlement, evaluated against the live plan so a downgrade takes effect on
// the next request.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*session.Claims)

	plan, err := h.orgRepo.GetOrgPlan(r.Context(), claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !h.gate.IsEntitled(auth.PlanTier(plan), auth.FeatureAuditLogs) {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodePlanLimit, "Audit logs are not included in your plan", nil)
		return
	}

	query := `SELECT id, organization_id, actor, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at FROM audit_logs WHERE organization_id = ? ORDER BY created_at DESC LIMIT 100`
	rows, err := h.globalDB.DB.Query(query, claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	defer rows.Close()

	var logs []map[string]interface{}
	for rows.Next() {
		var id, orgID, actor, action, resType, resID, metaStr, ip, ua string
		var createdAt int64
		if err := rows.Scan(&id, &orgID, &actor, &action, &resType, &resID, &metaStr, &ip, &ua, &createdAt); err != nil {
			continue
		}

		var meta map[string]interface{}
		json.Unmarshal([]byte(metaStr), &meta)

		logs = append(logs, map[string]interface{}{
			"id":              id,
			"organization_id": orgID,
			"actor":           actor,
			"action":          action,
			"resource_type":   resType,
			"resource_id":     resID,
			"metadata":        meta,
			"ip_address":      ip,
			"user_agent":      ua,
			"created_at":      createdAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}
