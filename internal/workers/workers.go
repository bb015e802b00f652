package workers

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"authgate/internal/engine/auth"
	"authgate/internal/platform/repositories"
)

// Orgs without the data-retention entitlement keep a short audit window.
const freeTierRetentionDays = 30

// ExpireAPIKeys flips keys past their expiry to revoked. The verifier already
// filters expired keys on lookup; this sweep keeps listings honest and closes
// the gap for deployments that only check revoked_at.
func ExpireAPIKeys(keyRepo *repositories.APIKeyRepository) error {
	swept, err := keyRepo.RevokeExpired(time.Now().Unix())
	if err != nil {
		return err
	}
	if swept > 0 {
		log.Info().Int64("count", swept).Msg("expired api keys revoked")
	}
	return nil
}

// TrimAuditLogs deletes audit entries older than each org's retention window.
// Retention is an entitlement: plans without data-retention fall back to the
// short window, evaluated against the live plan on every run.
func TrimAuditLogs(db *sql.DB, gate *auth.EntitlementGate, retentionDays int) error {
	rows, err := db.Query(`SELECT id, plan_tier FROM organizations WHERE deleted_at IS NULL`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type org struct {
		id   string
		plan string
	}
	var orgs []org
	for rows.Next() {
		var o org
		if err := rows.Scan(&o.id, &o.plan); err != nil {
			return err
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	now := time.Now()
	var trimmed int64
	for _, o := range orgs {
		days := freeTierRetentionDays
		if gate.IsEntitled(auth.PlanTier(o.plan), auth.FeatureDataRetention) {
			days = retentionDays
		}
		cutoff := now.AddDate(0, 0, -days).Unix()

		res, err := db.Exec(`DELETE FROM audit_logs WHERE organization_id = ? AND created_at < ?`, o.id, cutoff)
		if err != nil {
			log.Error().Err(err).Str("organization_id", o.id).Msg("audit trim failed")
			continue
		}
		if deleted, err := res.RowsAffected(); err == nil {
			trimmed += deleted
		}
	}

	if trimmed > 0 {
		log.Info().Int64("count", trimmed).Msg("old audit entries trimmed")
	}
	return nil
}
