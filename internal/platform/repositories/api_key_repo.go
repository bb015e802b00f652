package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"authgate/internal/platform/models"
)

type APIKeyRepository struct {
	db *sql.DB
}

func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(key *models.APIKey) error {
	if key.ID == "" {
		key.ID = "key_" + uuid.New().String()
	}
	key.CreatedAt = time.Now().Unix()

	query := `
		INSERT INTO api_keys (id, organization_id, project_id, created_by, name, lookup_prefix, secret_digest, digest_algo, fingerprint, display_prefix, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, key.ID, key.OrganizationID, key.ProjectID, key.CreatedBy, key.Name, key.LookupPrefix, key.SecretDigest, key.DigestAlgo, key.Fingerprint, key.DisplayPrefix, key.CreatedAt, key.ExpiresAt)
	return err
}

// FindActiveByLookupPrefix returns all live records for a prefix. The lookup
// prefix carries a UNIQUE constraint, so more than one row signals corruption;
// the verifier decides what to do with that, the repository just reports what
// is there.
func (r *APIKeyRepository) FindActiveByLookupPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	query := `
		SELECT id, organization_id, project_id, created_by, name, secret_digest, digest_algo, fingerprint, display_prefix, created_at, expires_at
		FROM api_keys
		WHERE lookup_prefix = ? AND revoked_at IS NULL AND (expires_at IS NULL OR expires_at > ?)
	`
	rows, err := r.db.QueryContext(ctx, query, prefix, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		var projectID sql.NullString
		var expiresAt sql.NullInt64

		if err := rows.Scan(&k.ID, &k.OrganizationID, &projectID, &k.CreatedBy, &k.Name, &k.SecretDigest, &k.DigestAlgo, &k.Fingerprint, &k.DisplayPrefix, &k.CreatedAt, &expiresAt); err != nil {
			return nil, err
		}

		if projectID.Valid {
			k.ProjectID = &projectID.String
		}
		if expiresAt.Valid {
			k.ExpiresAt = new(int64)
			*k.ExpiresAt = expiresAt.Int64
		}
		k.LookupPrefix = prefix
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepository) GetByID(id string) (*models.APIKey, error) {
	query := `
		SELECT id, organization_id, project_id, created_by, name, lookup_prefix, fingerprint, display_prefix, created_at, expires_at, revoked_at
		FROM api_keys WHERE id = ?
	`
	var k models.APIKey
	var projectID sql.NullString
	var expiresAt, revokedAt sql.NullInt64

	err := r.db.QueryRow(query, id).Scan(&k.ID, &k.OrganizationID, &projectID, &k.CreatedBy, &k.Name, &k.LookupPrefix, &k.Fingerprint, &k.DisplayPrefix, &k.CreatedAt, &expiresAt, &revokedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if projectID.Valid {
		k.ProjectID = &projectID.String
	}
	if expiresAt.Valid {
		k.ExpiresAt = new(int64)
		*k.ExpiresAt = expiresAt.Int64
	}
	if revokedAt.Valid {
		k.RevokedAt = new(int64)
		*k.RevokedAt = revokedAt.Int64
	}
	return &k, nil
}

func (r *APIKeyRepository) ListByOrg(orgID string) ([]*models.APIKey, error) {
	query := `
		SELECT id, project_id, created_by, name, display_prefix, last_used_at, created_at, expires_at, revoked_at
		FROM api_keys WHERE organization_id = ? ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		var projectID sql.NullString
		var lastUsedAt, expiresAt, revokedAt sql.NullInt64

		if err := rows.Scan(&k.ID, &projectID, &k.CreatedBy, &k.Name, &k.DisplayPrefix, &lastUsedAt, &k.CreatedAt, &expiresAt, &revokedAt); err != nil {
			return nil, err
		}

		if projectID.Valid {
			k.ProjectID = &projectID.String
		}
		if lastUsedAt.Valid {
			k.LastUsedAt = new(int64)
			*k.LastUsedAt = lastUsedAt.Int64
		}
		if expiresAt.Valid {
			k.ExpiresAt = new(int64)
			*k.ExpiresAt = expiresAt.Int64
		}
		if revokedAt.Valid {
			k.RevokedAt = new(int64)
			*k.RevokedAt = revokedAt.Int64
		}
		k.OrganizationID = orgID
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepository) Revoke(id string) error {
	_, err := r.db.Exec(`UPDATE api_keys SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`, time.Now().Unix(), id)
	return err
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}

// RevokeExpired marks keys whose expiry has passed as revoked, so the expiry
// sweep and explicit revocation share one liveness predicate. Returns the
// number of keys swept.
func (r *APIKeyRepository) RevokeExpired(now int64) (int64, error) {
	res, err := r.db.Exec(`UPDATE api_keys SET revoked_at = ? WHERE revoked_at IS NULL AND expires_at IS NOT NULL AND expires_at <= ?`, now, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
