package models

type APIKey struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	ProjectID      *string `json:"project_id,omitempty"`
	CreatedBy      string  `json:"created_by"`
	Name           string  `json:"name"`
	LookupPrefix   string  `json:"-"`
	SecretDigest   string  `json:"-"`
	DigestAlgo     string  `json:"-"`
	Fingerprint    string  `json:"-"`
	DisplayPrefix  string  `json:"display_prefix"`
	LastUsedAt     *int64  `json:"last_used_at,omitempty"`
	ExpiresAt      *int64  `json:"expires_at,omitempty"`
	CreatedAt      int64   `json:"created_at"`
	RevokedAt      *int64  `json:"revoked_at,omitempty"`
}
