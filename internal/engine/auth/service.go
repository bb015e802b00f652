package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"authgate/internal/platform/models"
)

// KeyStore is the read side of the credential store. FindActiveByLookupPrefix
// returns every non-revoked, non-expired record for a prefix; the verifier
// treats more than one match as a data-integrity fault.
type KeyStore interface {
	FindActiveByLookupPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	TouchLastUsed(ctx context.Context, id string) error
}

// PlanSource reads the owning organization's current subscription tier.
type PlanSource interface {
	GetOrgPlan(ctx context.Context, orgID string) (string, error)
}

// Service is the gate every public API request passes through. It verifies a
// bearer credential, resolves it to a Scope, and caches the result under the
// credential fingerprint for the configured TTL. All collaborators are
// injected; the service itself holds no mutable state and is safe for
// concurrent use.
type Service struct {
	keys  KeyStore
	plans PlanSource
	cache ScopeCache
	ttl   time.Duration
}

func NewService(keys KeyStore, plans PlanSource, cache ScopeCache, ttl time.Duration) *Service {
	return &Service{keys: keys, plans: plans, cache: cache, ttl: ttl}
}

// Authenticate verifies a raw credential and returns its resolved scope.
// Errors are limited to ErrMalformed, ErrInvalidCredential and ErrInternal;
// no-record and digest-mismatch are deliberately the same error.
func (s *Service) Authenticate(ctx context.Context, raw string) (Scope, error) {
	cred, err := ParseCredential(raw)
	if err != nil {
		return Scope{}, err
	}

	fingerprint := cred.Fingerprint()

	// A cache hit is only possible if this exact prefix+secret combination
	// was verified before, so the digest check can be skipped.
	if scope, ok := s.cache.Get(fingerprint); ok {
		return scope, nil
	}

	records, err := s.keys.FindActiveByLookupPrefix(ctx, cred.LookupPrefix)
	if err != nil {
		log.Error().Err(err).Str("lookup_prefix", cred.LookupPrefix).Msg("api key lookup failed")
		return Scope{}, ErrInternal
	}

	if len(records) == 0 {
		return Scope{}, ErrInvalidCredential
	}
	if len(records) > 1 {
		log.Error().Str("lookup_prefix", cred.LookupPrefix).Int("count", len(records)).
			Msg("duplicate active lookup prefix")
		return Scope{}, ErrInternal
	}

	record := records[0]

	if record.DigestAlgo != DigestAlgoBcrypt {
		log.Error().Str("lookup_prefix", cred.LookupPrefix).
			Str("organization_id", record.OrganizationID).
			Str("algo", record.DigestAlgo).Msg("unknown secret digest algorithm")
		return Scope{}, ErrInternal
	}

	// bcrypt comparison is constant-time over the digest.
	if err := bcrypt.CompareHashAndPassword([]byte(record.SecretDigest), []byte(cred.Secret)); err != nil {
		log.Warn().Str("lookup_prefix", cred.LookupPrefix).
			Str("organization_id", record.OrganizationID).Msg("api key digest mismatch")
		return Scope{}, ErrInvalidCredential
	}

	plan, err := s.plans.GetOrgPlan(ctx, record.OrganizationID)
	if err != nil {
		log.Error().Err(err).Str("organization_id", record.OrganizationID).Msg("plan lookup failed")
		return Scope{}, ErrInternal
	}

	scope := Resolve(record, PlanTier(plan))

	// Idempotent fill: racing requests write the same value. The write is
	// also done when the caller's context is already gone, warming the cache
	// for the next request.
	s.cache.Set(fingerprint, scope, s.ttl)

	go s.keys.TouchLastUsed(context.WithoutCancel(ctx), record.ID)

	return scope, nil
}

// Invalidate drops the cached scope for a fingerprint. The revocation path
// calls this so the next verify hits the store.
func (s *Service) Invalidate(fingerprint string) {
	s.cache.Invalidate(fingerprint)
}

// Resolve maps a verified credential record to its scope: a record bound to a
// project yields a project-level scope, one without yields an
// organization-level scope.
func Resolve(record *models.APIKey, plan PlanTier) Scope {
	if record.ProjectID != nil && *record.ProjectID != "" {
		return ProjectScope(record.OrganizationID, *record.ProjectID, plan)
	}
	return OrgScope(record.OrganizationID, plan)
}
