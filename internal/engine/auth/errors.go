package auth

import "errors"

// The closed set of outcomes callers can observe from authentication and
// authorization. Store and cache failures never leak through as raw errors;
// they surface as ErrInternal.
var (
	// ErrMalformed means the credential string could not be parsed. No store
	// or cache access happens for malformed input.
	ErrMalformed = errors.New("malformed api key")

	// ErrInvalidCredential covers both "no such key" and "digest mismatch".
	// The two are intentionally indistinguishable so callers cannot probe
	// which lookup prefixes exist.
	ErrInvalidCredential = errors.New("invalid api key")

	// ErrForbidden means the key is valid but its scope does not cover the
	// requested resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInternal is a data-integrity or infrastructure fault. Details are
	// logged server-side, never returned to the caller.
	ErrInternal = errors.New("internal auth error")
)
