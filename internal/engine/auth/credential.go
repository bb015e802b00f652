package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// Raw keys look like sk_1a2b3c4d5e6f.R4nd0mS3cr3t... The part before the
	// dot is the non-secret lookup prefix stored in clear for indexing.
	keyIDPrefix    = "sk_"
	keyIDBytes     = 6
	keySecretBytes = 32

	// DigestAlgoBcrypt is the algorithm identifier stored alongside each
	// secret digest.
	DigestAlgoBcrypt = "bcrypt"
)

// Credential is a parsed, not-yet-verified API key.
type Credential struct {
	LookupPrefix string
	Secret       string
}

// ParseCredential splits a raw bearer string into lookup prefix and secret.
// Returns ErrMalformed for anything that does not match the issued format, so
// garbage input is rejected without touching the cache or the store.
func ParseCredential(raw string) (Credential, error) {
	if !strings.HasPrefix(raw, keyIDPrefix) {
		return Credential{}, ErrMalformed
	}

	dot := strings.IndexByte(raw, '.')
	if dot < 0 {
		return Credential{}, ErrMalformed
	}

	prefix := raw[:dot]
	secret := raw[dot+1:]

	if len(prefix) <= len(keyIDPrefix) || secret == "" {
		return Credential{}, ErrMalformed
	}

	return Credential{LookupPrefix: prefix, Secret: secret}, nil
}

// Fingerprint derives the cache key for this credential. It mixes the public
// prefix with a hash of the secret, so an attacker who knows a prefix cannot
// construct the cache key and a cache hit implies the exact secret was already
// verified.
func (c Credential) Fingerprint() string {
	secretSum := sha256.Sum256([]byte(c.Secret))

	h := sha256.New()
	h.Write([]byte(c.LookupPrefix))
	h.Write([]byte{':'})
	h.Write([]byte(hex.EncodeToString(secretSum[:])))
	return hex.EncodeToString(h.Sum(nil))
}

// MintedKey is the result of minting a new API key. Raw is shown to the user
// exactly once; everything else is what the store persists.
type MintedKey struct {
	Raw           string
	LookupPrefix  string
	SecretDigest  string
	DigestAlgo    string
	Fingerprint   string
	DisplayPrefix string
}

// MintKey generates a fresh credential and its storable parts. The secret is
// digested with bcrypt at the given cost; the plaintext secret only exists in
// the returned Raw value.
func MintKey(bcryptCost int) (*MintedKey, error) {
	idBytes := make([]byte, keyIDBytes)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, err
	}
	secretBytes := make([]byte, keySecretBytes)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, err
	}

	prefix := keyIDPrefix + hex.EncodeToString(idBytes)
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	digest, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return nil, err
	}

	cred := Credential{LookupPrefix: prefix, Secret: secret}

	return &MintedKey{
		Raw:           prefix + "." + secret,
		LookupPrefix:  prefix,
		SecretDigest:  string(digest),
		DigestAlgo:    DigestAlgoBcrypt,
		Fingerprint:   cred.Fingerprint(),
		DisplayPrefix: prefix + "...",
	}, nil
}
