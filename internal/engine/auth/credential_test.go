package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestParseCredential(t *testing.T) {
	malformed := []string{
		"",
		"sk_",
		"sk_.secret",
		"sk_abc",
		"sk_abc.",
		"pk_abc.secret",
		"not-a-key",
		"Bearer sk_abc.def",
	}

	for _, raw := range malformed {
		if _, err := ParseCredential(raw); !errors.Is(err, ErrMalformed) {
			t.Errorf("ParseCredential(%q) = %v, want ErrMalformed", raw, err)
		}
	}

	cred, err := ParseCredential("sk_abc.def")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cred.LookupPrefix != "sk_abc" {
		t.Errorf("Expected lookup prefix sk_abc, got %s", cred.LookupPrefix)
	}
	if cred.Secret != "def" {
		t.Errorf("Expected secret def, got %s", cred.Secret)
	}

	// A dot inside the secret belongs to the secret.
	cred, err = ParseCredential("sk_abc.de.f")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cred.Secret != "de.f" {
		t.Errorf("Expected secret de.f, got %s", cred.Secret)
	}
}

func TestFingerprintDependsOnSecret(t *testing.T) {
	a := Credential{LookupPrefix: "sk_abc", Secret: "one"}.Fingerprint()
	b := Credential{LookupPrefix: "sk_abc", Secret: "two"}.Fingerprint()
	c := Credential{LookupPrefix: "sk_abd", Secret: "one"}.Fingerprint()

	if a == b {
		t.Error("Fingerprints with different secrets must differ")
	}
	if a == c {
		t.Error("Fingerprints with different prefixes must differ")
	}
	if a != (Credential{LookupPrefix: "sk_abc", Secret: "one"}.Fingerprint()) {
		t.Error("Fingerprint must be deterministic")
	}
}

func TestMintKey(t *testing.T) {
	minted, err := MintKey(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	cred, err := ParseCredential(minted.Raw)
	if err != nil {
		t.Fatalf("Minted key does not parse: %v", err)
	}
	if cred.LookupPrefix != minted.LookupPrefix {
		t.Errorf("Expected lookup prefix %s, got %s", minted.LookupPrefix, cred.LookupPrefix)
	}
	if cred.Fingerprint() != minted.Fingerprint {
		t.Error("Minted fingerprint does not match the parsed credential's")
	}
	if minted.DigestAlgo != DigestAlgoBcrypt {
		t.Errorf("Expected algo %s, got %s", DigestAlgoBcrypt, minted.DigestAlgo)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(minted.SecretDigest), []byte(cred.Secret)); err != nil {
		t.Errorf("Stored digest does not verify the minted secret: %v", err)
	}

	other, _ := MintKey(bcrypt.MinCost)
	if other.LookupPrefix == minted.LookupPrefix {
		t.Error("Two minted keys share a lookup prefix")
	}
}
