// Package signing implements the capability-link signature scheme.
//
// A signature is a truncated HMAC-SHA256 over "{id}:{salt}" keyed by a
// process-wide secret. Possession of a matching signature, not an identity,
// authorizes a decision on the record; the per-record salt prevents a
// signature minted for one record from validating against another.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SignatureLength is the number of hex characters kept from the MAC. Long
// enough to resist guessing within a link's lifetime, short enough for a URL.
const SignatureLength = 16

// Signer derives deterministic link signatures from a shared secret.
type Signer struct {
	secret []byte
}

// NewSigner constructs a Signer keyed by the provided secret.
func NewSigner(secret []byte) *Signer {
	return &Signer{secret: append([]byte(nil), secret...)}
}

// Sign computes the signature for an appointment id and its signing salt.
// Pure function of (id, salt, secret); no side effects.
func (s *Signer) Sign(id int64, salt string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%d:%s", id, salt)
	return hex.EncodeToString(mac.Sum(nil))[:SignatureLength]
}

// Verify recomputes the signature for (id, salt) and compares it against the
// presented value in constant time.
func (s *Signer) Verify(id int64, salt, presented string) bool {
	expected := s.Sign(id, salt)
	return hmac.Equal([]byte(expected), []byte(presented))
}
