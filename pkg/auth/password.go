package auth

import (
	"crypto/sha256"
	"crypto/subtle"
)

// PasswordMatches compares candidate against secret in constant time. Both
// sides are hashed first so the comparison does not depend on their lengths.
func PasswordMatches(secret, candidate string) bool {
	if secret == "" {
		return false
	}
	want := sha256.Sum256([]byte(secret))
	got := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}
