package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// TokenDigest returns the hex-encoded SHA-256 digest of a refresh credential.
// Sessions persist the digest so the raw credential never reaches storage.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// DigestMatches reports whether token hashes to digest, comparing in constant time.
// An empty token never matches.
func DigestMatches(token, digest string) bool {
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(TokenDigest(token)), []byte(digest)) == 1
}
