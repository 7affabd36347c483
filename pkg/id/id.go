// Package id generates the opaque identifiers the directory hands out:
// account IDs and API token secrets. Both alphabets exclude the '/' key
// separator, which the index encoding depends on.
package id

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewAccountID returns a 26-character lowercase base32 encoding of a
// random UUIDv4. Account IDs are immutable once assigned.
func NewAccountID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate account id: %v", err)
	}
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(u[:])
	return strings.ToLower(encoded), nil
}

// NewTokenSecret returns a 43-character base64url encoding of 32 random
// bytes. Secrets are globally unique in practice; collisions are not
// checked by callers.
func NewTokenSecret() (string, error) {
	randomBytes := make([]byte, 32)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate token secret: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(randomBytes), nil
}
