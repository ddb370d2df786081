// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// # Opaque Tokens

// GenerateSecureToken returns a cryptographically random hex token of the
// given byte length (the string is twice as long).
//
// Used for refresh tokens, password reset tokens, and invitation codes.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}

// HashToken returns the SHA-256 hex digest of a token.
//
// Opaque tokens are stored hashed so a database leak does not leak usable
// credentials. SHA-256 is enough here — the inputs are high-entropy random
// strings, not passwords.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
