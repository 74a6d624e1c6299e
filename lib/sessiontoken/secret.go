// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package sessiontoken

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// SecretSize is the signing secret length in bytes (256 bits). The
// secret doubles as the Ed25519 seed for the engine's keypair.
const SecretSize = 32

// Secret is the process-wide token signing secret. Created once at
// startup, immutable for the process lifetime, never rotated at
// runtime.
type Secret [SecretSize]byte

// ParseSecret decodes a base64 (standard encoding) signing secret from
// configuration. The decoded value must be exactly 32 bytes.
func ParseSecret(encoded string) (Secret, error) {
	var secret Secret
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return secret, fmt.Errorf("sessiontoken: signing secret is not valid base64: %w", err)
	}
	if len(raw) != SecretSize {
		return secret, fmt.Errorf("sessiontoken: signing secret must be %d bytes, got %d", SecretSize, len(raw))
	}
	copy(secret[:], raw)
	return secret, nil
}

// RandomSecret generates a fresh signing secret. Tokens minted under a
// random secret do not survive a process restart.
func RandomSecret() (Secret, error) {
	var secret Secret
	if _, err := rand.Read(secret[:]); err != nil {
		return secret, fmt.Errorf("sessiontoken: generating signing secret: %w", err)
	}
	return secret, nil
}

// Fingerprint returns a short hex digest of the secret, safe to log.
// Operators use it to tell a configured secret apart from a
// per-restart random one without the value itself ever appearing in
// logs.
func (s Secret) Fingerprint() string {
	sum := blake3.Sum256(s[:])
	return hex.EncodeToString(sum[:8])
}
