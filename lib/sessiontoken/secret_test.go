// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package sessiontoken

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestParseSecret(t *testing.T) {
	raw := make([]byte, SecretSize)
	for i := range raw {
		raw[i] = byte(i)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	secret, err := ParseSecret(encoded)
	if err != nil {
		t.Fatalf("ParseSecret: %v", err)
	}
	if secret[0] != 0 || secret[31] != 31 {
		t.Errorf("secret bytes not preserved: %v", secret)
	}
}

func TestParseSecretRejectsBadInput(t *testing.T) {
	if _, err := ParseSecret("!!!not-base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}

	short := base64.StdEncoding.EncodeToString([]byte("too short"))
	if _, err := ParseSecret(short); err == nil || !strings.Contains(err.Error(), "32 bytes") {
		t.Errorf("expected length error, got %v", err)
	}
}

func TestRandomSecretsDiffer(t *testing.T) {
	first, err := RandomSecret()
	if err != nil {
		t.Fatalf("RandomSecret: %v", err)
	}
	second, err := RandomSecret()
	if err != nil {
		t.Fatalf("RandomSecret: %v", err)
	}
	if first == second {
		t.Error("two random secrets are identical")
	}
}

func TestFingerprint(t *testing.T) {
	secret, err := RandomSecret()
	if err != nil {
		t.Fatalf("RandomSecret: %v", err)
	}

	fp := secret.Fingerprint()
	if len(fp) != 16 {
		t.Errorf("fingerprint length = %d, want 16 hex chars", len(fp))
	}
	if fp != secret.Fingerprint() {
		t.Error("fingerprint is not deterministic")
	}

	other, err := RandomSecret()
	if err != nil {
		t.Fatalf("RandomSecret: %v", err)
	}
	if fp == other.Fingerprint() {
		t.Error("different secrets share a fingerprint")
	}
}
