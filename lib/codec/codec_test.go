// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

// samplePayload mirrors the shape of a token payload: keyasint tags,
// mixed string/bool/integer fields.
type samplePayload struct {
	Subject   string `cbor:"1,keyasint"`
	Name      string `cbor:"2,keyasint"`
	Admin     bool   `cbor:"3,keyasint"`
	IssuedAt  int64  `cbor:"4,keyasint"`
	ExpiresAt int64  `cbor:"5,keyasint"`
}

func TestRoundTrip(t *testing.T) {
	original := samplePayload{
		Subject:   "3fa85f64",
		Name:      "alice",
		Admin:     true,
		IssuedAt:  1756000000,
		ExpiresAt: 1756086399,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded samplePayload
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestDeterministicEncoding(t *testing.T) {
	payload := samplePayload{Subject: "s", Name: "n", IssuedAt: 42}

	first, err := Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("identical payloads encoded differently:\n%x\n%x", first, second)
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	type extended struct {
		Subject string `cbor:"1,keyasint"`
		Name    string `cbor:"2,keyasint"`
		Extra   string `cbor:"9,keyasint"`
	}

	data, err := Marshal(extended{Subject: "s", Name: "n", Extra: "future"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded samplePayload
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal with unknown field: %v", err)
	}
	if decoded.Subject != "s" || decoded.Name != "n" {
		t.Errorf("known fields lost: %+v", decoded)
	}
}

func TestDefaultMapType(t *testing.T) {
	data, err := Marshal(map[string]any{"status": "ok"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	m, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any, got %T", decoded)
	}
	if m["status"] != "ok" {
		t.Errorf("unexpected value: %v", m["status"])
	}
}
