// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Gatearr's standard CBOR encoding.
//
// All token payloads use Core Deterministic Encoding (RFC 8949 §4.2)
// so that the same claims always produce identical bytes. Signatures
// cover the encoded payload, so encoding determinism is part of the
// token contract, not an aesthetic choice.
package codec
