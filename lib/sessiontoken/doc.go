// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

// Package sessiontoken issues and verifies the gateway's signed
// session credentials.
//
// A token is a CBOR-encoded [Claims] payload followed by a 64-byte
// Ed25519 signature, base64url-encoded so it travels in cookies and
// Authorization headers. Two kinds exist under one signing key:
// short-lived Access tokens that authorize proxied requests and die at
// the next UTC midnight, and longer-lived Refresh tokens used only to
// mint new access tokens. The kind is part of the signed claims and
// part of the verified contract — a refresh token presented where an
// access token is expected fails with [ErrKindMismatch], never
// silently passes.
//
// The signing secret is a 256-bit seed owned by the [Engine] instance,
// supplied by configuration or generated per process start. A random
// secret invalidates all outstanding tokens on restart; that is
// documented, accepted behavior.
package sessiontoken
