// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"errors"
)

// Identity describes an authenticated user as reported by the
// identity provider. Immutable once obtained; never persisted by the
// gateway.
type Identity struct {
	// ID is the provider's stable user identifier.
	ID string

	// DisplayName is the human-readable username.
	DisplayName string

	// Privileged is true for administrator accounts. Only privileged
	// identities may hold gateway sessions.
	Privileged bool
}

// Errors returned by Provider implementations.
var (
	// ErrAuthenticationFailed means the provider rejected the
	// username/password pair.
	ErrAuthenticationFailed = errors.New("identity: authentication failed")

	// ErrNotFound means the provider has no user with the given ID.
	ErrNotFound = errors.New("identity: user not found")
)

// Provider is the upstream identity service. Authenticate verifies
// credentials at login; Fetch re-reads a user during token refresh so
// revoked privileges take effect without waiting for the refresh
// token to expire.
type Provider interface {
	// Authenticate verifies a username/password pair. On success it
	// returns the resolved identity and the provider's own opaque
	// session token (unused by the gateway, returned for parity with
	// the provider API). Failure is ErrAuthenticationFailed, possibly
	// wrapped with provider detail.
	Authenticate(ctx context.Context, username, password string) (Identity, string, error)

	// Fetch looks up a user by provider ID. Returns ErrNotFound when
	// the user no longer exists.
	Fetch(ctx context.Context, id string) (Identity, error)
}
