// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity defines who a session belongs to and where that
// answer comes from.
//
// [Identity] is the minimal fact set the gateway needs: a stable ID, a
// display name, and the privileged flag that gates all proxied access.
// [Provider] is the upstream identity service contract: verify a
// username/password pair, or re-fetch a known user by ID. The gateway
// never stores identities — they are reconstructed from token claims
// on each request and re-fetched from the provider on refresh.
//
// [JellyfinClient] is the production Provider, speaking Jellyfin's
// MediaBrowser authentication API.
package identity
