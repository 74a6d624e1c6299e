// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

// Package gateway is the authenticating reverse proxy in front of a
// set of internally-named backend services.
//
// [Server] owns the HTTP surface. Session endpoints (/auth/login,
// /auth/refresh, /auth/logout) and /health are public; everything else
// is the proxy entry, gated by [authGate]. The gate extracts a signed
// access token from the configured cookie or a Bearer header, verifies
// it through sessiontoken, enforces the administrator-only policy, and
// hands the resolved identity to the proxy handler as an explicit
// argument — never through hidden request state.
//
// The first path segment names the backend ("app name") and is
// resolved against the static [RouteTable]. Plain HTTP requests go
// through [forwarder], which strips the app-name prefix, filters
// transport headers, and relays the exchange byte-for-byte with no
// retries. Requests carrying "Upgrade: websocket" branch to
// [wsBridge], which upgrades the caller, dials the backend over
// ws/wss with the full original path preserved (backends are
// configured with a matching URL base), and pumps frames in both
// directions until either side closes.
//
// The route table, token engine, and identity provider are immutable
// after construction and shared across request goroutines without
// synchronization. Per-request state lives entirely in the handling
// goroutine.
package gateway
