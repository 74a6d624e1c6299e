// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

// Gatearr is an authenticating reverse proxy for *arr services.
// It fronts a set of configured backends, requires a signed
// administrator session for every request, and transparently relays
// both HTTP and WebSocket traffic.
package main
