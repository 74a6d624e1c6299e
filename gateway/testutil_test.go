// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gatearr/gatearr/lib/clock"
	"github.com/gatearr/gatearr/lib/identity"
	"github.com/gatearr/gatearr/lib/sessiontoken"
)

// discardLogger keeps test output quiet.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testSecurity is the cookie/token configuration used across tests.
var testSecurity = SecurityConfig{
	RefreshTokenDays: 30,
	AccessCookie:     "gatearr_token",
	RefreshCookie:    "gatearr_refresh",
}

// newTestEngine returns an engine on a fake clock pinned mid-day so
// freshly issued access tokens have hours of validity.
func newTestEngine(t *testing.T) (*sessiontoken.Engine, *clock.FakeClock) {
	t.Helper()
	secret, err := sessiontoken.ParseSecret("AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8=")
	if err != nil {
		t.Fatalf("ParseSecret: %v", err)
	}
	clk := clock.Fake(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))
	return sessiontoken.NewEngine(secret, testSecurity.RefreshTokenDays, clk), clk
}

// fakeProvider is an in-memory identity.Provider.
type fakeProvider struct {
	users     map[string]identity.Identity // username -> identity
	passwords map[string]string            // username -> password
	byID      map[string]identity.Identity // id -> identity
	err       error                        // forced error for outage tests
}

func newFakeProvider() *fakeProvider {
	admin := identity.Identity{ID: "user-1", DisplayName: "alice", Privileged: true}
	viewer := identity.Identity{ID: "user-2", DisplayName: "bob", Privileged: false}
	return &fakeProvider{
		users:     map[string]identity.Identity{"alice": admin, "bob": viewer},
		passwords: map[string]string{"alice": "opensesame", "bob": "hunter2"},
		byID:      map[string]identity.Identity{"user-1": admin, "user-2": viewer},
	}
}

func (p *fakeProvider) Authenticate(ctx context.Context, username, password string) (identity.Identity, string, error) {
	if p.err != nil {
		return identity.Identity{}, "", p.err
	}
	ident, ok := p.users[username]
	if !ok || p.passwords[username] != password {
		return identity.Identity{}, "", fmt.Errorf("%w: invalid user or password", identity.ErrAuthenticationFailed)
	}
	return ident, "upstream-token", nil
}

func (p *fakeProvider) Fetch(ctx context.Context, id string) (identity.Identity, error) {
	if p.err != nil {
		return identity.Identity{}, p.err
	}
	ident, ok := p.byID[id]
	if !ok {
		return identity.Identity{}, fmt.Errorf("%w: %s", identity.ErrNotFound, id)
	}
	return ident, nil
}

// issueAccess mints a valid access token for tests.
func issueAccess(t *testing.T, engine *sessiontoken.Engine, ident identity.Identity) string {
	t.Helper()
	token, err := engine.IssueAccess(ident)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	return token
}
