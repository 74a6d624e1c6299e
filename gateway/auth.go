// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gatearr/gatearr/lib/identity"
	"github.com/gatearr/gatearr/lib/sessiontoken"
)

// authedHandler is a request handler that additionally receives the
// authenticated identity. Threading the identity as a parameter keeps
// the auth result explicit instead of smuggling it through context
// values.
type authedHandler func(w http.ResponseWriter, r *http.Request, ident identity.Identity)

// authGate is the per-request interceptor in front of all proxied
// traffic. It extracts a credential, verifies it as an access token,
// and enforces the administrator-only policy.
type authGate struct {
	engine       *sessiontoken.Engine
	accessCookie string
	loginURL     string
	logger       *slog.Logger
}

// wrap turns an authedHandler into an http.HandlerFunc that runs the
// gate first.
func (g *authGate) wrap(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Browser callers get redirects on failure; API callers get
		// structured errors.
		isBrowser := strings.Contains(r.Header.Get("Accept"), "text/html")

		token, location, found := g.extractToken(r)
		if !found {
			g.logger.Debug("no credential presented", "path", r.URL.Path)
			g.rejectUnauthenticated(w, r, isBrowser)
			return
		}

		claims, err := g.engine.Verify(token, sessiontoken.Access)
		if err != nil {
			// Expired, tampered, and wrong-kind tokens are all the
			// same to the caller: unauthenticated. Common after a
			// restart under a random signing secret, hence debug.
			g.logger.Debug("access token rejected",
				"path", r.URL.Path,
				"credential_location", location,
				"error", err,
			)
			g.rejectUnauthenticated(w, r, isBrowser)
			return
		}

		if !claims.Privileged {
			g.logger.Warn("non-administrator denied", "user", claims.DisplayName, "path", r.URL.Path)
			if isBrowser {
				http.Error(w, "Admin access required. Please contact your administrator.", http.StatusForbidden)
				return
			}
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}

		g.logger.Debug("authenticated",
			"user", claims.DisplayName,
			"credential_location", location,
		)
		next(w, r, claims.Identity())
	}
}

// extractToken searches the access cookie first, then the
// Authorization header's Bearer scheme. The returned location names
// where the credential was found, for diagnostics; the value itself is
// never logged.
func (g *authGate) extractToken(r *http.Request) (token, location string, found bool) {
	if cookie, err := r.Cookie(g.accessCookie); err == nil && cookie.Value != "" {
		return cookie.Value, "cookie", true
	}

	authorization := r.Header.Get("Authorization")
	if bearer, ok := strings.CutPrefix(authorization, "Bearer "); ok && bearer != "" {
		return bearer, "bearer", true
	}

	return "", "", false
}

// rejectUnauthenticated short-circuits the request: browsers are sent
// to the login page carrying the originally requested path so login
// can return them there, everything else gets a 401 payload.
func (g *authGate) rejectUnauthenticated(w http.ResponseWriter, r *http.Request, isBrowser bool) {
	if isBrowser {
		redirect := g.loginURL + "?redirect=" + url.QueryEscape(r.URL.Path)
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}
