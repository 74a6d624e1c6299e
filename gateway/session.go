// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"unicode"

	"github.com/gatearr/gatearr/lib/identity"
	"github.com/gatearr/gatearr/lib/sessiontoken"
)

// Credential length bounds. Generous enough for any real account,
// tight enough to keep pathological inputs away from the identity
// provider.
const (
	maxUsernameLength = 255
	maxPasswordLength = 1024
)

// sessionHandler implements the session lifecycle endpoints: login,
// refresh, logout, health.
type sessionHandler struct {
	engine   *sessiontoken.Engine
	provider identity.Provider
	security SecurityConfig
	logger   *slog.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// handleLogin authenticates against the identity provider and issues
// both session cookies. Rate limiting is an external middleware
// concern.
func (s *sessionHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validateCredentials(req.Username, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ident, _, err := s.provider.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrAuthenticationFailed) {
			s.logger.Info("login rejected by identity provider", "username", req.Username)
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		s.logger.Error("identity provider unavailable", "error", err)
		writeError(w, http.StatusBadGateway, "identity provider unavailable")
		return
	}

	if !ident.Privileged {
		s.logger.Warn("login denied: not an administrator", "username", ident.DisplayName)
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}

	accessToken, err := s.engine.IssueAccess(ident)
	if err != nil {
		s.logger.Error("issuing access token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	refreshToken, err := s.engine.IssueRefresh(ident)
	if err != nil {
		s.logger.Error("issuing refresh token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.setAccessCookie(w, accessToken)
	http.SetCookie(w, s.sessionCookie(
		s.security.RefreshCookie,
		refreshToken,
		s.security.RefreshTokenDays*24*60*60,
	))

	s.logger.Info("login succeeded", "username", ident.DisplayName)
	writeJSON(w, loginResponse{Success: true, Username: ident.DisplayName, IsAdmin: ident.Privileged})
}

// handleRefresh exchanges a valid refresh cookie for a fresh access
// cookie. The identity is re-fetched from the provider so a revoked
// administrator loses access here, not at refresh-token expiry.
func (s *sessionHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(s.security.RefreshCookie)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	claims, err := s.engine.Verify(cookie.Value, sessiontoken.Refresh)
	if err != nil {
		s.logger.Debug("refresh token rejected", "error", err)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ident, err := s.provider.Fetch(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		s.logger.Error("identity provider unavailable during refresh", "error", err)
		writeError(w, http.StatusBadGateway, "identity provider unavailable")
		return
	}

	if !ident.Privileged {
		s.logger.Warn("refresh denied: no longer an administrator", "username", ident.DisplayName)
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}

	accessToken, err := s.engine.IssueAccess(ident)
	if err != nil {
		s.logger.Error("issuing access token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.setAccessCookie(w, accessToken)
	writeJSON(w, loginResponse{Success: true, Username: ident.DisplayName, IsAdmin: ident.Privileged})
}

// handleLogout clears both session cookies. Tokens are stateless, so
// "logout" is purely a cookie operation; an attacker holding a copied
// token keeps it until expiry.
func (s *sessionHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.sessionCookie(s.security.AccessCookie, "", -1))
	http.SetCookie(w, s.sessionCookie(s.security.RefreshCookie, "", -1))
	writeJSON(w, map[string]bool{"success": true})
}

// handleHealth is the liveness endpoint.
func (s *sessionHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// setAccessCookie sets the access cookie with Max-Age matching the
// token's end-of-UTC-day expiry.
func (s *sessionHandler) setAccessCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, s.sessionCookie(
		s.security.AccessCookie,
		token,
		int(s.engine.AccessTTL().Seconds()),
	))
}

// sessionCookie builds a session cookie with the gateway's standard
// attributes. maxAge -1 deletes the cookie.
func (s *sessionHandler) sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.security.CookiesSecure(),
		SameSite: http.SameSiteLaxMode,
	}
}

// validateCredentials bounds-checks login input before it reaches the
// identity provider.
func validateCredentials(username, password string) error {
	if username == "" {
		return fmt.Errorf("username must not be empty")
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", maxUsernameLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLength)
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return fmt.Errorf("username must not contain control characters")
		}
	}
	return nil
}
