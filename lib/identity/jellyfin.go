// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// mediaBrowserAuth is the client identification header Jellyfin
// requires on authentication requests.
const mediaBrowserAuth = `MediaBrowser Client="Gatearr", Device="Gatearr", DeviceId="gatearr-1", Version="0.2.0"`

// JellyfinClient authenticates users against a Jellyfin server.
type JellyfinClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// JellyfinConfig holds configuration for creating a JellyfinClient.
type JellyfinConfig struct {
	// URL is the Jellyfin base URL (e.g., "http://jellyfin:8096").
	URL string

	// APIKey is a Jellyfin API key, used for user lookups during
	// token refresh. Login itself uses the user's own credentials.
	APIKey string

	// Timeout bounds each request to Jellyfin. Zero means no timeout.
	Timeout time.Duration
}

// NewJellyfinClient creates a Provider backed by a Jellyfin server.
func NewJellyfinClient(config JellyfinConfig) (*JellyfinClient, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("jellyfin URL is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("jellyfin API key is required")
	}

	return &JellyfinClient{
		baseURL: strings.TrimRight(config.URL, "/"),
		apiKey:  config.APIKey,
		client:  &http.Client{Timeout: config.Timeout},
	}, nil
}

// Jellyfin wire types. Field names follow Jellyfin's PascalCase JSON.
type jellyfinAuthRequest struct {
	Username string `json:"Username"`
	Pw       string `json:"Pw"`
}

type jellyfinAuthResponse struct {
	User        jellyfinUser `json:"User"`
	AccessToken string       `json:"AccessToken"`
}

type jellyfinUser struct {
	ID     string `json:"Id"`
	Name   string `json:"Name"`
	Policy struct {
		IsAdministrator bool `json:"IsAdministrator"`
	} `json:"Policy"`
}

func (u jellyfinUser) identity() Identity {
	return Identity{
		ID:          u.ID,
		DisplayName: u.Name,
		Privileged:  u.Policy.IsAdministrator,
	}
}

// Authenticate verifies credentials via POST /Users/AuthenticateByName.
func (c *JellyfinClient) Authenticate(ctx context.Context, username, password string) (Identity, string, error) {
	body, err := json.Marshal(jellyfinAuthRequest{Username: username, Pw: password})
	if err != nil {
		return Identity{}, "", fmt.Errorf("encoding authentication request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/Users/AuthenticateByName", bytes.NewReader(body))
	if err != nil {
		return Identity{}, "", fmt.Errorf("building authentication request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Emby-Authorization", mediaBrowserAuth)

	resp, err := c.client.Do(req)
	if err != nil {
		return Identity{}, "", fmt.Errorf("jellyfin authentication request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Body is included for operator diagnostics; Jellyfin does
		// not echo the password back.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Identity{}, "", fmt.Errorf("%w: jellyfin returned status %d: %s",
			ErrAuthenticationFailed, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var auth jellyfinAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return Identity{}, "", fmt.Errorf("decoding jellyfin authentication response: %w", err)
	}

	return auth.User.identity(), auth.AccessToken, nil
}

// Fetch looks up a user via GET /Users/{id} with the API key.
func (c *JellyfinClient) Fetch(ctx context.Context, id string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/Users/"+id, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("building user lookup request: %w", err)
	}
	req.Header.Set("X-Emby-Authorization", mediaBrowserAuth)
	req.Header.Set("X-MediaBrowser-Token", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("jellyfin user lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Identity{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("jellyfin user lookup returned status %d", resp.StatusCode)
	}

	var user jellyfinUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Identity{}, fmt.Errorf("decoding jellyfin user: %w", err)
	}

	return user.identity(), nil
}
