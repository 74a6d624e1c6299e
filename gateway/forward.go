// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// skipHeaders are transport headers that must not be relayed in either
// direction: the sending layer regenerates them for the new
// connection. Everything else, cookies and authorization included,
// is forwarded verbatim so the backend sees the caller's context
// unchanged.
var skipHeaders = map[string]bool{
	"host":              true,
	"connection":        true,
	"transfer-encoding": true,
	"content-length":    true,
}

func shouldSkipHeader(name string) bool {
	return skipHeaders[strings.ToLower(name)]
}

// forwarder relays one HTTP exchange to a resolved backend. The
// http.Client pools connections and is shared by all request
// goroutines.
type forwarder struct {
	client *http.Client
	logger *slog.Logger
}

// newForwarder builds the shared outbound client. timeout bounds each
// upstream request end to end; zero disables it.
func newForwarder(timeout time.Duration, logger *slog.Logger) *forwarder {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &forwarder{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			// Redirects are the caller's business: relay the 3xx
			// rather than chasing it.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// forward relays r to the backend named by route. The leading
// "/<app>" segment is stripped from the path (backends are mounted at
// their own root for plain HTTP); the query string passes through
// unchanged.
func (f *forwarder) forward(w http.ResponseWriter, r *http.Request, route *Route) {
	startTime := time.Now()

	targetURL := route.URL.String() + rewritePath(r.URL.Path, route.Name)
	if r.URL.RawQuery != "" {
		targetURL += "?" + r.URL.RawQuery
	}

	// The body is buffered in full before dispatch: a single
	// byte-for-byte copy, no streaming.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		f.logger.Error("reading request body", "app", route.Name, "error", err)
		writeError(w, http.StatusBadGateway, "failed to read request body")
		return
	}

	upstreamReq, err := http.NewRequestWithContext(r.Context(), r.Method, targetURL, bytes.NewReader(body))
	if err != nil {
		f.logger.Error("building upstream request", "app", route.Name, "target", targetURL, "error", err)
		writeError(w, http.StatusBadGateway, "failed to build upstream request")
		return
	}

	for name, values := range r.Header {
		if shouldSkipHeader(name) {
			continue
		}
		for _, value := range values {
			upstreamReq.Header.Add(name, value)
		}
	}

	f.logger.Debug("proxying request",
		"app", route.Name,
		"method", r.Method,
		"target", targetURL,
	)

	resp, err := f.client.Do(upstreamReq)
	if err != nil {
		f.logger.Error("upstream request failed",
			"app", route.Name,
			"method", r.Method,
			"target", targetURL,
			"error", err,
		)
		writeError(w, http.StatusBadGateway, "failed to proxy request to "+route.Name)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logger.Error("reading upstream response body", "app", route.Name, "error", err)
		writeError(w, http.StatusBadGateway, "failed to read upstream response")
		return
	}

	for name, values := range resp.Header {
		if shouldSkipHeader(name) {
			continue
		}
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.WriteHeader(resp.StatusCode)
	w.Write(respBody)

	f.logger.Debug("proxy complete",
		"app", route.Name,
		"method", r.Method,
		"status", resp.StatusCode,
		"bytes", len(respBody),
		"duration", time.Since(startTime),
	)
}

// rewritePath strips the leading "/<app>" segment. An empty remainder
// becomes "/".
func rewritePath(path, app string) string {
	rewritten := strings.TrimPrefix(path, "/"+app)
	if rewritten == "" {
		return "/"
	}
	return rewritten
}
