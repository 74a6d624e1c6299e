// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// echoUpstream records the last request it saw and replies with a
// fixed body and headers.
type echoUpstream struct {
	server      *httptest.Server
	lastMethod  string
	lastPath    string
	lastQuery   string
	lastBody    []byte
	lastHeaders http.Header
}

func newEchoUpstream(t *testing.T) *echoUpstream {
	t.Helper()
	e := &echoUpstream{}
	e.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.lastMethod = r.Method
		e.lastPath = r.URL.Path
		e.lastQuery = r.URL.RawQuery
		e.lastHeaders = r.Header.Clone()
		e.lastBody, _ = io.ReadAll(r.Body)

		w.Header().Set("X-Api-Key", "upstream-key")
		w.Header().Set("X-Upstream", "echo")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("upstream says hi"))
	}))
	t.Cleanup(e.server.Close)
	return e
}

func (e *echoUpstream) route(t *testing.T, name string) *Route {
	t.Helper()
	parsed, err := url.Parse(e.server.URL)
	if err != nil {
		t.Fatalf("parsing upstream URL: %v", err)
	}
	return &Route{Name: name, URL: parsed}
}

func TestForwardRewritesPath(t *testing.T) {
	upstream := newEchoUpstream(t)
	f := newForwarder(0, discardLogger())

	req := httptest.NewRequest("GET", "/sonarr/api/v3/series?x=1", nil)
	w := httptest.NewRecorder()
	f.forward(w, req, upstream.route(t, "sonarr"))

	if upstream.lastPath != "/api/v3/series" {
		t.Errorf("upstream path = %q, want /api/v3/series", upstream.lastPath)
	}
	if upstream.lastQuery != "x=1" {
		t.Errorf("upstream query = %q, want x=1", upstream.lastQuery)
	}
}

func TestForwardBarePrefixBecomesRoot(t *testing.T) {
	upstream := newEchoUpstream(t)
	f := newForwarder(0, discardLogger())

	req := httptest.NewRequest("GET", "/sonarr", nil)
	w := httptest.NewRecorder()
	f.forward(w, req, upstream.route(t, "sonarr"))

	if upstream.lastPath != "/" {
		t.Errorf("upstream path = %q, want /", upstream.lastPath)
	}
}

func TestForwardRelaysMethodAndBody(t *testing.T) {
	upstream := newEchoUpstream(t)
	f := newForwarder(0, discardLogger())

	payload := []byte(`{"title":"Some Show"}`)
	req := httptest.NewRequest("POST", "/sonarr/api/v3/series", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	f.forward(w, req, upstream.route(t, "sonarr"))

	if upstream.lastMethod != "POST" {
		t.Errorf("upstream method = %q, want POST", upstream.lastMethod)
	}
	if !bytes.Equal(upstream.lastBody, payload) {
		t.Errorf("upstream body = %q, want %q", upstream.lastBody, payload)
	}
}

func TestForwardHeaderFiltering(t *testing.T) {
	upstream := newEchoUpstream(t)
	f := newForwarder(0, discardLogger())

	req := httptest.NewRequest("GET", "/sonarr/ping", nil)
	req.Header.Set("X-Api-Key", "caller-key")
	req.Header.Set("Cookie", "gatearr_token=abc")
	req.Header.Set("Transfer-Encoding", "chunked")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("cOnTeNt-LeNgTh", "999")
	w := httptest.NewRecorder()
	f.forward(w, req, upstream.route(t, "sonarr"))

	if got := upstream.lastHeaders.Get("X-Api-Key"); got != "caller-key" {
		t.Errorf("X-Api-Key = %q, want verbatim copy", got)
	}
	if got := upstream.lastHeaders.Get("Cookie"); got != "gatearr_token=abc" {
		t.Errorf("Cookie = %q, want verbatim copy (documented default)", got)
	}
	for _, name := range []string{"Transfer-Encoding", "Connection"} {
		if got := upstream.lastHeaders.Get(name); got != "" &&
			// The stdlib client regenerates Connection for its own
			// transport; what matters is the caller's value is gone.
			got == req.Header.Get(name) {
			t.Errorf("transport header %s relayed verbatim: %q", name, got)
		}
	}
	if values := upstream.lastHeaders.Values("Content-Length"); len(values) > 1 {
		t.Errorf("caller Content-Length relayed alongside regenerated one: %v", values)
	}
}

func TestForwardRelaysResponse(t *testing.T) {
	upstream := newEchoUpstream(t)
	f := newForwarder(0, discardLogger())

	req := httptest.NewRequest("GET", "/sonarr/ping", nil)
	w := httptest.NewRecorder()
	f.forward(w, req, upstream.route(t, "sonarr"))

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want upstream's 201", w.Code)
	}
	if got := w.Header().Get("X-Api-Key"); got != "upstream-key" {
		t.Errorf("response X-Api-Key = %q, want verbatim copy", got)
	}
	if got := w.Header().Get("X-Upstream"); got != "echo" {
		t.Errorf("response X-Upstream = %q, want verbatim copy", got)
	}
	if w.Body.String() != "upstream says hi" {
		t.Errorf("response body = %q, want upstream body", w.Body.String())
	}
}

func TestForwardUnreachableBackend(t *testing.T) {
	f := newForwarder(0, discardLogger())
	parsed, _ := url.Parse("http://127.0.0.1:1")

	req := httptest.NewRequest("GET", "/sonarr/ping", nil)
	w := httptest.NewRecorder()
	f.forward(w, req, &Route{Name: "sonarr", URL: parsed})

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502 for unreachable backend", w.Code)
	}
}

func TestRewritePath(t *testing.T) {
	cases := []struct {
		path string
		app  string
		want string
	}{
		{"/sonarr/api/v3/series", "sonarr", "/api/v3/series"},
		{"/sonarr/", "sonarr", "/"},
		{"/sonarr", "sonarr", "/"},
		{"/radarr/movie/5", "radarr", "/movie/5"},
	}
	for _, c := range cases {
		if got := rewritePath(c.path, c.app); got != c.want {
			t.Errorf("rewritePath(%q, %q) = %q, want %q", c.path, c.app, got, c.want)
		}
	}
}

func TestShouldSkipHeader(t *testing.T) {
	for _, name := range []string{"Host", "connection", "Transfer-Encoding", "CONTENT-LENGTH"} {
		if !shouldSkipHeader(name) {
			t.Errorf("shouldSkipHeader(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"X-Api-Key", "Cookie", "Authorization", "Accept"} {
		if shouldSkipHeader(name) {
			t.Errorf("shouldSkipHeader(%q) = true, want false", name)
		}
	}
}
