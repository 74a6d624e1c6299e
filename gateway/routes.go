// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

// Route is one resolved backend: its routing name and pre-parsed base
// URL.
type Route struct {
	Name string
	URL  *url.URL
}

// RouteNotFoundError reports an unknown app name. The message
// enumerates the configured names so an operator can spot a typo or a
// missing URL-Base setting; it never carries anything
// identity-related.
type RouteNotFoundError struct {
	Name  string
	Known []string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("app %q not found. Available apps: [%s]. "+
		"Hint: configure URL Base to \"/%s\" in the app's settings",
		e.Name, strings.Join(e.Known, ", "), e.Name)
}

// RouteTable maps first path segments to backends. Built once from
// configuration, read-only at request time.
//
// Lookup is a linear scan: tables hold a handful of apps, and the
// scan keeps configuration order in the not-found message.
type RouteTable struct {
	routes []Route
	names  []string
}

// NewRouteTable builds the table from validated app configuration.
func NewRouteTable(apps []AppConfig) (*RouteTable, error) {
	table := &RouteTable{
		routes: make([]Route, 0, len(apps)),
		names:  make([]string, 0, len(apps)),
	}
	for _, app := range apps {
		parsed, err := url.Parse(app.URL)
		if err != nil {
			return nil, fmt.Errorf("app %q: invalid url: %w", app.Name, err)
		}
		table.routes = append(table.routes, Route{Name: app.Name, URL: parsed})
		table.names = append(table.names, app.Name)
	}
	return table, nil
}

// Resolve returns the backend for an app name. Matching is exact and
// case-sensitive. A miss returns *RouteNotFoundError.
func (t *RouteTable) Resolve(name string) (*Route, error) {
	for i := range t.routes {
		if t.routes[i].Name == name {
			return &t.routes[i], nil
		}
	}
	return nil, &RouteNotFoundError{Name: name, Known: t.names}
}

// Names returns the configured app names in configuration order.
func (t *RouteTable) Names() []string {
	return t.names
}
