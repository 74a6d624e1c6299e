// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

// Package version exposes build metadata stamped at link time.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/gatearr/gatearr/lib/version.Version=v0.2.0 ..."
var (
	// Version is the semantic version of this build.
	Version = "dev"

	// GitCommit is the short commit SHA the binary was built from.
	GitCommit = "unknown"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Info returns a single-line version string for logs and --version.
func Info() string {
	return fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildTime)
}

// Full returns detailed version information including the Go runtime.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
