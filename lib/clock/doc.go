// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability.
//
// Token lifetimes in Gatearr are calendar-sensitive (access tokens die
// at the next UTC midnight), so production code takes a Clock instead
// of calling time.Now directly. Production injects Real(); tests
// inject Fake() and advance it across expiry boundaries
// deterministically.
package clock
