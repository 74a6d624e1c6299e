// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock provides the current time. Every production function that
// would call time.Now should accept a Clock parameter (or be a method
// on a struct with a Clock field) instead.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
