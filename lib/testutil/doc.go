// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides small helpers shared by tests: channel
// receive/close with a timeout safety valve so a broken test fails
// instead of hanging the suite.
package testutil
