// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the JSON body for every non-2xx answer the gateway
// produces itself. Upstream error bodies are relayed untouched.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError sends a structured error payload. The message never
// contains credential material or stack detail — callers pass
// operator-facing text only.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// writeJSON sends a 200 response with a JSON body.
func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}
