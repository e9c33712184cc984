package server

import (
	"encoding/json"
	"net/http"
)

const (
	codeInvalidArgs = "INVALID_ARGS"
	codeNotFound    = "NOT_FOUND"
	codeUpstream    = "UPSTREAM_ERROR"
	codeInternal    = "INTERNAL_ERROR"
)

type meta struct {
	SnapshotID string `json:"snapshot_id"`
	LoadedAt   string `json:"loaded_at"`
	Total      int    `json:"total,omitempty"`
	Returned   int    `json:"returned,omitempty"`
}

type successEnvelope struct {
	Data any   `json:"data"`
	Meta *meta `json:"meta,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, data any, m *meta) {
	writeJSON(w, http.StatusOK, successEnvelope{Data: data, Meta: m})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: msg}})
}
