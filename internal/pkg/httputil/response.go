package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the standard error envelope for all API errors. The
// Error field carries a short machine-readable code (e.g. "not_found",
// "invalid_checkDocumentId") matching what clients key on.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code. The data is
// serialized and Content-Type is set automatically. If encoding fails,
// the error is logged; headers are already gone at that point.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[httputil] JSON encode error: %v", err)
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response with the given data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// Error writes a JSON error response with the given code string.
func Error(w http.ResponseWriter, status int, code string) {
	JSON(w, status, ErrorResponse{Error: code})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, code string) {
	Error(w, http.StatusBadRequest, code)
}

// Unauthorized writes a 401 error.
func Unauthorized(w http.ResponseWriter, code string) {
	Error(w, http.StatusUnauthorized, code)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, code string) {
	Error(w, http.StatusNotFound, code)
}

// InternalError writes a 500 error. Logs the real error but returns a
// generic code to the client (never leak internals).
func InternalError(w http.ResponseWriter, code string, err error) {
	log.Printf("[httputil] %s: %v", code, err)
	Error(w, http.StatusInternalServerError, code)
}

// Decode reads JSON from the request body into dst.
// Returns false and writes a 400 response if parsing fails.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid_json")
		return false
	}
	return true
}
