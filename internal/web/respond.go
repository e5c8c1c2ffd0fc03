// Package web provides shared HTTP response helpers for module
// handlers.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jperaltad/tradesim/internal/domain"
)

// WriteJSON writes v as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // Ignore encode error - already committed response
}

// WriteError maps a domain error to an HTTP status and writes it as a
// JSON error body
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientHoldings),
		errors.Is(err, domain.ErrInvalidQuantity):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrBusy):
		status = http.StatusConflict
	}

	WriteJSON(w, status, map[string]string{"error": err.Error()})
}
