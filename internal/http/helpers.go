package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"finman/internal/report"
	"finman/internal/store"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// writeJSON marshals v to the response with the right content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForCategory maps a gateway error category to the HTTP status the
// client sees.
func statusForCategory(c store.Category) int {
	switch c {
	case store.CategoryValidation:
		return http.StatusUnprocessableEntity
	case store.CategoryAuth:
		return http.StatusUnauthorized
	case store.CategoryForbidden:
		return http.StatusForbidden
	case store.CategoryNotFound:
		return http.StatusNotFound
	case store.CategoryNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// gatewayError maps any error from the store layer to a status code and
// a user-facing message. Unknown errors fall back to the generic server
// message so backend internals never leak into the page.
func gatewayError(err error) (int, string) {
	var apiErr *store.APIError
	if errors.As(err, &apiErr) {
		return statusForCategory(apiErr.Category), apiErr.Message
	}
	return http.StatusInternalServerError, "Server error. Please try again later."
}

// rangeError maps report range validation errors to a status code and
// message. Only the three known sentinels are user input errors.
func rangeError(err error) (int, string) {
	switch {
	case errors.Is(err, report.ErrMissingDates),
		errors.Is(err, report.ErrStartAfterEnd),
		errors.Is(err, report.ErrNoTransactions):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "Error generating PDF. Please try again."
	}
}

// formatRupees renders a decimal amount for the UI with the report's
// money formatting.
func formatRupees(d decimal.Decimal) string {
	return report.FormatMoney(d)
}
