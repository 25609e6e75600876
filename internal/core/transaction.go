// Package core holds the transaction domain model and the dashboard
// aggregation logic.
//
// Backend records are treated as untrusted input: amounts may arrive as
// numbers, numeric strings, or garbage, and timestamps may be absent or
// malformed. Parsing here is lenient so a single bad record never takes
// down an aggregate view.
package core

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FallbackCategory is used when a record carries no category.
const FallbackCategory = "Other"

// FallbackName is shown when a record carries no name.
const FallbackName = "N/A"

// Validation errors surfaced directly to the user. The texts are part of
// the UI contract, so they stay sentence-cased.
var (
	ErrNameRequired       = errors.New("Transaction name is required")
	ErrAmountNotPositive  = errors.New("Please enter a valid amount greater than 0")
	ErrInvalidTransaction = errors.New("Invalid transaction")
)

// Amount is a monetary value decoded leniently from JSON.
//
// The backend has historically stored prices as numbers and as quoted
// strings, and a handful of legacy records carry values that are not
// numeric at all. Decoding never fails: anything that does not parse as a
// finite non-negative number coerces to zero so the record still shows up
// in lists and counts.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal value as an Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromString parses a user-entered amount. Unlike UnmarshalJSON it
// reports failure instead of coercing, because form input should be
// rejected rather than silently zeroed.
func AmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, ErrAmountNotPositive
	}
	return Amount{Decimal: d}, nil
}

// CoerceAmount normalizes a raw JSON token to a non-negative decimal.
// The second return reports whether the token was usable as-is; callers
// that only need the value can ignore it.
func CoerceAmount(raw []byte) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero, false
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// UnmarshalJSON implements lenient decoding; it never returns an error.
func (a *Amount) UnmarshalJSON(data []byte) error {
	a.Decimal, _ = CoerceAmount(bytes.TrimSpace(data))
	return nil
}

// MarshalJSON encodes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// Transaction mirrors a backend query record. Field names match the wire
// format of the /api/queries endpoints.
type Transaction struct {
	ID       string `json:"_id"`
	Name     string `json:"name,omitempty"`
	Price    Amount `json:"price"`
	IsIncome bool   `json:"isIncome"`
	Category string `json:"category,omitempty"`
	Time     string `json:"time,omitempty"`
}

// DisplayName returns the record name, or FallbackName when empty.
func (t Transaction) DisplayName() string {
	if strings.TrimSpace(t.Name) == "" {
		return FallbackName
	}
	return t.Name
}

// DisplayCategory returns the record category, or FallbackCategory when
// empty.
func (t Transaction) DisplayCategory() string {
	if strings.TrimSpace(t.Category) == "" {
		return FallbackCategory
	}
	return t.Category
}

// Date parses the record timestamp. Records without a usable timestamp
// still count toward totals but are excluded from time-ordered views.
func (t Transaction) Date() (time.Time, error) {
	return ParseTransactionDate(t.Time)
}

// transactionDateLayouts lists accepted timestamp formats, most specific
// first. time.RFC3339 also accepts fractional seconds, which covers the
// millisecond timestamps the backend writes.
var transactionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

// ParseTransactionDate parses a backend timestamp string. It accepts
// RFC 3339 (with or without fractional seconds) and bare dates.
func ParseTransactionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	var lastErr error
	for _, layout := range transactionDateLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// TransactionInput is a user-entered create or update payload.
type TransactionInput struct {
	Name     string
	Price    Amount
	IsIncome bool
	Category string
	Time     string
}

// Validate applies the form rules shared by create and update.
func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if !in.Price.IsPositive() {
		return ErrAmountNotPositive
	}
	return nil
}
