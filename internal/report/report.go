// Package report builds downloadable expense reports (PDF and XLSX)
// from a transaction snapshot and a user-selected date range.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finman/internal/core"
)

// Validation errors shown verbatim in the download dialog.
var (
	ErrMissingDates   = errors.New("Please select both start and end dates")
	ErrStartAfterEnd  = errors.New("Start date must be before end date")
	ErrNoTransactions = errors.New("No transactions found in the selected date range")
)

// rangeLayout is the wire format of the date pickers.
const rangeLayout = "2006-01-02"

// Range is an inclusive calendar-date interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange validates the raw start/end form values. Blank or
// unparseable dates count as missing; an inverted interval is its own
// error. Start equal to end is a valid one-day range.
func ParseRange(start, end string) (Range, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return Range{}, ErrMissingDates
	}
	s, err := time.Parse(rangeLayout, start)
	if err != nil {
		return Range{}, ErrMissingDates
	}
	e, err := time.Parse(rangeLayout, end)
	if err != nil {
		return Range{}, ErrMissingDates
	}
	if s.After(e) {
		return Range{}, ErrStartAfterEnd
	}
	return Range{Start: s, End: e}, nil
}

// Contains reports whether ts falls inside the range, comparing by
// calendar date so an end-date transaction with a time-of-day still
// counts.
func (r Range) Contains(ts time.Time) bool {
	d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(r.Start) && !d.After(r.End)
}

// FilterByRange keeps the transactions dated inside r, preserving input
// order. Records without a parseable timestamp are skipped.
func FilterByRange(txs []core.Transaction, r Range) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		ts, err := t.Date()
		if err != nil {
			continue
		}
		if r.Contains(ts) {
			out = append(out, t)
		}
	}
	return out
}

// Summary holds the headline figures of a filtered report.
type Summary struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
	Count         int
}

// Summarize computes report totals independently of any dashboard
// aggregation, so a report over a sub-range never inherits stale
// figures.
func Summarize(txs []core.Transaction) Summary {
	s := Summary{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		Count:         len(txs),
	}
	for _, t := range txs {
		if t.IsIncome {
			s.TotalIncome = s.TotalIncome.Add(t.Price.Decimal)
		} else {
			s.TotalExpenses = s.TotalExpenses.Add(t.Price.Decimal)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}

// Filename returns the canonical PDF attachment name for a range.
func Filename(r Range) string {
	return fmt.Sprintf("FinMan_Report_%s_to_%s.pdf",
		r.Start.Format(rangeLayout), r.End.Format(rangeLayout))
}

// XLSXFilename returns the canonical XLSX attachment name for a range.
func XLSXFilename(r Range) string {
	return fmt.Sprintf("FinMan_Report_%s_to_%s.xlsx",
		r.Start.Format(rangeLayout), r.End.Format(rangeLayout))
}

// FormatMoney renders an amount for report display: rupee sign,
// thousands separators, two decimals when the amount has a fractional
// part.
func FormatMoney(d decimal.Decimal) string {
	neg := d.IsNegative()
	abs := d.Abs()

	s := abs.StringFixed(2)
	s = strings.TrimSuffix(s, ".00")
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteRune('₹')
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// SignedMoney renders a transaction amount with its flow direction.
func SignedMoney(t core.Transaction) string {
	sign := "-"
	if t.IsIncome {
		sign = "+"
	}
	return sign + FormatMoney(t.Price.Decimal)
}
