package core

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RecentLimit is how many transactions the recent-activity view shows.
const RecentLimit = 5

// CategoryTotal is an expense total aggregated by category name.
// Order of appearance in the source list is preserved.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// DayStat holds income and expense totals for one calendar day of the
// current month.
type DayStat struct {
	// Date is the canonical YYYY-MM-DD key for the day.
	Date string
	// Day is the day of month, 1-based.
	Day     int
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Stats is the aggregate view a dashboard renders from one transaction
// list. It is a pure projection: computing it never mutates the input.
type Stats struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal

	// CategoryTotals covers expenses only, in first-seen order.
	CategoryTotals []CategoryTotal

	// Recent holds up to RecentLimit transactions with a parseable
	// timestamp, newest first. Ties keep their input order.
	Recent []Transaction

	// Daily covers day 1 through the current day of now's month.
	// Days without activity carry zero totals.
	Daily []DayStat
}

// ComputeStats aggregates a transaction list into dashboard statistics.
//
// Every record counts toward the totals, even when its amount coerced to
// zero or its timestamp is unusable. Time-based views (Recent, Daily)
// only consider records whose timestamp parses. now anchors the
// current-month window for the daily series.
func ComputeStats(txs []Transaction, now time.Time) Stats {
	s := Stats{
		TotalIncome:    decimal.Zero,
		TotalExpenses:  decimal.Zero,
		CategoryTotals: []CategoryTotal{},
		Recent:         []Transaction{},
	}

	catIdx := make(map[string]int)
	for _, t := range txs {
		// Records with unusable timestamps still count toward totals
		// but drop out of the time-based views below.
		if _, err := t.Date(); err != nil {
			slog.Warn("Skipping transaction with unparseable date in time-based views",
				"transaction_id", t.ID, "time", t.Time, "error", err)
		}
		amount := t.Price.Decimal
		if t.IsIncome {
			s.TotalIncome = s.TotalIncome.Add(amount)
			continue
		}
		s.TotalExpenses = s.TotalExpenses.Add(amount)
		cat := t.DisplayCategory()
		i, ok := catIdx[cat]
		if !ok {
			i = len(s.CategoryTotals)
			catIdx[cat] = i
			s.CategoryTotals = append(s.CategoryTotals, CategoryTotal{Category: cat})
		}
		s.CategoryTotals[i].Total = s.CategoryTotals[i].Total.Add(amount)
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)

	s.Recent = recentTransactions(txs, RecentLimit)
	s.Daily = dailySeries(txs, now)
	return s
}

// recentTransactions returns up to limit dated transactions, newest
// first. The sort is stable so records sharing a timestamp keep their
// backend order.
func recentTransactions(txs []Transaction, limit int) []Transaction {
	type dated struct {
		tx Transaction
		ts time.Time
	}
	withTime := make([]dated, 0, len(txs))
	for _, t := range txs {
		ts, err := t.Date()
		if err != nil {
			continue
		}
		withTime = append(withTime, dated{tx: t, ts: ts})
	}
	sort.SliceStable(withTime, func(i, j int) bool {
		return withTime[i].ts.After(withTime[j].ts)
	})
	if len(withTime) > limit {
		withTime = withTime[:limit]
	}
	recent := make([]Transaction, len(withTime))
	for i, d := range withTime {
		recent[i] = d.tx
	}
	return recent
}

// dailySeries builds the zero-seeded per-day series for now's month,
// from day 1 through now's day. Future days of the month are excluded
// even when records claim them.
func dailySeries(txs []Transaction, now time.Time) []DayStat {
	year, month, today := now.Date()
	days := make([]DayStat, today)
	for d := 1; d <= today; d++ {
		days[d-1] = DayStat{
			Date:    fmt.Sprintf("%04d-%02d-%02d", year, int(month), d),
			Day:     d,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
	}
	for _, t := range txs {
		ts, err := t.Date()
		if err != nil {
			continue
		}
		y, m, d := ts.Date()
		if y != year || m != month || d > today {
			continue
		}
		if t.IsIncome {
			days[d-1].Income = days[d-1].Income.Add(t.Price.Decimal)
		} else {
			days[d-1].Expense = days[d-1].Expense.Add(t.Price.Decimal)
		}
	}
	return days
}

// SortNewestFirst returns a copy of txs ordered for list views: dated
// records newest first, then records without a usable timestamp in their
// original order.
func SortNewestFirst(txs []Transaction) []Transaction {
	dated := make([]Transaction, 0, len(txs))
	undated := make([]Transaction, 0)
	for _, t := range txs {
		if _, err := t.Date(); err != nil {
			undated = append(undated, t)
			continue
		}
		dated = append(dated, t)
	}
	sort.SliceStable(dated, func(i, j int) bool {
		ti, _ := dated[i].Date()
		tj, _ := dated[j].Date()
		return ti.After(tj)
	})
	return append(dated, undated...)
}
