package core

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func amt(t *testing.T, s string) Amount {
	t.Helper()
	a, err := AmountFromString(s)
	if err != nil {
		t.Fatalf("AmountFromString(%q): %v", s, err)
	}
	return a
}

func TestComputeStatsTotalsAndBalance(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "1", Name: "Salary", Price: amt(t, "5000"), IsIncome: true, Time: "2026-08-01"},
		{ID: "2", Name: "Rent", Price: amt(t, "1500"), Category: "Housing", Time: "2026-08-02"},
		{ID: "3", Name: "Groceries", Price: amt(t, "250.50"), Category: "Food", Time: "2026-08-05"},
	}
	s := ComputeStats(txs, now)

	if got := s.TotalIncome.String(); got != "5000" {
		t.Errorf("TotalIncome = %s, want 5000", got)
	}
	if got := s.TotalExpenses.String(); got != "1750.5" {
		t.Errorf("TotalExpenses = %s, want 1750.5", got)
	}
	if got := s.Balance.String(); got != "3249.5" {
		t.Errorf("Balance = %s, want 3249.5", got)
	}
	if !s.Balance.Equal(s.TotalIncome.Sub(s.TotalExpenses)) {
		t.Error("balance identity violated")
	}
}

func TestComputeStatsCoercedAndUncategorized(t *testing.T) {
	// A record with an unparseable price still lands in its category
	// bucket, contributing zero. Missing categories fold into Other.
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "1", Name: "Broken", Category: "Misc"}, // price coerced to 0
		{ID: "2", Name: "Snack", Price: amt(t, "5")},
		{ID: "3", Name: "Taxi", Price: amt(t, "12")},
	}
	s := ComputeStats(txs, now)

	if got := s.TotalExpenses.String(); got != "17" {
		t.Errorf("TotalExpenses = %s, want 17", got)
	}
	want := []string{"Misc", "Other"}
	var cats []string
	for _, c := range s.CategoryTotals {
		cats = append(cats, c.Category)
	}
	if !reflect.DeepEqual(cats, want) {
		t.Errorf("categories = %v, want %v", cats, want)
	}
	if !s.CategoryTotals[0].Total.IsZero() {
		t.Errorf("Misc total = %s, want 0", s.CategoryTotals[0].Total)
	}
	if got := s.CategoryTotals[1].Total.String(); got != "17" {
		t.Errorf("Other total = %s, want 17", got)
	}
}

func TestComputeStatsCategorySumEqualsExpenses(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "1", Price: amt(t, "10"), Category: "A"},
		{ID: "2", Price: amt(t, "20"), Category: "B"},
		{ID: "3", Price: amt(t, "30"), Category: "A"},
		{ID: "4", Price: amt(t, "99"), IsIncome: true},
	}
	s := ComputeStats(txs, now)
	sum := decimal.Zero
	for _, c := range s.CategoryTotals {
		sum = sum.Add(c.Total)
	}
	if !sum.Equal(s.TotalExpenses) {
		t.Errorf("category totals sum to %s, want %s", sum, s.TotalExpenses)
	}
	if len(s.CategoryTotals) != 2 {
		t.Errorf("got %d categories, want 2", len(s.CategoryTotals))
	}
	// Income must never grow a category bucket.
	for _, c := range s.CategoryTotals {
		if c.Category == FallbackCategory && c.Total.Equal(amt(t, "99").Decimal) {
			t.Error("income leaked into category totals")
		}
	}
}

func TestRecentOrderingAndLimit(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "old", Price: amt(t, "1"), Time: "2026-07-01"},
		{ID: "undated", Price: amt(t, "1")},
		{ID: "a", Price: amt(t, "1"), Time: "2026-08-10T09:00:00Z"},
		{ID: "tie1", Price: amt(t, "1"), Time: "2026-08-15"},
		{ID: "tie2", Price: amt(t, "1"), Time: "2026-08-15"},
		{ID: "newest", Price: amt(t, "1"), Time: "2026-08-19"},
		{ID: "b", Price: amt(t, "1"), Time: "2026-08-12"},
	}
	s := ComputeStats(txs, now)

	var ids []string
	for _, tx := range s.Recent {
		ids = append(ids, tx.ID)
	}
	// Newest first, ties in input order, undated excluded, capped at 5.
	want := []string{"newest", "tie1", "tie2", "b", "a"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("recent = %v, want %v", ids, want)
	}
}

func TestRecentFewerThanLimit(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "1", Price: amt(t, "1"), Time: "2026-08-10"},
		{ID: "2", Price: amt(t, "1")},
	}
	s := ComputeStats(txs, now)
	if len(s.Recent) != 1 {
		t.Fatalf("recent length = %d, want 1", len(s.Recent))
	}
	if s.Recent[0].ID != "1" {
		t.Errorf("recent[0] = %s, want 1", s.Recent[0].ID)
	}
}

func TestDailySeriesSeedingAndWindow(t *testing.T) {
	now := time.Date(2026, 8, 10, 23, 59, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "1", Price: amt(t, "30"), Time: "2026-08-03"},
		{ID: "2", Price: amt(t, "100"), IsIncome: true, Time: "2026-08-03T08:00:00Z"},
		{ID: "3", Price: amt(t, "5"), Time: "2026-08-10"},
		{ID: "lastmonth", Price: amt(t, "999"), Time: "2026-07-10"},
		{ID: "future", Price: amt(t, "888"), Time: "2026-08-25"},
		{ID: "undated", Price: amt(t, "777")},
	}
	s := ComputeStats(txs, now)

	if len(s.Daily) != 10 {
		t.Fatalf("daily length = %d, want 10", len(s.Daily))
	}
	if s.Daily[0].Date != "2026-08-01" || s.Daily[0].Day != 1 {
		t.Errorf("daily[0] = %+v, want day 1 of 2026-08", s.Daily[0])
	}
	d3 := s.Daily[2]
	if d3.Date != "2026-08-03" {
		t.Fatalf("daily[2].Date = %s, want 2026-08-03", d3.Date)
	}
	if got := d3.Expense.String(); got != "30" {
		t.Errorf("day 3 expense = %s, want 30", got)
	}
	if got := d3.Income.String(); got != "100" {
		t.Errorf("day 3 income = %s, want 100", got)
	}
	if got := s.Daily[9].Expense.String(); got != "5" {
		t.Errorf("day 10 expense = %s, want 5", got)
	}
	// Days without activity carry explicit zeros.
	if !s.Daily[4].Income.IsZero() || !s.Daily[4].Expense.IsZero() {
		t.Errorf("day 5 not zero-seeded: %+v", s.Daily[4])
	}
	// Out-of-window records must not leak into any bucket.
	for _, d := range s.Daily {
		if d.Expense.Equal(amt(t, "999").Decimal) || d.Expense.Equal(amt(t, "888").Decimal) {
			t.Errorf("out-of-window record leaked into %s", d.Date)
		}
	}
}

func TestComputeStatsEmptyAndPure(t *testing.T) {
	now := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	s := ComputeStats(nil, now)
	if !s.TotalIncome.IsZero() || !s.TotalExpenses.IsZero() || !s.Balance.IsZero() {
		t.Errorf("empty input produced non-zero totals: %+v", s)
	}
	if len(s.CategoryTotals) != 0 || len(s.Recent) != 0 {
		t.Errorf("empty input produced non-empty slices: %+v", s)
	}
	if len(s.Daily) != 2 {
		t.Errorf("daily length = %d, want 2", len(s.Daily))
	}

	txs := []Transaction{
		{ID: "1", Price: amt(t, "10"), Category: "A", Time: "2026-08-01"},
		{ID: "2", Price: amt(t, "20"), IsIncome: true, Time: "2026-08-01"},
	}
	snapshot := make([]Transaction, len(txs))
	copy(snapshot, txs)

	first := ComputeStats(txs, now)
	second := ComputeStats(txs, now)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated aggregation over same input diverged")
	}
	if !reflect.DeepEqual(txs, snapshot) {
		t.Error("aggregation mutated its input")
	}
}

func TestComputeStatsWarnsOnUnparseableDate(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "bad-date", Name: "Mystery", Price: amt(t, "42"), Category: "Misc", Time: "not-a-date"},
		{ID: "ok", Name: "Salary", Price: amt(t, "100"), IsIncome: true, Time: "2026-08-01"},
	}
	s := ComputeStats(txs, now)

	out := buf.String()
	if !strings.Contains(out, "bad-date") || !strings.Contains(out, "time-based views") {
		t.Errorf("expected a logged warning naming the skipped record, got: %q", out)
	}
	if got := s.TotalExpenses.String(); got != "42" {
		t.Errorf("TotalExpenses = %s, want 42; the unparseable record must still count", got)
	}
	if len(s.Recent) != 1 || s.Recent[0].ID != "ok" {
		t.Errorf("Recent = %+v, want only the dated record", s.Recent)
	}
}

func TestSortNewestFirst(t *testing.T) {
	txs := []Transaction{
		{ID: "undated"},
		{ID: "mid", Time: "2026-08-10"},
		{ID: "new", Time: "2026-08-15"},
		{ID: "old", Time: "2026-08-01"},
	}
	got := SortNewestFirst(txs)
	var ids []string
	for _, tx := range got {
		ids = append(ids, tx.ID)
	}
	want := []string{"new", "mid", "old", "undated"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}
	if txs[0].ID != "undated" {
		t.Error("SortNewestFirst mutated its input")
	}
}
