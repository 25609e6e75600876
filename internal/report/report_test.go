package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finman/internal/core"
)

func amt(t *testing.T, s string) core.Amount {
	t.Helper()
	a, err := core.AmountFromString(s)
	if err != nil {
		t.Fatalf("AmountFromString(%q): %v", s, err)
	}
	return a
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr error
	}{
		{"valid", "2026-08-01", "2026-08-31", nil},
		{"same day", "2026-08-15", "2026-08-15", nil},
		{"missing start", "", "2026-08-31", ErrMissingDates},
		{"missing end", "2026-08-01", "", ErrMissingDates},
		{"both missing", "", "", ErrMissingDates},
		{"garbage start", "not-a-date", "2026-08-31", ErrMissingDates},
		{"inverted", "2026-08-31", "2026-08-01", ErrStartAfterEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.start, tt.end)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseRange(%q, %q) error = %v, want %v", tt.start, tt.end, err, tt.wantErr)
			}
			if err == nil && r.Start.After(r.End) {
				t.Error("parsed range is inverted")
			}
		})
	}
}

func TestFilterByRangeInclusive(t *testing.T) {
	r, err := ParseRange("2026-08-10", "2026-08-20")
	if err != nil {
		t.Fatal(err)
	}
	txs := []core.Transaction{
		{ID: "before", Time: "2026-08-09"},
		{ID: "start", Time: "2026-08-10"},
		{ID: "mid", Time: "2026-08-15T14:30:00Z"},
		{ID: "end-with-time", Time: "2026-08-20T23:00:00Z"},
		{ID: "after", Time: "2026-08-21"},
		{ID: "undated"},
	}
	got := FilterByRange(txs, r)
	var ids []string
	for _, tx := range got {
		ids = append(ids, tx.ID)
	}
	want := []string{"start", "mid", "end-with-time"}
	if len(ids) != len(want) {
		t.Fatalf("filtered ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("filtered[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	txs := []core.Transaction{
		{ID: "1", Price: amt(t, "5000"), IsIncome: true},
		{ID: "2", Price: amt(t, "1500")},
		{ID: "3", Price: amt(t, "250.50")},
	}
	s := Summarize(txs)
	if got := s.TotalIncome.String(); got != "5000" {
		t.Errorf("TotalIncome = %s", got)
	}
	if got := s.TotalExpenses.String(); got != "1750.5" {
		t.Errorf("TotalExpenses = %s", got)
	}
	if got := s.Balance.String(); got != "3249.5" {
		t.Errorf("Balance = %s", got)
	}
	if s.Count != 3 {
		t.Errorf("Count = %d", s.Count)
	}
}

func TestFilenames(t *testing.T) {
	r, _ := ParseRange("2026-08-01", "2026-08-31")
	if got := Filename(r); got != "FinMan_Report_2026-08-01_to_2026-08-31.pdf" {
		t.Errorf("Filename = %q", got)
	}
	if got := XLSXFilename(r); got != "FinMan_Report_2026-08-01_to_2026-08-31.xlsx" {
		t.Errorf("XLSXFilename = %q", got)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₹0"},
		{"5", "₹5"},
		{"1234", "₹1,234"},
		{"1234567", "₹1,234,567"},
		{"1234.5", "₹1,234.50"},
		{"250.50", "₹250.50"},
		{"-500", "-₹500"},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.in, err)
		}
		if got := FormatMoney(d); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateRejectsEmptyRange(t *testing.T) {
	g := NewGenerator("testdata")
	r, _ := ParseRange("2026-01-01", "2026-01-31")
	txs := []core.Transaction{{ID: "1", Price: amt(t, "10"), Time: "2026-08-15"}}

	var buf bytes.Buffer
	if err := g.Generate(txs, r, &buf); !errors.Is(err, ErrNoTransactions) {
		t.Errorf("Generate = %v, want ErrNoTransactions", err)
	}
	if err := g.GenerateXLSX(txs, r, &buf); !errors.Is(err, ErrNoTransactions) {
		t.Errorf("GenerateXLSX = %v, want ErrNoTransactions", err)
	}
}

func TestGenerateMissingFontFails(t *testing.T) {
	g := NewGenerator(t.TempDir()) // no TTFs there
	r, _ := ParseRange("2026-08-01", "2026-08-31")
	txs := []core.Transaction{{ID: "1", Price: amt(t, "10"), Time: "2026-08-15"}}

	var buf bytes.Buffer
	if err := g.Generate(txs, r, &buf); err == nil {
		t.Error("expected font load error")
	}
}

func TestGeneratePDF(t *testing.T) {
	fontDir := os.Getenv("REPORT_FONT_DIR")
	if fontDir == "" {
		fontDir = "/usr/share/fonts/truetype/dejavu"
	}
	if _, err := os.Stat(filepath.Join(fontDir, fontRegularFile)); err != nil {
		t.Skipf("report fonts not available in %s", fontDir)
	}

	g := NewGenerator(fontDir)
	g.now = func() time.Time { return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC) }
	r, _ := ParseRange("2026-08-01", "2026-08-31")
	txs := []core.Transaction{
		{ID: "1", Name: "Salary", Price: amt(t, "5000"), IsIncome: true, Time: "2026-08-01"},
		{ID: "2", Name: "Rent", Price: amt(t, "1500"), Category: "Housing", Time: "2026-08-02"},
	}

	var buf bytes.Buffer
	if err := g.Generate(txs, r, &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestGenerateXLSX(t *testing.T) {
	g := NewGenerator("")
	r, _ := ParseRange("2026-08-01", "2026-08-31")
	txs := []core.Transaction{
		{ID: "1", Name: "Salary", Price: amt(t, "5000"), IsIncome: true, Time: "2026-08-01"},
		{ID: "2", Name: "Rent", Price: amt(t, "1500"), Category: "Housing", Time: "2026-08-02"},
	}

	var buf bytes.Buffer
	if err := g.GenerateXLSX(txs, r, &buf); err != nil {
		t.Fatalf("GenerateXLSX: %v", err)
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Error("output is not a zip container")
	}
}
