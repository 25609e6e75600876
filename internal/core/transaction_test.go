package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAmountUnmarshalCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"number", `12.34`, "12.34"},
		{"integer", `100`, "100"},
		{"quoted number", `"45.50"`, "45.5"},
		{"quoted with spaces", `" 7 "`, "7"},
		{"garbage", `"abc"`, "0"},
		{"empty string", `""`, "0"},
		{"null", `null`, "0"},
		{"negative", `-5`, "0"},
		{"quoted negative", `"-5"`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			if err := json.Unmarshal([]byte(tt.raw), &a); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tt.raw, err)
			}
			if got := a.String(); got != tt.want {
				t.Errorf("Unmarshal(%s) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTransactionDecodeNeverFailsOnPrice(t *testing.T) {
	payload := `[
		{"_id":"a","name":"Salary","price":5000,"isIncome":true,"time":"2026-08-01"},
		{"_id":"b","name":"Broken","price":"not-a-number","isIncome":false},
		{"_id":"c","price":"12.50","isIncome":false,"category":"Food"}
	]`
	var txs []Transaction
	if err := json.Unmarshal([]byte(payload), &txs); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("decoded %d transactions, want 3", len(txs))
	}
	if !txs[1].Price.IsZero() {
		t.Errorf("non-numeric price coerced to %s, want 0", txs[1].Price)
	}
	if got := txs[2].Price.String(); got != "12.5" {
		t.Errorf("quoted price = %s, want 12.5", got)
	}
}

func TestAmountMarshalBareNumber(t *testing.T) {
	a, err := AmountFromString("12.50")
	if err != nil {
		t.Fatalf("AmountFromString: %v", err)
	}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != "12.5" {
		t.Errorf("Marshal = %s, want 12.5 (bare number, no quotes)", b)
	}
}

func TestParseTransactionDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{"bare date", "2026-08-15", time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339", "2026-08-15T10:30:00Z", time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC), false},
		{"rfc3339 millis", "2026-08-15T10:30:00.123Z", time.Date(2026, 8, 15, 10, 30, 0, 123000000, time.UTC), false},
		{"rfc3339 offset", "2026-08-15T10:30:00+05:30", time.Date(2026, 8, 15, 10, 30, 0, 0, time.FixedZone("", 5*3600+30*60)), false},
		{"empty", "", time.Time{}, true},
		{"garbage", "yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTransactionDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTransactionDate(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTransactionDate(%q) error: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTransactionDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisplayFallbacks(t *testing.T) {
	tx := Transaction{ID: "x"}
	if got := tx.DisplayName(); got != FallbackName {
		t.Errorf("DisplayName = %q, want %q", got, FallbackName)
	}
	if got := tx.DisplayCategory(); got != FallbackCategory {
		t.Errorf("DisplayCategory = %q, want %q", got, FallbackCategory)
	}
	tx = Transaction{Name: "Coffee", Category: "Food"}
	if got := tx.DisplayName(); got != "Coffee" {
		t.Errorf("DisplayName = %q, want Coffee", got)
	}
	if got := tx.DisplayCategory(); got != "Food" {
		t.Errorf("DisplayCategory = %q, want Food", got)
	}
}

func TestTransactionInputValidate(t *testing.T) {
	valid := func() TransactionInput {
		a, _ := AmountFromString("10")
		return TransactionInput{Name: "Groceries", Price: a, Category: "Food"}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	in := valid()
	in.Name = "   "
	if err := in.Validate(); err != ErrNameRequired {
		t.Errorf("blank name: got %v, want ErrNameRequired", err)
	}

	in = valid()
	in.Price = Amount{}
	if err := in.Validate(); err != ErrAmountNotPositive {
		t.Errorf("zero price: got %v, want ErrAmountNotPositive", err)
	}

	in = valid()
	in.Price, _ = AmountFromString("-3")
	if err := in.Validate(); err != ErrAmountNotPositive {
		t.Errorf("negative price: got %v, want ErrAmountNotPositive", err)
	}
}

func TestAmountFromStringRejectsGarbage(t *testing.T) {
	if _, err := AmountFromString("1,000"); err == nil {
		t.Error("expected error for grouped input")
	}
	if _, err := AmountFromString(""); err == nil {
		t.Error("expected error for empty input")
	}
	a, err := AmountFromString(" 19.99 ")
	if err != nil {
		t.Fatalf("trimmed input rejected: %v", err)
	}
	if a.String() != "19.99" {
		t.Errorf("got %s, want 19.99", a)
	}
}
