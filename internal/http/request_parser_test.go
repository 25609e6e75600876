package http

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest("POST", "/transactions", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestParseFormBody(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded",
		"name=Coffee&price=120.50&category=Food&type=expense")

	if p.IsJSON() {
		t.Error("IsJSON() = true for form body")
	}
	if got := p.Get("name"); got != "Coffee" {
		t.Errorf("Get(name) = %q, want Coffee", got)
	}
	if got := p.Get("price"); got != "120.50" {
		t.Errorf("Get(price) = %q, want 120.50", got)
	}
	if got := p.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}

func TestParseJSONBody(t *testing.T) {
	p := newParser(t, "application/json",
		`{"name": "Salary", "price": 5000, "isIncome": true}`)

	if !p.IsJSON() {
		t.Error("IsJSON() = false for JSON body")
	}
	if got := p.Get("name"); got != "Salary" {
		t.Errorf("Get(name) = %q, want Salary", got)
	}
	// Numeric JSON values come back as their string form.
	if got := p.Get("price"); got != "5000" {
		t.Errorf("Get(price) = %q, want 5000", got)
	}
	if !p.GetBool("isIncome") {
		t.Error("GetBool(isIncome) = false, want true")
	}
}

func TestParseEmptyBody(t *testing.T) {
	p := newParser(t, "", "")
	if got := p.Get("anything"); got != "" {
		t.Errorf("Get on empty body = %q, want empty", got)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/transactions", strings.NewReader(`{"name": `))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err == nil {
		t.Error("Parse() = nil for invalid JSON, want error")
	}
}

func TestGetBoolFormValues(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"isIncome=true", true},
		{"isIncome=on", true},
		{"isIncome=1", true},
		{"isIncome=false", false},
		{"isIncome=", false},
		{"", false},
	}

	for _, tt := range tests {
		p := newParser(t, "application/x-www-form-urlencoded", tt.body)
		if got := p.GetBool("isIncome"); got != tt.want {
			t.Errorf("GetBool(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}

func TestGetSanitizesInput(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded",
		"name=%20%20evil%00name%0A%20%20")
	got := p.Get("name")
	if strings.ContainsRune(got, 0) {
		t.Errorf("Get returned control character: %q", got)
	}
	if got != strings.TrimSpace(got) {
		t.Errorf("Get did not trim whitespace: %q", got)
	}
}

func TestRequireMethod(t *testing.T) {
	req := httptest.NewRequest("GET", "/transactions", nil)

	if resp := RequireGET(req); resp != nil {
		t.Error("RequireGET rejected a GET request")
	}
	if resp := RequirePOST(req); resp == nil {
		t.Error("RequirePOST accepted a GET request")
	} else {
		rec := httptest.NewRecorder()
		resp.Write(rec)
		if rec.Code != 405 {
			t.Errorf("status = %d, want 405", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != "POST" {
			t.Errorf("Allow = %q, want POST", allow)
		}
	}
}
