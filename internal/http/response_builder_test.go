package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finman/internal/store"
)

func TestWriteSetsTriggerHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerTransactionsChanged().
		TriggerFormReset().
		Write(rec)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	for _, name := range []string{"transactions:changed", "form:reset"} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("HX-Trigger missing %q: %v", name, triggers)
		}
	}
}

func TestTriggerReportRequestedCarriesID(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().TriggerReportRequested("abc-123").Write(rec)

	var triggers map[string]map[string]string
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	if got := triggers["report:requested"]["id"]; got != "abc-123" {
		t.Errorf("report:requested id = %q, want abc-123", got)
	}
}

func TestNotificationPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().TriggerSuccessNotification("Transaction added").Write(rec)

	var triggers map[string]struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int    `json:"duration"`
	}
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	n := triggers["show-notification"]
	if n.Type != "success" || n.Message != "Transaction added" || n.Duration != 3000 {
		t.Errorf("notification = %+v", n)
	}
}

func TestErrorResponseEscapesHTML(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(http.StatusUnprocessableEntity, `<script>alert("x")</script>`).Write(rec)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("message not escaped: %q", body)
	}
	if !strings.Contains(body, `class="error"`) {
		t.Errorf("body missing error wrapper: %q", body)
	}
}

func TestGatewayErrorResponseStatuses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
		wantMsg    string
	}{
		{"auth", 401, http.StatusUnauthorized, "Session expired. Please log in again."},
		// Substring avoids the HTML-escaped apostrophe in the full message.
		{"forbidden", 403, http.StatusForbidden, "permission to perform this action."},
		{"server", 500, http.StatusInternalServerError, "Server error. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			GatewayErrorResponse(store.FromStatus(store.OpFetch, tt.status, "")).Write(rec)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantMsg) {
				t.Errorf("body = %q, want substring %q", rec.Body.String(), tt.wantMsg)
			}
		})
	}
}

func TestGatewayErrorResponseUnknownError(t *testing.T) {
	rec := httptest.NewRecorder()
	GatewayErrorResponse(errUnknown{}).Write(rec)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Server error. Please try again later.") {
		t.Errorf("body = %q, want generic message", rec.Body.String())
	}
}

type errUnknown struct{}

func (errUnknown) Error() string { return "internal detail that must not leak" }
