package amqp

import (
	"testing"
	"time"
)

func TestNewReportRequestMessage(t *testing.T) {
	msg := NewReportRequestMessage("rpt-123")

	if msg.ReportID != "rpt-123" {
		t.Errorf("NewReportRequestMessage() ReportID = %v, want %v", msg.ReportID, "rpt-123")
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewReportRequestMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewReportRequestMessage() Timestamp should be recent")
	}
}

func TestReportRequestMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &ReportRequestMessage{
		ReportID:  "rpt-456",
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsedMsg, err := ReportRequestMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ReportRequestMessageFromJSON() error = %v", err)
	}

	if parsedMsg.ReportID != msg.ReportID {
		t.Errorf("Parsed ReportID = %v, want %v", parsedMsg.ReportID, msg.ReportID)
	}
	if !parsedMsg.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsedMsg.Timestamp, msg.Timestamp)
	}
}

func TestReportRequestMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"report_id": 42, "timestamp": "not-a-time"}`)

	_, err := ReportRequestMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("ReportRequestMessageFromJSON() should fail with invalid JSON")
	}
}
