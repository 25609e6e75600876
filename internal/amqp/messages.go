package amqp

import (
	"encoding/json"
	"time"
)

// ReportRequestMessage asks the worker to render an archived report.
// It carries only the report id; the worker loads the snapshot from the
// archive, so messages stay small and replayable.
type ReportRequestMessage struct {
	ReportID  string    `json:"report_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReportRequestMessage creates a render request for a report id
func NewReportRequestMessage(reportID string) *ReportRequestMessage {
	return &ReportRequestMessage{
		ReportID:  reportID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestMessageFromJSON creates a message from JSON bytes
func ReportRequestMessageFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
