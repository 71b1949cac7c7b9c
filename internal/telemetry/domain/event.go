package domain

import (
	"encoding/json"
	"time"
)

// Event is a security or usage event published to the telemetry pipeline (OTel logs, Kafka, Loki).
type Event struct {
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Actor     string          `json:"actor,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	IP        string          `json:"ip,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
