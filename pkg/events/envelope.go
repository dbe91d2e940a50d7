package events

import (
	"encoding/json"
	"time"
)

// PayloadEnvelope is the stable payload structure stored in domain_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}
