package domain

import (
	"encoding/json"
	"time"
)

// OutboxEvent is a pending outbound notification event. It is written
// in the same transaction as the state change that produced it, so a
// dispatcher crash can never be mistaken for a transition failure.
type OutboxEvent struct {
	ID        int64
	EventID   string
	Topic     string
	Payload   json.RawMessage
	CreatedAt time.Time
	SentAt    *time.Time
}
