package possync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FactsSyncedEventType is the Pub/Sub event emitted after a successful sync.
const FactsSyncedEventType = "facts.synced"

// FactsSyncedEvent announces that fact rows for a date range were replaced.
type FactsSyncedEvent struct {
	EventID    uuid.UUID `json:"eventId"`
	EventType  string    `json:"eventType"`
	LocationID uuid.UUID `json:"locationId"`
	SyncRunID  uuid.UUID `json:"syncRunId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Dates      []string  `json:"dates"`
	FactRows   int       `json:"factRows"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher sends serialized events to the message bus.
type Publisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

func (e FactsSyncedEvent) encode() ([]byte, map[string]string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, nil, err
	}
	attrs := map[string]string{
		"event_type":  e.EventType,
		"location_id": e.LocationID.String(),
	}
	return data, attrs, nil
}
