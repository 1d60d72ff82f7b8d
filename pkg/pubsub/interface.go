package pubsub

import (
	"context"
	"encoding/json"
	"time"
)

// Event is a message carried over a channel.
type Event struct {
	Type      string          `json:"type"`
	Subject   string          `json:"subject"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType, subject string, payload interface{}) (*Event, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return &Event{
		Type:      eventType,
		Subject:   subject,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Publisher publishes events to a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, event *Event) error
}

// Subscriber delivers events published to a channel. The returned channel
// is closed once ctx is done; each call is an independent subscription.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan *Event, error)
}

// PubSub combines Publisher and Subscriber.
type PubSub interface {
	Publisher
	Subscriber
	Close() error
}
