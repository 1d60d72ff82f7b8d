package consumer

import "context"

// DebeziumUserRecord is the subset of a users row the service reacts to.
type DebeziumUserRecord struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// DebeziumPayload is the payload field of a Debezium CDC message.
type DebeziumPayload struct {
	Before *DebeziumUserRecord `json:"before"`
	After  *DebeziumUserRecord `json:"after"`
	Op     string              `json:"op"` // "c"=create, "u"=update, "d"=delete, "r"=snapshot
	TsMs   int64               `json:"ts_ms"`
}

// DebeziumMessage is the top-level Debezium CDC message envelope.
type DebeziumMessage struct {
	Payload DebeziumPayload `json:"payload"`
}

// UserID returns the id of the changed row, whichever image carries it.
func (m *DebeziumMessage) UserID() string {
	if m.Payload.After != nil && m.Payload.After.ID != "" {
		return m.Payload.After.ID
	}
	if m.Payload.Before != nil {
		return m.Payload.Before.ID
	}
	return ""
}

// AuthorChanged reports whether the fields copied into author snapshots
// may have changed. Without a before image (default replica identity)
// every update counts as a change.
func (m *DebeziumMessage) AuthorChanged() bool {
	switch m.Payload.Op {
	case "d":
		return true
	case "u":
		b, a := m.Payload.Before, m.Payload.After
		if b == nil || a == nil {
			return true
		}
		return b.Name != a.Name || !sameString(b.Avatar, a.Avatar)
	default:
		return false
	}
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// CDCEventHandler processes a decoded Debezium CDC message.
type CDCEventHandler interface {
	HandleCDCEvent(ctx context.Context, event *DebeziumMessage) error
}

// CDCEventConsumer manages the Kafka consumer lifecycle.
type CDCEventConsumer interface {
	Start(ctx context.Context) error
	Close() error
}
