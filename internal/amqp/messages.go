package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EntryCreatedMessage notifies downstream consumers that a ledger entry was
// persisted. It carries only identifiers; consumers fetch the full
// transaction from the store.
type EntryCreatedMessage struct {
	EventID   string    `json:"event_id"`
	EntryID   int64     `json:"entry_id"`
	UserID    int64     `json:"user_id"`
	Source    string    `json:"source"` // "manual" or "recurring"
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryCreatedMessage(entryID, userID int64, source string) *EntryCreatedMessage {
	return &EntryCreatedMessage{
		EventID:   uuid.NewString(),
		EntryID:   entryID,
		UserID:    userID,
		Source:    source,
		Timestamp: time.Now(),
	}
}

func (m *EntryCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryCreatedMessageFromJSON(data []byte) (*EntryCreatedMessage, error) {
	var msg EntryCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
