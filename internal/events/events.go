// Package events fans engine changes out to SSE clients.
package events

import (
	"encoding/json"
	"time"
)

// Version is the envelope version carried in every event.
const Version = 1

const (
	Ping               = "ping"
	JobsUpdated        = "jobs.updated"
	DailyUpdated       = "daily.updated"
	ApplicationUpdated = "application.updated"
	ProfileUpdated     = "profile.updated"
	TasksUpdated       = "tasks.updated"
	ConfigUpdated      = "config.updated"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	Seq       uint64          `json:"seq,omitempty"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// New stamps an event of typ. Data that fails to marshal is left out.
func New(reqID, typ string, data any) Event {
	e := Event{
		Type:      typ,
		Version:   Version,
		At:        time.Now().UTC(),
		RequestID: reqID,
	}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			e.Data = b
		}
	}
	return e
}

func (e Event) String() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// MakeEvent returns the JSON form of New(reqID, typ, data).
func MakeEvent(reqID, typ string, data any) string {
	return New(reqID, typ, data).String()
}
