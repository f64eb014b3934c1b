// Package telemetry defines the typed events that flow over the WebSocket
// connection between skywatchd and its clients. Every event embeds Event,
// so clients can switch on "type" before decoding the rest.
package telemetry

import (
	"time"

	"github.com/large-farva/skywatch/internal/elements"
	"github.com/large-farva/skywatch/internal/transform"
)

// EventType identifies the kind of WebSocket event.
type EventType string

const (
	EventHeartbeat EventType = "heartbeat"
	EventState     EventType = "state"
	EventPosition  EventType = "position"
	EventElements  EventType = "elements"
	EventLog       EventType = "log"
)

// Event is the base envelope shared by every event type.
type Event struct {
	Type      EventType `json:"type"`
	TS        string    `json:"ts"`
	Component string    `json:"component,omitempty"`
}

// NowTS returns the current UTC time as an RFC 3339 nano string, matching the
// timestamp format used across all events.
func NowTS() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func envelope(t EventType, component string) Event {
	return Event{Type: t, TS: NowTS(), Component: component}
}

// Heartbeat is sent periodically so clients can detect connectivity and
// monitor daemon uptime.
type Heartbeat struct {
	Event
	State         string `json:"state"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func NewHeartbeat(state string, uptime time.Duration) Heartbeat {
	return Heartbeat{
		Event:         envelope(EventHeartbeat, "daemon"),
		State:         state,
		UptimeSeconds: int64(uptime.Seconds()),
	}
}

// StateTransition is emitted whenever the daemon moves between operating
// states (e.g. IDLE -> TRACKING).
type StateTransition struct {
	Event
	From string `json:"from"`
	To   string `json:"to"`
	Time string `json:"time"`
}

func NewStateTransition(from, to, timeSel string) StateTransition {
	return StateTransition{
		Event: envelope(EventState, "daemon"),
		From:  from,
		To:    to,
		Time:  timeSel,
	}
}

// PositionUpdate carries one published recompute result.
type PositionUpdate struct {
	Event
	Satellite string             `json:"satellite"`
	Catalog   int                `json:"catalog"`
	Observer  transform.Observer `json:"observer"`
	transform.Position
}

func NewPositionUpdate(el elements.Elements, obs transform.Observer, pos transform.Position) PositionUpdate {
	return PositionUpdate{
		Event:     envelope(EventPosition, "tracker"),
		Satellite: el.DisplayName(),
		Catalog:   el.CatalogNumber,
		Observer:  obs,
		Position:  pos,
	}
}

// ElementsLoaded announces a newly tracked element set.
type ElementsLoaded struct {
	Event
	Format   elements.Format   `json:"format"`
	Elements elements.Elements `json:"elements"`
	Line1    string            `json:"line1"`
	Line2    string            `json:"line2"`
	Warnings []string          `json:"warnings,omitempty"`
}

func NewElementsLoaded(in elements.Ingested, line1, line2 string) ElementsLoaded {
	return ElementsLoaded{
		Event:    envelope(EventElements, "tracker"),
		Format:   in.Format,
		Elements: in.Elements,
		Line1:    line1,
		Line2:    line2,
		Warnings: in.Warnings,
	}
}

// LogLine carries a human-readable log message at a severity level.
type LogLine struct {
	Event
	Level   string `json:"level"`
	Message string `json:"message"`
}

func NewLogLine(component, level, message string) LogLine {
	return LogLine{
		Event:   envelope(EventLog, component),
		Level:   level,
		Message: message,
	}
}
