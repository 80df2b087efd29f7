// Package event defines the immutable log event record flowing through the
// sink pipeline.
package event

import (
	"time"
)

// Level is the severity of an event
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// ParseLevel maps a level string to a known Level, defaulting to info
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal:
		return Level(s)
	case "warning":
		return LevelWarn
	default:
		return LevelInfo
	}
}

// Event is a single log event produced by an application. Events are
// read-only once constructed; the pipeline never mutates them.
type Event struct {
	Timestamp       time.Time
	Level           Level
	MessageTemplate string
	Properties      map[string]interface{}
	Error           string // optional associated error/exception payload
}

// New creates an event. A zero timestamp is replaced with the current time
// and the property map is copied so the caller cannot mutate it afterwards.
func New(ts time.Time, level Level, template string, props map[string]interface{}) Event {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	copied := make(map[string]interface{}, len(props))
	for k, v := range props {
		copied[k] = v
	}
	return Event{
		Timestamp:       ts,
		Level:           level,
		MessageTemplate: template,
		Properties:      copied,
	}
}

// WithError returns a copy of the event carrying an error payload
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
