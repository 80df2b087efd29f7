package sink

import (
	"fmt"
	"strings"
	"time"

	"github.com/logtide/logtide/internal/event"
	"github.com/logtide/logtide/internal/table"
)

// Formatter renders event field values into the persisted record. It stands
// in for a locale/culture format provider; the default uses Go verbs with
// RFC3339 timestamps.
type Formatter interface {
	Format(v interface{}) string
}

type defaultFormatter struct{}

func (defaultFormatter) Format(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return t.String()
	case error:
		return t.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Reserved property names written by the sink itself. Event properties using
// these names are prefixed with "Data_" to avoid collisions.
var reservedProperties = map[string]bool{
	"Timestamp":       true,
	"Level":           true,
	"MessageTemplate": true,
	"RenderedMessage": true,
	"Exception":       true,
}

// buildRecord derives the persisted record from an event and its keys.
// Records are created at flush time and never mutated afterwards.
func buildRecord(ev event.Event, pk, rk string, f Formatter) table.Record {
	props := make(map[string]interface{}, len(ev.Properties)+5)
	props["Timestamp"] = f.Format(ev.Timestamp)
	props["Level"] = string(ev.Level)
	props["MessageTemplate"] = ev.MessageTemplate
	props["RenderedMessage"] = renderMessage(ev, f)
	if ev.Error != "" {
		props["Exception"] = ev.Error
	}
	for k, v := range ev.Properties {
		if reservedProperties[k] {
			k = "Data_" + k
		}
		props[k] = v
	}
	return table.Record{
		PartitionKey: pk,
		RowKey:       rk,
		Properties:   props,
	}
}

// renderMessage substitutes {name} holes in the template with formatted
// property values. Holes without a matching property are left verbatim.
func renderMessage(ev event.Event, f Formatter) string {
	msg := ev.MessageTemplate
	if len(ev.Properties) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	for k, v := range ev.Properties {
		msg = strings.ReplaceAll(msg, "{"+k+"}", f.Format(v))
	}
	return msg
}
