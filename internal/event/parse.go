package event

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// ParseJSON decodes an event from an arbitrary JSON payload as submitted over
// HTTP or the ingest bus. Recognized fields:
//
//	timestamp|time|ts  RFC3339 timestamp (defaults to now)
//	level              severity string (defaults to info)
//	message|msg        message template
//	error              error payload
//	properties|fields  object of structured properties
func ParseJSON(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return Event{}, fmt.Errorf("invalid JSON event payload")
	}
	body := gjson.ParseBytes(data)
	if !body.IsObject() {
		return Event{}, fmt.Errorf("event payload must be a JSON object")
	}

	template := firstString(body, "message", "msg")
	if template == "" {
		return Event{}, fmt.Errorf("event payload missing message")
	}

	var ts time.Time
	if raw := firstString(body, "timestamp", "time", "ts"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Event{}, fmt.Errorf("invalid event timestamp %q: %w", raw, err)
		}
		ts = parsed
	}

	var props map[string]interface{}
	if obj := firstResult(body, "properties", "fields"); obj.IsObject() {
		props = make(map[string]interface{}, len(obj.Map()))
		for k, v := range obj.Map() {
			props[k] = v.Value()
		}
	}

	ev := New(ts, ParseLevel(body.Get("level").String()), template, props)
	if errPayload := body.Get("error").String(); errPayload != "" {
		ev.Error = errPayload
	}
	return ev, nil
}

func firstString(body gjson.Result, keys ...string) string {
	return firstResult(body, keys...).String()
}

func firstResult(body gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if r := body.Get(key); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}
