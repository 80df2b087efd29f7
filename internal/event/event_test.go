package event

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestNew_DefaultsZeroTimestamp(t *testing.T) {
	before := time.Now().UTC()
	ev := New(time.Time{}, LevelInfo, "msg", nil)
	after := time.Now().UTC()

	assert.False(t, ev.Timestamp.Before(before))
	assert.False(t, ev.Timestamp.After(after))
}

func TestNew_CopiesProperties(t *testing.T) {
	props := map[string]interface{}{"a": 1}
	ev := New(time.Now(), LevelInfo, "msg", props)

	props["a"] = 2
	props["b"] = 3
	assert.Equal(t, 1, ev.Properties["a"])
	assert.NotContains(t, ev.Properties, "b")
}

func TestWithError(t *testing.T) {
	ev := New(time.Now(), LevelError, "boom", nil)
	assert.Empty(t, ev.Error)

	withErr := ev.WithError(errors.New("disk full"))
	assert.Equal(t, "disk full", withErr.Error)
	assert.Empty(t, ev.Error, "WithError must not mutate the receiver")

	assert.Empty(t, ev.WithError(nil).Error)
}
