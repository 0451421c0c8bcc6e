package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a, b := h.Subscribe(), h.Subscribe()
	assert.Equal(t, 2, h.Len())

	h.Emit("req-1", JobsUpdated, map[string]int{"added": 3})

	for _, ch := range []chan string{a, b} {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
		assert.Equal(t, JobsUpdated, e.Type)
		assert.Equal(t, Version, e.Version)
		assert.Equal(t, uint64(1), e.Seq)
		assert.Equal(t, "req-1", e.RequestID)
		assert.JSONEq(t, `{"added":3}`, string(e.Data))
		assert.False(t, e.At.IsZero())
	}

	h.Unsubscribe(a)
	h.Unsubscribe(a)
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, h.Len())
}

func TestHubSequenceIncreases(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Emit("", TasksUpdated, nil)
	h.Emit("", TasksUpdated, nil)

	var first, second Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &first))
	require.NoError(t, json.Unmarshal([]byte(<-ch), &second))
	assert.Less(t, first.Seq, second.Seq)
}

func TestHubDropsForSlowClient(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	for i := 0; i < clientBuffer+5; i++ {
		h.Publish("x")
	}
	assert.Len(t, ch, clientBuffer)
	assert.Equal(t, int64(5), h.Dropped())
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Close()
	h.Close()

	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, h.Len())

	late := h.Subscribe()
	_, open = <-late
	assert.False(t, open)

	// unsubscribing after close must not double-close
	h.Unsubscribe(ch)
}

func TestMakeEventOmitsEmptyData(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(MakeEvent("", Ping, nil)), &raw))
	assert.NotContains(t, raw, "data")
	assert.NotContains(t, raw, "request_id")
	assert.NotContains(t, raw, "seq")
	assert.Equal(t, Ping, raw["type"])
}
