package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventEmitterDropsWhenFull(t *testing.T) {
	e := NewEventEmitter("s1", 2)
	var heard int
	e.Subscribe(func(Event) { heard++ })

	for i := 0; i < 5; i++ {
		e.Emit(Event{Kind: EventRoute})
	}
	e.Close()

	var buffered int
	for ev := range e.Events() {
		buffered++
		assert.Equal(t, "s1", ev.SessionID)
		assert.False(t, ev.Timestamp.IsZero())
	}
	assert.Equal(t, 2, buffered)
	assert.Equal(t, 5, heard, "listeners see every event")
}

func TestEventEmitterAfterClose(t *testing.T) {
	e := NewEventEmitter("s1", 0)
	var heard int
	e.Subscribe(func(Event) { heard++ })

	e.Close()
	e.Close()
	e.Emit(Event{Kind: EventRunStart})
	assert.Zero(t, heard)
}
