package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) listen(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) kinds() []EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventKind, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Kind
	}
	return out
}

func newTestSession(t *testing.T, fc *fakeCompleter, log *eventLog) *Session {
	t.Helper()
	a := newTestAgent(t, fc, DefaultConfig())
	s := NewSession(a, WithListener(log.listen), WithSessionLogger(quietLogger()))
	t.Cleanup(s.Close)
	return s
}

func TestSessionSubmit(t *testing.T) {
	log := &eventLog{}
	fc := newFakeCompleter().script(StagePlanner, "Calcular y search")
	s := newTestSession(t, fc, log)
	assert.Equal(t, SessionIdle, s.State())

	res, err := s.Submit(context.Background(), "  ¿Cuánto es 2+2?  ")
	require.NoError(t, err)

	assert.Equal(t, "¿Cuánto es 2+2?", res.Input)
	assert.Equal(t, "Resultado de la ejecución", res.Answer)
	assert.Equal(t, "Calcular y search", res.Plan)
	assert.Equal(t, []string{"web-search", "calculator"}, res.ToolsUsed)
	assert.Equal(t, 1, res.Iterations)
	assert.True(t, res.Complete)
	assert.Equal(t, TerminationComplete, res.Reason)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, SessionIdle, s.State())
	assert.Equal(t, 1, s.Runs())

	assert.Equal(t, []EventKind{
		EventSessionStart,
		EventRunStart,
		EventStageStart, EventStageEnd, EventRoute,
		EventStageStart, EventStageEnd, EventRoute,
		EventStageStart, EventStageEnd, EventRoute,
		EventRunEnd,
	}, log.kinds())
}

func TestSessionStageEventsCarryOutputs(t *testing.T) {
	log := &eventLog{}
	s := newTestSession(t, newFakeCompleter(), log)

	_, err := s.Submit(context.Background(), "hola")
	require.NoError(t, err)

	var ends []Event
	for _, ev := range log.events {
		if ev.Kind == EventStageEnd {
			ends = append(ends, ev)
		}
	}
	require.Len(t, ends, 3)
	assert.Equal(t, StagePlanner, ends[0].Stage)
	assert.Equal(t, "1. Investigar\n2. Responder", ends[0].Data["output"])
	assert.Equal(t, StageCritic, ends[2].Stage)
	assert.Equal(t, string(VerdictSatisfactory), ends[2].Data["verdict"])
	for _, ev := range ends {
		assert.Equal(t, s.ID(), ev.SessionID)
		assert.NotEmpty(t, ev.RunID)
	}
}

func TestSessionErrorDoesNotLeak(t *testing.T) {
	log := &eventLog{}
	boom := errors.New("auth failed")
	fc := newFakeCompleter().fail(StageExecutor, boom)
	s := newTestSession(t, fc, log)

	res, err := s.Submit(context.Background(), "primera")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res)
	assert.Equal(t, SessionIdle, s.State())
	assert.Contains(t, log.kinds(), EventRunError)

	delete(fc.errs, StageExecutor)
	res, err = s.Submit(context.Background(), "segunda")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, "segunda", res.State.LastUserMessage())
	assert.Len(t, res.State.Messages, 1, "each run starts from fresh state")
}

func TestSessionEmptyInput(t *testing.T) {
	fc := newFakeCompleter()
	s := newTestSession(t, fc, &eventLog{})

	_, err := s.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Zero(t, fc.total())
	assert.Zero(t, s.Runs())
}

func TestSessionClose(t *testing.T) {
	log := &eventLog{}
	s := newTestSession(t, newFakeCompleter(), log)

	s.Close()
	s.Close()
	assert.Equal(t, SessionClosed, s.State())

	_, err := s.Submit(context.Background(), "hola")
	assert.ErrorIs(t, err, ErrSessionClosed)

	kinds := log.kinds()
	assert.Equal(t, EventSessionEnd, kinds[len(kinds)-1])

	// The buffered channel is drained and closed.
	var fromChannel []EventKind
	for ev := range s.Events() {
		fromChannel = append(fromChannel, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventSessionStart, EventSessionEnd}, fromChannel)
}

func TestSessionBusy(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	blocking := CompleterFunc(func(ctx context.Context, prompt string, temperature float64, modelID string) (string, error) {
		if stageOf(prompt) == StagePlanner {
			close(entered)
			<-release
		}
		return "SATISFACTORIO", nil
	})
	a, err := New(blocking, DefaultConfig(), WithLogger(quietLogger()))
	require.NoError(t, err)
	s := NewSession(a, WithSessionLogger(quietLogger()))
	defer s.Close()

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "lento")
		done <- err
	}()

	<-entered
	assert.Equal(t, SessionProcessing, s.State())
	_, err = s.Submit(context.Background(), "otra")
	assert.ErrorIs(t, err, ErrSessionBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, SessionIdle, s.State())
}
