package events

import (
	"encoding/gob"
	"sync"
	"testing"
	"time"

	"github.com/go-errors/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imunhatep/goevents/handlers"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func TestEmitter_DispatchOrder(t *testing.T) {
	emitter := NewEmitter()
	subject := "test.subject"

	var calls []string
	err := emitter.On(subject, func(event Event) error {
		assert.Equal(t, "test data", event.Data, "First handler should receive the published payload")
		calls = append(calls, "first")
		return nil
	})
	require.NoError(t, err, "On should not return an error")

	err = emitter.On(subject, func(event Event) error {
		assert.Equal(t, "test data", event.Data, "Second handler should receive the published payload")
		calls = append(calls, "second")
		return nil
	})
	require.NoError(t, err, "On should not return an error")

	err = emitter.Emit(subject, "test data")
	assert.NoError(t, err, "Emit should not return an error")
	assert.Equal(t, []string{"first", "second"}, calls, "Handlers should run once each, in registration order")
}

func TestEmitter_EmitWithoutHandlers(t *testing.T) {
	emitter := NewEmitter()

	err := emitter.Emit("anything", 42)
	assert.NoError(t, err, "Emit on a subject without handlers should be a no-op")
}

func TestEmitter_DuplicateHandler(t *testing.T) {
	emitter := NewEmitter()
	subject := "test.subject"

	invocations := 0
	handler := func(event Event) error {
		invocations++
		return nil
	}

	require.NoError(t, emitter.On(subject, handler))
	require.NoError(t, emitter.On(subject, handler))

	err := emitter.Emit(subject, "test data")
	assert.NoError(t, err, "Emit should not return an error")
	assert.Equal(t, 2, invocations, "A handler registered twice should be invoked twice")
}

func TestEmitter_ReentrantEmit(t *testing.T) {
	emitter := NewEmitter()

	var calls []string
	require.NoError(t, emitter.On("outer", func(event Event) error {
		calls = append(calls, "outer.first")
		return emitter.Emit("inner", event.Data)
	}))
	require.NoError(t, emitter.On("outer", func(event Event) error {
		calls = append(calls, "outer.second")
		return nil
	}))
	require.NoError(t, emitter.On("inner", func(event Event) error {
		calls = append(calls, "inner.first")
		return nil
	}))
	require.NoError(t, emitter.On("inner", func(event Event) error {
		calls = append(calls, "inner.second")
		return nil
	}))

	err := emitter.Emit("outer", "test data")
	assert.NoError(t, err, "Emit should not return an error")

	expected := []string{"outer.first", "inner.first", "inner.second", "outer.second"}
	assert.Equal(t, expected, calls, "Nested dispatch should complete before the next outer handler runs")
}

func TestEmitter_HandlerFailureAbortsDispatch(t *testing.T) {
	emitter := NewEmitter()
	subject := "test.subject"

	boom := errors.New("handler failed")
	secondRan := false

	require.NoError(t, emitter.On(subject, func(event Event) error {
		return boom
	}))
	require.NoError(t, emitter.On(subject, func(event Event) error {
		secondRan = true
		return nil
	}))

	err := emitter.Emit(subject, "test data")
	assert.ErrorIs(t, err, boom, "Emit should surface the handler error to the caller")
	assert.False(t, secondRan, "Handlers after the failing one should not run")
}

func TestEmitter_ChainedSubjects(t *testing.T) {
	emitter := NewEmitter()

	var received []Event
	require.NoError(t, emitter.On("order.created", func(event Event) error {
		return emitter.Emit("inventory.check", event.Data)
	}))
	require.NoError(t, emitter.On("inventory.check", func(event Event) error {
		return emitter.Emit("payment.process", event.Data)
	}))
	require.NoError(t, emitter.On("payment.process", func(event Event) error {
		received = append(received, event)
		return nil
	}))

	err := emitter.Emit("order.created", "Laptop")
	assert.NoError(t, err, "Emit should not return an error")

	require.Len(t, received, 1, "The recorder should receive exactly one event")
	assert.Equal(t, "payment.process", received[0].Subject, "Event subject should match the final chain stage")
	assert.Equal(t, "Laptop", received[0].Data, "The payload should travel the whole chain unchanged")
}

func TestEmitter_Validation(t *testing.T) {
	emitter := NewEmitter()

	assert.Error(t, emitter.On("", func(event Event) error { return nil }), "On should reject an empty subject")
	assert.Error(t, emitter.On("test.subject", nil), "On should reject a nil handler")
	assert.Error(t, emitter.Emit("", "test data"), "Emit should reject an empty subject")
}

func TestEmitter_EmitAsync(t *testing.T) {
	failures := make(chan error, 1)

	emitter := NewEmitter().
		WithAsyncLimit(2).
		WithErrorHandler(func(err error) { failures <- err })

	boom := errors.New("handler failed")
	require.NoError(t, emitter.On("test.subject", func(event Event) error {
		return boom
	}))

	emitter.EmitAsync("test.subject", "test data")

	select {
	case err := <-failures:
		assert.ErrorIs(t, err, boom, "Async dispatch errors should reach the error handler")
	case <-time.After(1 * time.Second):
		t.Fatal("Timed out waiting for the async error")
	}
}

func TestEmitter_EncoderCopiesPayload(t *testing.T) {
	gob.Register(map[string]interface{}{})

	emitter := NewEmitter().WithEncoder(&handlers.GobEncoder{})
	subject := "test.subject"

	var seen map[string]interface{}
	require.NoError(t, emitter.On(subject, func(event Event) error {
		seen = event.Data.(map[string]interface{})
		seen["mutated"] = true
		return nil
	}))

	payload := map[string]interface{}{"key": "value"}
	require.NoError(t, emitter.Emit(subject, payload))

	assert.Equal(t, "value", seen["key"], "The handler should see the published payload values")
	assert.NotContains(t, payload, "mutated", "Handler mutations should not leak back to the publisher")
}

func TestEmitter_ConcurrentRegisterAndEmit(t *testing.T) {
	emitter := NewEmitter()
	subject := "test.subject"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = emitter.On(subject, func(event Event) error { return nil })
		}()
		go func() {
			defer wg.Done()
			_ = emitter.Emit(subject, "test data")
		}()
	}
	wg.Wait()

	err := emitter.Emit(subject, "test data")
	assert.NoError(t, err, "Emit should not return an error after concurrent registration")
}
