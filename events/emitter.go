package events

import (
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/rs/zerolog/log"
)

const defaultAsyncLimit = 64

// Handler reacts to a single event. A non-nil error aborts the remaining
// handlers of the Emit call that invoked it.
type Handler func(Event) error

// Emitter routes events to handlers by exact subject match. Handlers are
// invoked synchronously, in registration order, on the caller's stack.
// Once registered a handler stays registered for the Emitter's lifetime.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[string][]Handler

	metrics  *EmitterMetrics
	encoder  Encoder
	onError  func(error)
	asyncSem chan struct{}
}

func NewEmitter() *Emitter {
	return &Emitter{
		handlers: make(map[string][]Handler),
		asyncSem: make(chan struct{}, defaultAsyncLimit),
	}
}

func (e *Emitter) WithMetrics(metrics *EmitterMetrics) *Emitter {
	e.metrics = metrics

	return e
}

// WithEncoder makes Emit pass each handler a byte-level copy of the payload
// instead of the publisher's value, so handlers cannot observe later
// mutations by the publisher.
func (e *Emitter) WithEncoder(encoder Encoder) *Emitter {
	e.encoder = encoder

	return e
}

// WithErrorHandler sets the callback invoked for errors raised during
// EmitAsync. Without it async errors are only logged.
func (e *Emitter) WithErrorHandler(fn func(error)) *Emitter {
	e.onError = fn

	return e
}

// WithAsyncLimit bounds the number of in-flight EmitAsync calls.
func (e *Emitter) WithAsyncLimit(limit int) *Emitter {
	if limit > 0 {
		e.asyncSem = make(chan struct{}, limit)
	}

	return e
}

// On registers a handler for the given subject. Registering the same
// handler twice is legal and results in two invocations per Emit.
func (e *Emitter) On(subject string, handler Handler) error {
	if subject == "" {
		return errors.New("subject must not be empty")
	}
	if handler == nil {
		return errors.New("handler must not be nil")
	}

	e.mu.Lock()
	e.handlers[subject] = append(e.handlers[subject], handler)
	registered := len(e.handlers[subject])
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.HandlerGauge.WithLabelValues(subject).Set(float64(registered))
	}

	log.Trace().Str("subject", subject).Int("handlers", registered).Msg("[Emitter.On] handler registered")

	return nil
}

// Emit delivers an event to every handler currently registered for the
// subject. A subject without handlers is a no-op. The first handler error
// stops the dispatch and is returned to the caller; handlers may call Emit
// themselves, nested dispatches complete before the next outer handler runs.
func (e *Emitter) Emit(subject string, data interface{}) error {
	if subject == "" {
		return errors.New("subject must not be empty")
	}

	if e.encoder != nil {
		copied, err := e.copyPayload(data)
		if err != nil {
			return err
		}
		data = copied
	}

	event := Event{
		Subject: subject,
		Data:    data,
		Metadata: map[string]string{
			"timestamp": time.Now().Format(time.DateTime),
		},
	}

	// Snapshot under RLock, invoke outside it. Handlers registered during
	// dispatch do not affect an in-flight Emit, and nested Emit calls do
	// not deadlock.
	e.mu.RLock()
	registered := e.handlers[subject]
	snapshot := make([]Handler, len(registered))
	copy(snapshot, registered)
	e.mu.RUnlock()

	if len(snapshot) == 0 {
		log.Trace().Str("subject", subject).Msg("[Emitter.Emit] no handlers")
		return nil
	}

	if e.metrics != nil {
		e.metrics.EmitCount.WithLabelValues(subject).Inc()
	}

	for _, handler := range snapshot {
		if err := handler(event); err != nil {
			if e.metrics != nil {
				e.metrics.HandlerErrorCount.WithLabelValues(subject).Inc()
			}

			log.Debug().Err(err).Str("subject", subject).Msg("[Emitter.Emit] handler failed, dispatch aborted")

			return err
		}
	}

	log.Trace().Str("subject", subject).Int("handlers", len(snapshot)).Msg("[Emitter.Emit] dispatched")

	return nil
}

// EmitAsync dispatches on a background goroutine. It blocks while the
// configured number of async emits are already in flight. Errors go to the
// error handler, if any.
func (e *Emitter) EmitAsync(subject string, data interface{}) {
	e.asyncSem <- struct{}{}

	go func() {
		defer func() { <-e.asyncSem }()

		if err := e.Emit(subject, data); err != nil {
			e.reportError(subject, err)
		}
	}()
}

func (e *Emitter) copyPayload(data interface{}) (interface{}, error) {
	raw, err := e.encoder.Encode(data)
	if err != nil {
		return nil, errors.New(err)
	}

	copied, err := e.encoder.Decode(raw)
	if err != nil {
		return nil, errors.New(err)
	}

	return copied, nil
}

func (e *Emitter) reportError(subject string, err error) {
	if e.metrics != nil {
		e.metrics.AsyncErrorCount.WithLabelValues(subject).Inc()
	}

	if e.onError != nil {
		e.onError(err)
		return
	}

	log.Error().Err(err).Str("subject", subject).Msg("[Emitter.EmitAsync] dispatch failed")
}
