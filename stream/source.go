package stream

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/imunhatep/goevents/events"
)

// Source bridges an events.Emitter into a channel. It registers a handler
// for the exact subject that forwards every matching event into a buffered
// channel without blocking the emitter; events are dropped when the buffer
// is full.
//
// The emitter registry is append-only, so the bridge handler stays
// registered for the emitter's lifetime. Cancelling the context turns the
// handler into a no-op. The returned channel is never closed; readers
// should select on their own cancellation.
func Source(ctx context.Context, emitter *events.Emitter, subject string, size int) (<-chan events.Event, error) {
	ch := make(chan events.Event, size)

	err := emitter.On(subject, func(event events.Event) error {
		if ctx.Err() != nil {
			return nil
		}

		select {
		case ch <- event:
		default:
			log.Warn().Str("subject", subject).Msg("[stream.Source] event dismissed, buffer is full")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("subject", subject).Int("size", size).Msg("[stream.Source] bridge registered")

	return ch, nil
}
