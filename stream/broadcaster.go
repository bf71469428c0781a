package stream

import (
	"context"

	"github.com/imunhatep/gocollection/slice"
	"github.com/rs/zerolog/log"
)

// Broadcaster fans a source channel out to any number of listeners. A single
// goroutine owns the listener set, so subscribe, unsubscribe and delivery
// never race. Listener channels are buffered; a value is dropped for a
// listener whose buffer is full.
type Broadcaster[T any] struct {
	ctx     context.Context
	name    string
	bufSize int
	metrics *StreamMetrics

	source    <-chan T
	listeners []chan T

	startCh       chan struct{}
	subscribeCh   chan chan T
	unsubscribeCh chan (<-chan T)
}

func NewBroadcaster[T any](ctx context.Context, name string, source <-chan T) *Broadcaster[T] {
	b := &Broadcaster[T]{
		ctx:     ctx,
		name:    name,
		bufSize: 16,

		source:        source,
		listeners:     make([]chan T, 0),
		startCh:       make(chan struct{}),
		subscribeCh:   make(chan chan T),
		unsubscribeCh: make(chan (<-chan T)),
	}

	go b.loop()

	return b
}

func (b *Broadcaster[T]) WithMetrics(metrics *StreamMetrics) *Broadcaster[T] {
	b.metrics = metrics

	return b
}

func (b *Broadcaster[T]) WithBufferSize(size int) *Broadcaster[T] {
	if size > 0 {
		b.bufSize = size
	}

	return b
}

// Run starts delivering source values to listeners. Call it once,
// after the initial listeners are subscribed.
func (b *Broadcaster[T]) Run() *Broadcaster[T] {
	select {
	case b.startCh <- struct{}{}:
	case <-b.ctx.Done():
	}

	return b
}

// Subscribe registers a new listener and returns its channel. The channel
// is closed when the listener unsubscribes, the source closes, or the
// context is cancelled.
func (b *Broadcaster[T]) Subscribe() <-chan T {
	listener := make(chan T, b.bufSize)

	select {
	case b.subscribeCh <- listener:
	case <-b.ctx.Done():
		close(listener)
	}

	return listener
}

func (b *Broadcaster[T]) Unsubscribe(listener <-chan T) {
	select {
	case b.unsubscribeCh <- listener:
	case <-b.ctx.Done():
	}
}

func (b *Broadcaster[T]) loop() {
	log.Info().Str("stream", b.name).Msg("[Broadcaster.loop] running...")

	defer b.closeListeners()

	// The source stays nil until Run, so its case never fires early.
	var source <-chan T
	startCh := b.startCh

	for {
		select {
		case <-b.ctx.Done():
			log.Debug().Str("stream", b.name).Msg("[Broadcaster.loop] context cancelled")
			return

		case <-startCh:
			source = b.source
			startCh = nil

		case val, ok := <-source:
			if !ok {
				log.Error().Str("stream", b.name).Msg("[Broadcaster.loop] source closed")
				return
			}

			if b.metrics != nil {
				b.metrics.ReadCount.WithLabelValues(b.name).Inc()
			}

			b.push(val)

		case listener := <-b.subscribeCh:
			b.addListener(listener)

		case listener := <-b.unsubscribeCh:
			b.removeListener(listener)
		}
	}
}

func (b *Broadcaster[T]) push(val T) {
	for _, listener := range b.listeners {
		select {
		case listener <- val:
			if b.metrics != nil {
				b.metrics.WriteCount.WithLabelValues(b.name).Inc()
			}

		default:
			log.Warn().Str("stream", b.name).Msg("[Broadcaster.push] value dismissed, listener buffer is full")
			if b.metrics != nil {
				b.metrics.DropCount.WithLabelValues(b.name).Inc()
			}
		}
	}
}

func (b *Broadcaster[T]) addListener(listener chan T) {
	b.listeners = append(b.listeners, listener)

	if b.metrics != nil {
		b.metrics.ListenerGauge.WithLabelValues(b.name).Set(float64(len(b.listeners)))
	}

	log.Debug().Str("stream", b.name).Msg("[Broadcaster.addListener] listener added")
}

func (b *Broadcaster[T]) removeListener(listenerToRemove <-chan T) {
	for i, listener := range b.listeners {
		if listener == listenerToRemove {
			b.listeners[i] = b.listeners[len(b.listeners)-1]
			b.listeners = b.listeners[:len(b.listeners)-1]
			close(listener)
			break
		}
	}

	if b.metrics != nil {
		b.metrics.ListenerGauge.WithLabelValues(b.name).Set(float64(len(b.listeners)))
	}

	log.Debug().Str("stream", b.name).Msg("[Broadcaster.removeListener] listener removed")
}

func (b *Broadcaster[T]) closeListeners() {
	slice.Map(b.listeners, func(listener chan T) bool {
		close(listener)
		return true
	})

	b.listeners = nil
}
