package handlers

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Collector drains a channel in the background and keeps everything it
// receives. Read blocks until the channel is closed.
type Collector[T any] struct {
	values []T
	wg     sync.WaitGroup
}

func Collect[T any](ch <-chan T) *Collector[T] {
	c := &Collector[T]{
		values: []T{},
	}

	c.wg.Add(1)
	go c.drain(ch)

	return c
}

func (c *Collector[T]) drain(ch <-chan T) {
	defer c.wg.Done()

	log.Trace().Msg("[Collector.drain] reading channel..")
	for v := range ch {
		c.values = append(c.values, v)
	}

	log.Trace().Int("len", len(c.values)).Msg("[Collector.drain] channel drained")
}

// Read waits for the source channel to close and returns a copy of the
// collected values. It may be called more than once.
func (c *Collector[T]) Read() []T {
	c.wg.Wait()

	result := make([]T, len(c.values))
	copy(result, c.values)

	return result
}
