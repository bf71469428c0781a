package stream

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Batcher groups values from a source channel into fixed-size batches and
// hands them to a batch handler. Handlers run on a bounded worker pool;
// when every worker is busy the batcher stops reading the source, which is
// the backpressure signal for upstream producers.
type Batcher[T any] struct {
	name    string
	size    int
	workers int

	source <-chan T
}

func NewBatcher[T any](name string, source <-chan T, size int) *Batcher[T] {
	if size < 1 {
		size = 1
	}

	return &Batcher[T]{
		name:    name,
		size:    size,
		workers: 1,

		source: source,
	}
}

func (b *Batcher[T]) WithWorkers(workers int) *Batcher[T] {
	if workers > 0 {
		b.workers = workers
	}

	return b
}

// Run reads the source until it closes or the context is cancelled. The
// first handler error cancels in-flight work and is returned. A partial
// batch left when the source closes is flushed.
func (b *Batcher[T]) Run(ctx context.Context, handle func(ctx context.Context, batch []T) error) error {
	log.Info().Str("batcher", b.name).Int("size", b.size).Int("workers", b.workers).Msg("[Batcher.Run] running...")

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(b.workers)

	batch := make([]T, 0, b.size)
	flush := func() {
		if len(batch) == 0 {
			return
		}

		full := batch
		batch = make([]T, 0, b.size)

		group.Go(func() error {
			return handle(ctx, full)
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("batcher", b.name).Msg("[Batcher.Run] context cancelled")
			if err := group.Wait(); err != nil {
				return err
			}
			return ctx.Err()

		case val, ok := <-b.source:
			if !ok {
				log.Debug().Str("batcher", b.name).Msg("[Batcher.Run] source closed, flushing")
				flush()
				return group.Wait()
			}

			batch = append(batch, val)
			if len(batch) == b.size {
				flush()
			}
		}
	}
}
