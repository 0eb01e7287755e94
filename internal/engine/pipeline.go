package engine

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is how many lines the sequential path processes
// between context checks.
const cancelCheckInterval = 4096

// searchFile runs the single-file pipeline and returns the matching
// lines. Workers <= 1 takes the sequential path; otherwise the bounded
// worker-pool pipeline runs.
func (e *Engine) searchFile(ctx context.Context, path string, m *Matcher, req Request) ([]string, error) {
	if e.cache != nil {
		if matches, ok := e.cache.lookup(path, m); ok {
			e.log.Debug("cache_hit", slog.String("path", path))
			return matches, nil
		}
	}

	var matches []string
	var err error
	if req.Workers <= 1 {
		matches, err = e.searchFileSequential(ctx, path, m)
	} else {
		matches, err = e.searchFileParallel(ctx, path, m, req.ChunkSize, req.Workers)
	}
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.cache.store(path, m, matches)
	}
	return matches, nil
}

// searchFileSequential matches lines inline, without batching or
// goroutines. Match order follows file order.
func (e *Engine) searchFileSequential(ctx context.Context, path string, m *Matcher) ([]string, error) {
	src, err := newLineSource(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	var matches []string
	for n := 0; src.Next(); n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if line := src.Line(); m.Match(line) {
			matches = append(matches, line)
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

// searchFileParallel runs one producer plus `workers` matcher goroutines.
//
// The batches channel is the bounded queue: capacity equals the worker
// count, so the producer blocks once every worker is busy and every slot
// is full. Workers exit when the channel is closed and drained. The
// results channel is drained concurrently on the calling goroutine, so
// workers never stall on it; it is closed once the last worker returns.
// Producer and worker errors surface through the errgroup after the
// drain completes, which is also how a mid-stream read error is reported
// only after already-dispatched batches have been handled.
func (e *Engine) searchFileParallel(ctx context.Context, path string, m *Matcher, chunkSize, workers int) ([]string, error) {
	batches := make(chan []string, workers)
	results := make(chan []string, workers)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return readChunks(gctx, path, chunkSize, batches)
	})

	var active sync.WaitGroup
	active.Add(workers)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			defer active.Done()
			return matchBatches(gctx, m, batches, results)
		})
	}

	go func() {
		active.Wait()
		close(results)
	}()

	var matches []string
	for batch := range results {
		matches = append(matches, batch...)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matches, nil
}

// readChunks is the producer: it reads lines from path, groups them into
// batches of up to chunkSize, and sends them on the bounded channel. The
// channel is always closed on return so workers terminate. A partial
// trailing batch is sent only when reading finished cleanly.
func readChunks(ctx context.Context, path string, chunkSize int, batches chan<- []string) error {
	defer close(batches)

	src, err := newLineSource(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	batch := make([]string, 0, chunkSize)
	for src.Next() {
		batch = append(batch, src.Line())
		if len(batch) >= chunkSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
			batch = make([]string, 0, chunkSize)
		}
	}
	if err := src.Err(); err != nil {
		return err
	}

	if len(batch) > 0 {
		select {
		case batches <- batch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// matchBatches is the worker loop: pop a batch, keep its matching lines,
// forward non-empty results. Within one batch the match order follows
// the batch; across workers no order is guaranteed.
func matchBatches(ctx context.Context, m *Matcher, batches <-chan []string, results chan<- []string) error {
	for {
		select {
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			var matched []string
			for _, line := range batch {
				if m.Match(line) {
					matched = append(matched, line)
				}
			}
			if len(matched) == 0 {
				continue
			}
			select {
			case results <- matched:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
