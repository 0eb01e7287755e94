package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/linescout/linescout/internal/errors"
)

// Engine runs searches. The zero-value construction path is New(); an
// Engine is safe for repeated Search calls.
type Engine struct {
	log       *slog.Logger
	cache     *resultCache
	cacheSize int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithResultCache enables the per-file result cache with the given
// maximum number of entries. Intended for watch mode, where the same
// tree is searched repeatedly.
func WithResultCache(size int) Option {
	return func(e *Engine) {
		e.cacheSize = size
	}
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheSize > 0 {
		cache, err := newResultCache(e.cacheSize)
		if err != nil {
			return nil, errors.InternalError("cannot create result cache", err)
		}
		e.cache = cache
	}
	return e, nil
}

// Search runs the request and returns the match set.
//
// A missing path is reported as a path-not-found error before any
// traversal starts. A read failure on a single-file search aborts that
// search; the same failure on a directory entry is recorded on
// Result.Skipped and the traversal continues.
func (e *Engine) Search(ctx context.Context, req Request) (*Result, error) {
	req = req.withDefaults()

	info, err := os.Stat(req.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.PathNotFound(req.Path)
		}
		return nil, errors.ReadError(fmt.Sprintf("cannot stat %s", req.Path), err)
	}

	matcher := NewMatcher(req.Pattern, req.IgnoreCase)

	start := time.Now()
	e.log.Debug("search_started",
		slog.String("path", req.Path),
		slog.String("pattern", req.Pattern),
		slog.Bool("ignore_case", req.IgnoreCase),
		slog.Int("chunk_size", req.ChunkSize),
		slog.Int("workers", req.Workers))

	res := &Result{}
	if info.IsDir() {
		err = e.searchDir(ctx, req.Path, matcher, req, res)
	} else {
		res.Matches, err = e.searchFile(ctx, req.Path, matcher, req)
	}
	if err != nil {
		return nil, err
	}

	e.log.Debug("search_finished",
		slog.String("path", req.Path),
		slog.Int("matches", len(res.Matches)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Duration("elapsed", time.Since(start)))

	return res, nil
}

// InvalidateCache drops all cached per-file results. Watch mode calls
// this when the tree structure changes in ways the per-file metadata
// check cannot see (renames, deletions).
func (e *Engine) InvalidateCache() {
	if e.cache != nil {
		e.cache.purge()
	}
}
