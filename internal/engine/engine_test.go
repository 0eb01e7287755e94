package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linescout/linescout/internal/errors"
)

// scenarioLines is the canonical fixture used across the engine tests.
var scenarioLines = []string{
	"This is the first line",
	"This is the second line with the hello world phrase in it",
	"He's got the whole worLd in his hands",
	"This is the last line - nothing special about it",
}

func writeLines(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func TestSearchCaseSensitive(t *testing.T) {
	path := writeLines(t, t.TempDir(), "input.txt", scenarioLines)
	e := newEngine(t)

	res, err := e.Search(context.Background(), Request{Path: path, Pattern: "world"})
	require.NoError(t, err)
	assert.Equal(t, []string{"This is the second line with the hello world phrase in it"}, res.Matches)
	assert.Empty(t, res.Skipped)
	assert.True(t, res.Found())
}

func TestSearchIgnoreCase(t *testing.T) {
	path := writeLines(t, t.TempDir(), "input.txt", scenarioLines)
	e := newEngine(t)

	res, err := e.Search(context.Background(), Request{Path: path, Pattern: "world", IgnoreCase: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"This is the second line with the hello world phrase in it",
		"He's got the whole worLd in his hands",
	}, res.Matches)
}

func TestSearchPatternEqualsWholeLine(t *testing.T) {
	path := writeLines(t, t.TempDir(), "input.txt", scenarioLines)
	e := newEngine(t)

	res, err := e.Search(context.Background(), Request{Path: path, Pattern: scenarioLines[0]})
	require.NoError(t, err)
	assert.Equal(t, []string{scenarioLines[0]}, res.Matches)
}

func TestSearchEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	e := newEngine(t)

	res, err := e.Search(context.Background(), Request{Path: path, Pattern: "anything"})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.False(t, res.Found())
}

func TestSearchVeryLongLine(t *testing.T) {
	// Well past any internal buffer size; the reader must grow with the
	// line rather than abort on it.
	long := strings.Repeat("x", 8<<20) + " needle " + strings.Repeat("y", 1<<20)
	path := writeLines(t, t.TempDir(), "long.txt", []string{"short filler", long, "short needle line"})
	e := newEngine(t)

	res, err := e.Search(context.Background(), Request{Path: path, Pattern: "needle"})
	require.NoError(t, err)
	assert.Equal(t, []string{long, "short needle line"}, res.Matches)
}

func TestSearchFileWithoutTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unterminated.txt")
	require.NoError(t, os.WriteFile(path, []byte("first needle\nlast needle without newline"), 0o644))
	e := newEngine(t)

	res, err := e.Search(context.Background(), Request{Path: path, Pattern: "needle"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first needle", "last needle without newline"}, res.Matches)
}

func TestSearchPathNotFound(t *testing.T) {
	e := newEngine(t)

	_, err := e.Search(context.Background(), Request{
		Path:    filepath.Join(t.TempDir(), "does-not-exist.txt"),
		Pattern: "world",
	})
	require.Error(t, err)
	assert.True(t, errors.IsPathNotFound(err))
}

// generateCorpus writes total lines of which every tenth contains the
// needle, returning the path and the expected match count.
func generateCorpus(t *testing.T, dir string, total int) (string, int) {
	t.Helper()
	lines := make([]string, total)
	want := 0
	for i := range lines {
		if i%10 == 0 {
			lines[i] = fmt.Sprintf("line %d carries the needle token", i)
			want++
		} else {
			lines[i] = fmt.Sprintf("line %d is ordinary filler text", i)
		}
	}
	return writeLines(t, dir, "corpus.txt", lines), want
}

func TestSequentialAndParallelAgree(t *testing.T) {
	path, want := generateCorpus(t, t.TempDir(), 5000)
	e := newEngine(t)
	ctx := context.Background()

	seq, err := e.Search(ctx, Request{Path: path, Pattern: "needle", Workers: 1})
	require.NoError(t, err)
	require.Len(t, seq.Matches, want)

	for _, workers := range []int{2, 4, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			par, err := e.Search(ctx, Request{Path: path, Pattern: "needle", Workers: workers})
			require.NoError(t, err)
			assert.ElementsMatch(t, seq.Matches, par.Matches)
		})
	}
}

func TestChunkSizeDoesNotChangeMatches(t *testing.T) {
	path, want := generateCorpus(t, t.TempDir(), 3000)
	e := newEngine(t)
	ctx := context.Background()

	baseline, err := e.Search(ctx, Request{Path: path, Pattern: "needle", Workers: 1})
	require.NoError(t, err)
	require.Len(t, baseline.Matches, want)

	for _, chunkSize := range []int{1, 7, 10000} {
		t.Run(fmt.Sprintf("chunk=%d", chunkSize), func(t *testing.T) {
			res, err := e.Search(ctx, Request{
				Path:      path,
				Pattern:   "needle",
				ChunkSize: chunkSize,
				Workers:   4,
			})
			require.NoError(t, err)
			assert.ElementsMatch(t, baseline.Matches, res.Matches)
		})
	}
}

// The smallest bounded queue the parallel path can have: two workers,
// one line per batch. A multi-thousand-line file must complete without
// deadlock under this maximal backpressure.
func TestMaximalBackpressureCompletes(t *testing.T) {
	path, want := generateCorpus(t, t.TempDir(), 4000)
	e := newEngine(t)

	done := make(chan struct{})
	var res *Result
	var err error
	go func() {
		defer close(done)
		res, err = e.Search(context.Background(), Request{
			Path:      path,
			Pattern:   "needle",
			ChunkSize: 1,
			Workers:   2,
		})
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("search did not complete under maximal backpressure")
	}

	require.NoError(t, err)
	assert.Len(t, res.Matches, want)
}

func TestSequentialPreservesFileOrder(t *testing.T) {
	lines := make([]string, 500)
	for i := range lines {
		lines[i] = fmt.Sprintf("needle %04d", i)
	}
	path := writeLines(t, t.TempDir(), "ordered.txt", lines)
	e := newEngine(t)

	res, err := e.Search(context.Background(), Request{Path: path, Pattern: "needle", Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, lines, res.Matches)
}

func TestSearchCancelled(t *testing.T) {
	path, _ := generateCorpus(t, t.TempDir(), 20000)
	e := newEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Search(ctx, Request{Path: path, Pattern: "needle", Workers: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultCacheHitsOnUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeLines(t, dir, "input.txt", scenarioLines)
	e := newEngine(t, WithResultCache(16))
	ctx := context.Background()
	req := Request{Path: path, Pattern: "world"}

	first, err := e.Search(ctx, req)
	require.NoError(t, err)

	second, err := e.Search(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.Matches, second.Matches)

	// Callers own the returned MatchSet; mutating it must not poison
	// later lookups.
	second.Matches[0] = "mutated"
	third, err := e.Search(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.Matches, third.Matches)
}

func TestResultCacheMissesOnModifiedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeLines(t, dir, "input.txt", scenarioLines)
	e := newEngine(t, WithResultCache(16))
	ctx := context.Background()
	req := Request{Path: path, Pattern: "world"}

	first, err := e.Search(ctx, req)
	require.NoError(t, err)
	require.Len(t, first.Matches, 1)

	// Rewrite with a second matching line. Bump the mtime explicitly in
	// case the filesystem clock is too coarse to notice the rewrite.
	updated := append([]string{"a brand new world order"}, scenarioLines...)
	writeLines(t, dir, "input.txt", updated)
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	second, err := e.Search(ctx, req)
	require.NoError(t, err)
	assert.Len(t, second.Matches, 2)
}

func TestResultCacheMissesOnDifferentPattern(t *testing.T) {
	dir := t.TempDir()
	path := writeLines(t, dir, "input.txt", scenarioLines)
	e := newEngine(t, WithResultCache(16))
	ctx := context.Background()

	first, err := e.Search(ctx, Request{Path: path, Pattern: "world"})
	require.NoError(t, err)
	require.Len(t, first.Matches, 1)

	// Same unchanged file, different pattern: the cached entry must not
	// answer for it.
	second, err := e.Search(ctx, Request{Path: path, Pattern: "first line"})
	require.NoError(t, err)
	assert.Equal(t, []string{"This is the first line"}, second.Matches)

	// Same pattern, different fold mode.
	third, err := e.Search(ctx, Request{Path: path, Pattern: "world", IgnoreCase: true})
	require.NoError(t, err)
	assert.Len(t, third.Matches, 2)
}

func TestInvalidateCache(t *testing.T) {
	dir := t.TempDir()
	path := writeLines(t, dir, "input.txt", scenarioLines)
	e := newEngine(t, WithResultCache(16))
	ctx := context.Background()

	_, err := e.Search(ctx, Request{Path: path, Pattern: "world"})
	require.NoError(t, err)

	e.InvalidateCache()

	res, err := e.Search(ctx, Request{Path: path, Pattern: "world"})
	require.NoError(t, err)
	assert.Len(t, res.Matches, 1)
}
