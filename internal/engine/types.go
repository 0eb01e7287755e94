// Package engine implements the parallel line search pipeline.
//
// A single-file search runs one producer goroutine (line source + chunk
// distributor) and N matcher workers connected by a bounded batch channel;
// the channel capacity equals the worker count, so a fast reader blocks
// once every worker is busy. Directory searches run the same pipeline per
// file, depth-first.
package engine

import (
	"github.com/linescout/linescout/internal/config"
)

// Request describes one search invocation. It is read-only once handed to
// the engine.
type Request struct {
	// Path is the target file or directory.
	Path string

	// Pattern is the substring to look for.
	Pattern string

	// IgnoreCase enables case-insensitive matching.
	IgnoreCase bool

	// ChunkSize is the number of lines per batch (default: 1000).
	ChunkSize int

	// Workers is the worker count. 0 or 1 selects the sequential path.
	// The caller is responsible for clamping to hardware parallelism.
	Workers int
}

// withDefaults returns a copy with zero values replaced by defaults.
func (r Request) withDefaults() Request {
	if r.ChunkSize <= 0 {
		r.ChunkSize = config.DefaultChunkSize
	}
	if r.Workers <= 0 {
		r.Workers = config.DefaultWorkers
	}
	return r
}

// SkippedEntry records a directory entry that could not be searched.
// Traversal continues past such entries instead of failing the search.
type SkippedEntry struct {
	// Path is the entry that was skipped.
	Path string

	// Err is the read error encountered for the entry.
	Err error
}

// Result is the outcome of a search.
//
// Matches holds every matching line. Order follows the file when the
// search ran sequentially; with multiple workers, batches race and no
// cross-batch order is guaranteed. Skipped lists directory entries that
// failed to read while the rest of the traversal continued.
type Result struct {
	Matches []string
	Skipped []SkippedEntry
}

// Found reports whether the search produced at least one match.
func (r *Result) Found() bool {
	return len(r.Matches) > 0
}
