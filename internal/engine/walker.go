package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/linescout/linescout/internal/errors"
)

// searchDir lists dir and runs the single-file pipeline on every regular
// file, recursing into subdirectories depth-first. An entry that fails to
// read is recorded on res.Skipped and traversal continues; only a failure
// to list dir itself is returned. Symlinks and other non-regular entries
// are not followed.
func (e *Engine) searchDir(ctx context.Context, dir string, m *Matcher, req Request, res *Result) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.ReadError(fmt.Sprintf("cannot list directory %s", dir), err).
			WithDetail("path", dir)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.Type().IsRegular():
			matches, err := e.searchFile(ctx, path, m, req)
			if err != nil {
				if isCancellation(err) {
					return err
				}
				e.log.Warn("entry_skipped",
					slog.String("path", path),
					slog.String("error", err.Error()))
				res.Skipped = append(res.Skipped, SkippedEntry{Path: path, Err: err})
				continue
			}
			res.Matches = append(res.Matches, matches...)

		case entry.IsDir():
			if err := e.searchDir(ctx, path, m, req, res); err != nil {
				if isCancellation(err) {
					return err
				}
				// A subdirectory that cannot be listed is skipped the
				// same way as an unreadable file.
				e.log.Warn("entry_skipped",
					slog.String("path", path),
					slog.String("error", err.Error()))
				res.Skipped = append(res.Skipped, SkippedEntry{Path: path, Err: err})
			}

		default:
			// Symlinks, sockets, devices. Following symlinks would need
			// cycle detection, which the walker does not do.
			e.log.Debug("entry_ignored", slog.String("path", path))
		}
	}
	return nil
}

// isCancellation reports whether err came from the context rather than
// from the filesystem.
func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
