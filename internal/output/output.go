// Package output renders search results for the CLI. The engine returns
// plain match sets; everything about presentation (actions, colors,
// warnings) lives here.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/linescout/linescout/internal/config"
	"github.com/linescout/linescout/internal/engine"
)

var (
	matchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	errOut   io.Writer
	useColor bool
}

// New creates a Writer. Color is enabled only when out is a terminal.
func New(out, errOut io.Writer) *Writer {
	return &Writer{
		out:      out,
		errOut:   errOut,
		useColor: isTerminal(out),
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render writes the result according to the output action. The boolean
// action prints nothing; its answer travels via the exit status.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Render(action config.Action, req engine.Request, res *engine.Result) {
	switch action {
	case config.ActionPrint:
		for _, line := range res.Matches {
			_, _ = fmt.Fprintln(w.out, w.highlight(line, req))
		}
	case config.ActionFileName:
		if res.Found() {
			_, _ = fmt.Fprintln(w.out, req.Path)
		}
	case config.ActionBoolean:
	}

	for _, skipped := range res.Skipped {
		w.Warningf("skipped %s: %v", skipped.Path, skipped.Err)
	}
}

// highlight wraps every pattern occurrence in the match style. Plain
// output (pipes, boolean mode, no TTY) is left untouched.
//
// Case folding can change a rune's byte length (U+0130 folds shorter,
// U+023A folds longer), so an index found in the folded haystack is not
// a valid index into the original line. foldWithOffsets keeps the
// mapping from folded bytes back to original byte positions.
func (w *Writer) highlight(line string, req engine.Request) string {
	if !w.useColor || req.Pattern == "" {
		return line
	}

	haystack, needle := line, req.Pattern
	var offsets []int
	if req.IgnoreCase {
		needle = foldString(req.Pattern)
		haystack, offsets = foldWithOffsets(line)
	}

	var sb strings.Builder
	prev := 0
	fpos := 0
	for {
		i := strings.Index(haystack[fpos:], needle)
		if i < 0 {
			break
		}
		fstart := fpos + i
		fend := fstart + len(needle)
		start, end := fstart, fend
		if offsets != nil {
			start, end = offsets[fstart], offsets[fend]
		}
		if end > start {
			sb.WriteString(line[prev:start])
			sb.WriteString(matchStyle.Render(line[start:end]))
			prev = end
		}
		fpos = fend
	}
	if prev == 0 {
		return line
	}
	sb.WriteString(line[prev:])
	return sb.String()
}

// foldString lowercases s one rune at a time, the same mapping
// foldWithOffsets applies to the haystack.
func foldString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// foldWithOffsets lowercases s and returns, for every byte of the
// folded string plus one past the end, the original byte offset of the
// rune that byte came from.
func foldWithOffsets(s string) (string, []int) {
	var sb strings.Builder
	sb.Grow(len(s))
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		folded := unicode.ToLower(r)
		for n := 0; n < utf8.RuneLen(folded); n++ {
			offsets = append(offsets, i)
		}
		sb.WriteRune(folded)
	}
	offsets = append(offsets, len(s))
	return sb.String(), offsets
}

// Warningf prints a warning to the error stream.
func (w *Writer) Warningf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if w.useColor {
		msg = warningStyle.Render(msg)
	}
	_, _ = fmt.Fprintln(w.errOut, msg)
}

// Errorf prints an error message to the error stream.
func (w *Writer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.errOut, format+"\n", args...)
}
