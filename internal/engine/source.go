package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/linescout/linescout/internal/errors"
)

// lineSource yields the lines of a file in order, without terminators.
// It is forward-only and owns the underlying file handle; only the
// goroutine that created it may touch it. Line length is unbounded: the
// reader grows with the longest line instead of capping it.
type lineSource struct {
	path   string
	file   *os.File
	reader *bufio.Reader
	line   string
	lineNo int
	err    error
	eof    bool
}

// newLineSource opens path for line-by-line reading.
func newLineSource(path string) (*lineSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ReadError(fmt.Sprintf("cannot open %s", path), err).
			WithDetail("path", path)
	}

	return &lineSource{path: path, file: f, reader: bufio.NewReader(f)}, nil
}

// Next advances to the next line. It returns false at end of input or on
// a read failure; Err distinguishes the two.
func (s *lineSource) Next() bool {
	if s.err != nil || s.eof {
		return false
	}

	line, err := s.reader.ReadString('\n')
	switch {
	case err == io.EOF:
		s.eof = true
		if line == "" {
			return false
		}
	case err != nil:
		s.err = err
		return false
	}

	line = strings.TrimSuffix(line, "\n")
	s.line = strings.TrimSuffix(line, "\r")
	s.lineNo++
	return true
}

// Line returns the current line.
func (s *lineSource) Line() string {
	return s.line
}

// Err returns the read error that stopped the scan, if any, wrapped as a
// structured read error.
func (s *lineSource) Err() error {
	if s.err != nil {
		return errors.ReadError(fmt.Sprintf("read failed for %s", s.path), s.err).
			WithDetail("path", s.path).
			WithDetail("line", strconv.Itoa(s.lineNo+1))
	}
	return nil
}

// Close releases the file handle.
func (s *lineSource) Close() error {
	return s.file.Close()
}
