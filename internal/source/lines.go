package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrOpen is returned when an input cannot be opened or its compressed
// stream cannot be initialized.
var ErrOpen = errors.New("cannot open input")

// Stdin is the path that selects standard input.
const Stdin = "-"

// Lines is a pull-based iterator over the lines of an input.
type Lines struct {
	reader  *bufio.Reader
	closers []io.Closer
	line    string
	number  int
	err     error
	done    bool
}

// Open opens path for line-by-line reading.
func Open(path string) (*Lines, error) {
	if path == Stdin {
		return NewLines(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	r, closer, err := decompress(path, f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}

	lines := NewLines(r)
	if closer != nil {
		lines.closers = append(lines.closers, closer)
	}
	lines.closers = append(lines.closers, f)
	return lines, nil
}

// NewLines wraps an already open reader. The caller keeps ownership of r.
func NewLines(r io.Reader) *Lines {
	return &Lines{reader: bufio.NewReaderSize(r, 64*1024)}
}

// decompress picks a decoder from the file extension
func decompress(path string, f *os.File) (io.Reader, io.Closer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return zr, closerFunc(zr.Close), nil
	case ".lz4":
		return lz4.NewReader(f), nil, nil
	default:
		return f, nil, nil
	}
}

type closerFunc func()

func (fn closerFunc) Close() error {
	fn()
	return nil
}

// Next advances to the next line. It returns false at end of input or on a
// read error, which is then reported by Err.
func (l *Lines) Next() bool {
	if l.done {
		return false
	}

	text, err := l.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		l.err = err
		l.done = true
		return false
	}
	if errors.Is(err, io.EOF) {
		l.done = true
		if text == "" {
			return false
		}
	}

	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")

	l.line = text
	l.number++
	return true
}

// Text returns the current line without its terminator.
func (l *Lines) Text() string {
	return l.line
}

// Number returns the 1-based physical number of the current line.
func (l *Lines) Number() int {
	return l.number
}

// Err returns the first read error encountered, if any.
func (l *Lines) Err() error {
	return l.err
}

// Close releases the underlying file and decoder.
func (l *Lines) Close() error {
	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.closers = nil
	return errors.Join(errs...)
}
