// Package input handles line-oriented source files for the batch front
// end and the catalog build: plain text or gzip, detected by magic bytes
// rather than file extension.
package input

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	perr "github.com/attunepartners/prefix-match/internal/platform/errors"
)

// maxLineBytes bounds a single input line; URLs and short text fit with
// plenty of room.
const maxLineBytes = 1024 * 1024

// OpenReader opens path as a byte stream, transparently decompressing
// gzip content (sniffed via the 1f 8b magic bytes). Callers own the
// returned closer.
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "open %s", path)
	}

	br := bufio.NewReaderSize(f, 64*1024)
	magic, _ := br.Peek(2)
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "gzip open %s", path)
		}
		return &streamReader{f: f, gz: gz, r: gz}, nil
	}
	return &streamReader{f: f, r: br}, nil
}

type streamReader struct {
	f  *os.File
	gz *gzip.Reader
	r  io.Reader
}

func (s *streamReader) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *streamReader) Close() error {
	var first error
	if s.gz != nil {
		if err := s.gz.Close(); err != nil {
			first = err
		}
	}
	if err := s.f.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// LineReader streams lines from a possibly-compressed file.
type LineReader struct {
	rc io.ReadCloser
	sc *bufio.Scanner
}

// Open opens path for line reading.
func Open(path string) (*LineReader, error) {
	rc, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &LineReader{rc: rc, sc: sc}, nil
}

// Scan advances to the next line; false at EOF or error.
func (lr *LineReader) Scan() bool { return lr.sc.Scan() }

// Text returns the current line without its newline.
func (lr *LineReader) Text() string { return lr.sc.Text() }

// Err returns the first non-EOF error seen while scanning.
func (lr *LineReader) Err() error { return lr.sc.Err() }

// Close releases the underlying file and decompressor.
func (lr *LineReader) Close() error { return lr.rc.Close() }

// ReadAllLines slurps every line of path into memory; batch matching
// wants the whole corpus up front so workers can index into it.
func ReadAllLines(path string) ([]string, error) {
	lr, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lr.Close() }()

	lines := make([]string, 0, 1024)
	for lr.Scan() {
		lines = append(lines, lr.Text())
	}
	if err := lr.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "reading %s", path)
	}
	return lines, nil
}
