package sbplog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"sbpzip/internal/constants"
	pkgerrors "sbpzip/pkg/errors"
	"sbpzip/pkg/sbp"
)

// Reader is a lazy, forward-only record source over one log.
type Reader struct {
	name    string
	scanner *bufio.Scanner
	closers []io.Closer
	line    int
}

// Open opens the log at path for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.ErrIO.WithCause(err).WithDetail("path", path)
	}

	var src io.Reader = f
	closers := []io.Closer{f}

	if strings.HasSuffix(path, constants.GzipExt) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, pkgerrors.ErrIO.WithCause(err).WithDetail("path", path)
		}
		src = gz
		closers = append([]io.Closer{gz}, closers...)
	}

	r := NewReader(src, path)
	r.closers = closers
	return r, nil
}

// NewReader reads records from r. name is only used in errors.
func NewReader(r io.Reader, name string) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), constants.MaxRecordSize)
	return &Reader{name: name, scanner: scanner}
}

// Next returns the next message, or io.EOF once the log is exhausted. Blank
// lines are skipped.
func (r *Reader) Next(ctx context.Context) (*sbp.Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				if errors.Is(err, bufio.ErrTooLong) {
					return nil, r.malformed(err, r.line+1)
				}
				return nil, pkgerrors.ErrIO.WithCause(err).WithDetail("path", r.name)
			}
			return nil, io.EOF
		}
		r.line++

		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		msg, err := sbp.ParseMessage(line)
		if err != nil {
			return nil, r.malformed(err, r.line)
		}
		return msg, nil
	}
}

func (r *Reader) malformed(err error, line int) error {
	return pkgerrors.ErrMalformedRecord.
		WithCause(err).
		WithDetail("path", r.name).
		WithDetail("line", line)
}

// Line is the number of the last line consumed.
func (r *Reader) Line() int {
	return r.line
}

func (r *Reader) Name() string {
	return r.name
}

func (r *Reader) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	if len(errs) > 0 {
		return pkgerrors.ErrIO.WithCause(errors.Join(errs...)).WithDetail("path", r.name)
	}
	return nil
}
