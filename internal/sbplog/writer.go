package sbplog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"sbpzip/internal/constants"
	pkgerrors "sbpzip/pkg/errors"
	"sbpzip/pkg/sbp"
)

// Writer renders messages as one JSON object per line.
type Writer struct {
	name    string
	buf     *bufio.Writer
	closers []io.Closer
	count   int
}

// Create creates (or truncates) the log at path.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, pkgerrors.ErrIO.WithCause(err).WithDetail("path", path)
	}

	var dst io.Writer = f
	closers := []io.Closer{f}

	if strings.HasSuffix(path, constants.GzipExt) {
		gz := gzip.NewWriter(f)
		dst = gz
		closers = append([]io.Closer{gz}, closers...)
	}

	w := NewWriter(dst, path)
	w.closers = closers
	return w, nil
}

// NewWriter writes to w without taking ownership of it; Close only flushes.
func NewWriter(w io.Writer, name string) *Writer {
	return &Writer{name: name, buf: bufio.NewWriter(w)}
}

func (w *Writer) Write(ctx context.Context, msg *sbp.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return pkgerrors.ErrMalformedRecord.
			WithCause(err).
			WithDetail("path", w.name).
			WithDetail("msg_type", msg.Type.String())
	}
	b = append(b, '\n')

	if _, err := w.buf.Write(b); err != nil {
		return pkgerrors.ErrIO.WithCause(err).WithDetail("path", w.name)
	}
	w.count++
	return nil
}

// Count is the number of records written so far.
func (w *Writer) Count() int {
	return w.count
}

func (w *Writer) Name() string {
	return w.name
}

func (w *Writer) Close() error {
	var errs []error
	if err := w.buf.Flush(); err != nil {
		errs = append(errs, err)
	}
	for _, c := range w.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.closers = nil
	if len(errs) > 0 {
		return pkgerrors.ErrIO.WithCause(errors.Join(errs...)).WithDetail("path", w.name)
	}
	return nil
}
