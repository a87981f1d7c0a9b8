package logging

import (
	"bytes"
	"io"
)

// PrefixWriter decorates every complete line written through it with a
// fixed prefix. Partial lines are buffered until their newline arrives so a
// prefix never lands mid-line.
type PrefixWriter struct {
	prefix []byte
	w      io.Writer
	buf    bytes.Buffer
}

// NewPrefixWriter wraps w.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{prefix: []byte(prefix), w: w}
}

// Write implements io.Writer.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.buf.Write(p)

	for {
		data := pw.buf.Bytes()
		nl := bytes.IndexByte(data, '\n')
		if nl < 0 {
			return len(p), nil
		}
		if _, err := pw.w.Write(pw.prefix); err != nil {
			return len(p), err
		}
		if _, err := pw.w.Write(data[:nl+1]); err != nil {
			return len(p), err
		}
		pw.buf.Next(nl + 1)
	}
}
