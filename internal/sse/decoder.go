// Package sse implements the UTF-8-safe Server-Sent-Events byte assembly
// and line framing shared by every streaming provider's transport. It
// knows nothing about any one wire dialect's event names: callers supply a
// Handler that receives complete "data: ..." payloads in source order.
package sse

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	maxPendingBytes = 4
	maxLineChars    = 50000
)

// Handler is invoked once per complete line beginning with "data: ". It
// returns done=true to stop decoding early (e.g. on "[DONE]").
type Handler func(data string) (done bool, err error)

// Decoder incrementally assembles raw bytes from an SSE body into
// complete lines and dispatches "data: " payloads to a Handler. It is not
// safe for concurrent use.
type Decoder struct {
	byteBuffer []byte
	lineBuffer []byte
	handler    Handler
	done       bool
	sawFirst   bool
}

// NewDecoder constructs a Decoder that calls handler for each "data: "
// line it assembles.
func NewDecoder(handler Handler) *Decoder {
	return &Decoder{handler: handler}
}

// ErrInvalidUTF8 is returned when byteBuffer accumulates more than 4
// pending bytes without completing a valid UTF-8 sequence.
type ErrInvalidUTF8 struct{}

func (ErrInvalidUTF8) Error() string { return "sse: invalid utf-8 sequence in stream" }

// ErrLineTooLong is returned when a line exceeds maxLineChars before a
// newline is seen.
type ErrLineTooLong struct{}

func (ErrLineTooLong) Error() string { return "sse: line exceeds maximum buffered length" }

// Write feeds raw bytes from the HTTP response body into the decoder. It
// may be called repeatedly as bytes arrive; it returns as soon as the
// handler signals done, or on the first decode/line error.
func (d *Decoder) Write(p []byte) error {
	if d.done {
		return nil
	}
	if !d.sawFirst {
		d.sawFirst = true
		p = stripLeadingBOM(p)
	}
	for _, b := range p {
		d.byteBuffer = append(d.byteBuffer, b)

		for len(d.byteBuffer) > 0 {
			r, size := utf8.DecodeRune(d.byteBuffer)
			if r == utf8.RuneError && size <= 1 {
				// Incomplete (or invalid) sequence so far; wait for more
				// bytes unless we've exceeded the pending-byte cap.
				if len(d.byteBuffer) > maxPendingBytes {
					return ErrInvalidUTF8{}
				}
				break
			}
			d.lineBuffer = append(d.lineBuffer, d.byteBuffer[:size]...)
			d.byteBuffer = d.byteBuffer[size:]

			if len(d.lineBuffer) > maxLineChars {
				return ErrLineTooLong{}
			}
		}

		if err := d.drainLines(); err != nil {
			return err
		}
		if d.done {
			return nil
		}
	}
	return nil
}

func (d *Decoder) drainLines() error {
	for {
		idx := indexByte(d.lineBuffer, '\n')
		if idx < 0 {
			return nil
		}
		line := d.lineBuffer[:idx]
		d.lineBuffer = d.lineBuffer[idx+1:]

		line = trimCR(line)
		if len(line) >= 6 && string(line[:6]) == "data: " {
			done, err := d.handler(string(line[6:]))
			if err != nil {
				return err
			}
			if done {
				d.done = true
				return nil
			}
		} else if len(line) == 5 && string(line) == "data:" {
			done, err := d.handler("")
			if err != nil {
				return err
			}
			if done {
				d.done = true
				return nil
			}
		}
	}
}

// stripLeadingBOM removes a UTF-8 byte-order-mark some proxies prepend to
// the very first chunk of an SSE body, which would otherwise corrupt the
// opening "data: " line. Bytes that don't carry a BOM pass through
// unchanged.
func stripLeadingBOM(p []byte) []byte {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), p)
	if err != nil {
		return p
	}
	return out
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}
