package fetch

// reader.go holds the io.Reader wrappers applied to upstream response bodies
// before they are decoded:
//
//   - bomReader drops a leading UTF-8 byte order mark
//   - sanitizingReader replaces invalid UTF-8 with U+FFFD
//   - limitedReader fails with ErrResponseTooLarge past a byte budget
//
// wrapBody composes them in that order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomReader skips a UTF-8 BOM at the very start of the stream.
type bomReader struct {
	br      *bufio.Reader
	checked bool
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{br: bufio.NewReader(r)}
}

func (r *bomReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			r.br.Discard(len(utf8BOM))
		}
	}
	return r.br.Read(p)
}

// sanitizingReader replaces every invalid UTF-8 byte with the replacement
// character. A multi-byte sequence split across reads is held back until it
// is complete or the source ends.
type sanitizingReader struct {
	src     io.Reader
	buf     []byte // raw bytes not yet decoded
	out     []byte // decoded bytes not yet returned
	srcDone bool
	err     error
}

func newSanitizingReader(r io.Reader) *sanitizingReader {
	return &sanitizingReader{src: r}
}

func (r *sanitizingReader) Read(p []byte) (int, error) {
	for len(r.out) == 0 {
		if r.srcDone {
			return 0, r.err
		}
		r.fill(len(p))
	}
	n := copy(p, r.out)
	r.out = r.out[n:]
	return n, nil
}

func (r *sanitizingReader) fill(size int) {
	if size < utf8.UTFMax {
		size = utf8.UTFMax
	}
	chunk := make([]byte, size)
	n, err := r.src.Read(chunk)
	r.buf = append(r.buf, chunk[:n]...)
	if err != nil {
		r.srcDone = true
		r.err = err
	}

	i := 0
	for i < len(r.buf) {
		if !r.srcDone && !utf8.FullRune(r.buf[i:]) {
			break
		}
		ru, width := utf8.DecodeRune(r.buf[i:])
		if ru == utf8.RuneError && width == 1 {
			r.out = utf8.AppendRune(r.out, utf8.RuneError)
		} else {
			r.out = append(r.out, r.buf[i:i+width]...)
		}
		i += width
	}
	r.buf = append(r.buf[:0], r.buf[i:]...)
}

// limitedReader returns ErrResponseTooLarge once more than max bytes have
// been read from src.
type limitedReader struct {
	src  io.Reader
	left int64
}

func newLimitedReader(r io.Reader, max int64) *limitedReader {
	return &limitedReader{src: r, left: max}
}

func (r *limitedReader) Read(p []byte) (int, error) {
	if r.left < 0 {
		return 0, ErrResponseTooLarge
	}
	if int64(len(p)) > r.left+1 {
		p = p[:r.left+1]
	}
	n, err := r.src.Read(p)
	r.left -= int64(n)
	if r.left < 0 {
		return 0, ErrResponseTooLarge
	}
	return n, err
}

// wrapBody limits, de-BOMs and sanitizes an upstream body.
func wrapBody(r io.Reader, maxBytes int64) io.Reader {
	return newSanitizingReader(newBOMReader(newLimitedReader(r, maxBytes)))
}
