package catalog

// streaming.go wraps a price list reader so the CSV parser only sees clean
// UTF-8:
//
//   - a leading UTF-8 BOM (written by Excel on Windows) is dropped
//   - invalid UTF-8 sequences become U+FFFD
//   - bytes consumed from the source are counted
//
// The wrapper keeps O(buffer) memory regardless of file size.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SourceReader is an io.Reader that strips a BOM and sanitizes UTF-8.
type SourceReader struct {
	br         *bufio.Reader
	bomChecked bool
	pending    []byte // encoded rune that did not fit into the last Read

	// BytesRead counts bytes consumed from the underlying reader.
	BytesRead int64
	// Replaced counts invalid bytes replaced with U+FFFD.
	Replaced int
}

// NewSourceReader wraps r.
func NewSourceReader(r io.Reader) *SourceReader {
	return &SourceReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *SourceReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if !r.bomChecked {
		r.bomChecked = true
		if head, err := r.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			discarded, _ := r.br.Discard(len(utf8BOM))
			r.BytesRead += int64(discarded)
		}
	}

	n := 0
	for n < len(p) {
		if len(r.pending) > 0 {
			c := copy(p[n:], r.pending)
			r.pending = r.pending[c:]
			n += c
			continue
		}

		ru, size, err := r.br.ReadRune()
		if err != nil {
			if err == io.EOF && n > 0 {
				return n, nil
			}
			return n, err
		}
		r.BytesRead += int64(size)

		if ru == utf8.RuneError && size == 1 {
			r.Replaced++
		}

		var buf [utf8.UTFMax]byte
		w := utf8.EncodeRune(buf[:], ru)
		c := copy(p[n:], buf[:w])
		n += c
		if c < w {
			r.pending = append([]byte(nil), buf[c:w]...)
		}
	}

	return n, nil
}
