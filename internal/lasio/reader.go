package lasio

// reader.go provides the streaming readers used before decoding:
//
//   - bomReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - utf8Sanitizer: replaces invalid UTF-8 bytes with '?'
//   - CountingReader: tracks bytes read for size limits and progress

import (
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomReader skips a UTF-8 BOM at the start of the stream.
type bomReader struct {
	r       io.Reader
	checked bool
	head    []byte // bytes read during the BOM check that belong to the data
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{r: r}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		var buf [3]byte
		n, err := io.ReadFull(b.r, buf[:])
		if n == 3 && buf == [3]byte(utf8BOM) {
			n = 0
		}
		b.head = append([]byte(nil), buf[:n]...)
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil && (err != io.EOF || len(b.head) == 0) {
			return 0, err
		}
	}

	if len(b.head) > 0 {
		n := copy(p, b.head)
		b.head = b.head[n:]
		return n, nil
	}
	return b.r.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly. An
// incomplete multi-byte sequence at the end of a read is held back until the
// next read completes it.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	offset := copy(p, s.pending)
	s.pending = s.pending[:copy(s.pending, s.pending[offset:])]

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}
	if isASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place and returns the number of bytes to hand
// out. Trailing bytes of an unfinished rune go to pending unless atEOF.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}
		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// CountingReader tracks bytes read. Total is the expected size when known.
type CountingReader struct {
	r         io.Reader
	BytesRead int64
	Total     int64
}

// NewCountingReader wraps r. Pass total 0 when the size is unknown.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{r: r, Total: total}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage, or 0 when the total
// is unknown.
func (c *CountingReader) Progress() int {
	if c.Total <= 0 {
		return 0
	}
	return int(min(c.BytesRead*100/c.Total, 100))
}
