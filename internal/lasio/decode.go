package lasio

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding names the text encoding of a LAS file.
type Encoding string

const (
	// EncodingAuto decodes UTF-8 and falls back to Windows-1252 when the
	// bytes are not valid UTF-8. Most legacy LAS files are written by
	// Windows tools.
	EncodingAuto        Encoding = "auto"
	EncodingUTF8        Encoding = "utf-8"       // invalid bytes are a read error
	EncodingUTF8Lossy   Encoding = "utf-8-lossy" // invalid bytes become '?'
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingLatin1      Encoding = "latin1"
)

// Decoding errors.
var (
	ErrInvalidUTF8     = errors.New("file is not valid UTF-8")
	ErrUnknownEncoding = errors.New("unknown encoding")
	ErrTooLarge        = errors.New("file exceeds the size limit")
)

// ParseEncoding maps a user-supplied name to an Encoding. Empty means auto.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return EncodingAuto, nil
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	case "utf-8-lossy", "utf8-lossy", "lossy":
		return EncodingUTF8Lossy, nil
	case "windows-1252", "cp1252", "win1252":
		return EncodingWindows1252, nil
	case "latin1", "latin-1", "iso-8859-1":
		return EncodingLatin1, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
}

func (e Encoding) charmap() encoding.Encoding {
	switch e {
	case EncodingWindows1252:
		return charmap.Windows1252
	case EncodingLatin1:
		return charmap.ISO8859_1
	}
	return nil
}

// Decode reads r to the end and returns its text. A leading UTF-8 BOM is
// dropped. limit caps the number of bytes read; zero means no limit.
func Decode(r io.Reader, enc Encoding, limit int64) (string, error) {
	if enc == "" {
		enc = EncodingAuto
	}

	src := io.Reader(newBOMReader(r))
	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}
	counter := NewCountingReader(src, limit)
	src = counter

	switch enc {
	case EncodingUTF8Lossy:
		src = newUTF8Sanitizer(src)
	case EncodingWindows1252, EncodingLatin1:
		src = transform.NewReader(src, enc.charmap().NewDecoder())
	case EncodingAuto, EncodingUTF8:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, enc)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	if limit > 0 && counter.BytesRead > limit {
		return "", fmt.Errorf("%w of %d bytes", ErrTooLarge, limit)
	}

	switch enc {
	case EncodingUTF8:
		if i := invalidUTF8Offset(data); i >= 0 {
			return "", fmt.Errorf("%w: invalid byte at offset %d", ErrInvalidUTF8, i)
		}
	case EncodingAuto:
		if !utf8.Valid(data) {
			out, err := charmap.Windows1252.NewDecoder().Bytes(data)
			if err != nil {
				return "", err
			}
			data = out
		}
	}
	return string(data), nil
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
