// Package lasio loads LAS files from disk or streams and hands the decoded
// text to the las parser. Failures to open or decode are not returned as
// errors; they are recorded in the open and read slots of the returned File
// so callers handle every outcome the same way.
package lasio

import (
	"io"
	"os"

	"github.com/JonMunkholm/lasfile/internal/las"
)

// Options controls how files are loaded.
type Options struct {
	Encoding Encoding
	MaxSize  int64 // bytes; zero means no limit
	Parallel bool  // parse sections concurrently
}

func (o Options) parseOptions() []las.Option {
	if o.Parallel {
		return []las.Option{las.WithParallel()}
	}
	return nil
}

// Open loads and parses the file at path.
func Open(path string, opts Options) *las.File {
	fh, err := os.Open(path)
	if err != nil {
		return las.NewOpenFailure(path, err)
	}
	defer fh.Close()

	if opts.MaxSize > 0 {
		if st, err := fh.Stat(); err == nil && st.Size() > opts.MaxSize {
			return las.NewReadFailure(path, ErrTooLarge)
		}
	}
	return Read(path, fh, opts)
}

// Read decodes r and parses it. name is recorded as the File path.
func Read(name string, r io.Reader, opts Options) *las.File {
	text, err := Decode(r, opts.Encoding, opts.MaxSize)
	if err != nil {
		return las.NewReadFailure(name, err)
	}
	return las.Parse(name, text, opts.parseOptions()...)
}
