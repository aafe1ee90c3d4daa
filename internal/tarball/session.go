package tarball

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Options carries per-invocation settings shared by all four operations.
type Options struct {
	// Verbose makes every processed entry name print to Stdout.
	Verbose bool

	// Passphrase decrypts/encrypts .aes archives. Empty means plaintext only.
	Passphrase []byte

	// Stdout receives listings and verbose output. Defaults to os.Stdout.
	Stdout io.Writer
}

func (o Options) out() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

// announce prints an entry name when verbose mode is on.
func (o Options) announce(name string) {
	if o.Verbose {
		fmt.Fprintln(o.out(), name)
	}
}

// Writer is a write session against one archive path. The codec (plain,
// gzip, zstd, encrypted) is fixed by the path's extension at construction.
type Writer struct {
	path  string
	codec codec
	opts  Options
}

// NewWriter constructs a write session for the target archive path. No file
// is touched until Create or Add is called.
func NewWriter(path string, opts Options) *Writer {
	return &Writer{path: path, codec: codecForPath(path), opts: opts}
}

// Reader is a read session against one archive path.
type Reader struct {
	path  string
	codec codec
	opts  Options
}

// NewReader constructs a read session for the given archive path. Loading is
// lazy; each operation opens and fully consumes its own stream.
func NewReader(path string, opts Options) *Reader {
	return &Reader{path: path, codec: codecForPath(path), opts: opts}
}

// open opens the archive file, mapping a missing file to ErrArchiveNotFound.
func (r *Reader) open() (*os.File, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, r.path)
		}
		return nil, err
	}
	return f, nil
}
