package tarball

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// compression selects the stream compressor wrapped around the tar stream.
type compression int

const (
	compressionNone compression = iota
	compressionGzip
	compressionZstd
)

// codec describes the stream layering of an archive file: an optional
// compressor and an optional OpenSSL-compatible encryption wrapper. On write
// the layering is tar → compress → encrypt → file; reads unwrap in reverse.
type codec struct {
	compression compression
	encrypted   bool
}

// codecForPath derives the codec from the archive file name. A trailing
// ".aes" selects encryption; the remaining extension selects compression
// (".tgz"/".gz" gzip, ".tzst"/".zst" zstd, anything else plain tar).
func codecForPath(path string) codec {
	name := strings.ToLower(filepath.Base(path))
	var c codec
	if strings.HasSuffix(name, ".aes") {
		c.encrypted = true
		name = strings.TrimSuffix(name, ".aes")
	}
	switch {
	case strings.HasSuffix(name, ".tgz"), strings.HasSuffix(name, ".gz"):
		c.compression = compressionGzip
	case strings.HasSuffix(name, ".tzst"), strings.HasSuffix(name, ".zst"):
		c.compression = compressionZstd
	}
	return c
}

// wrapWriter layers the codec over w. The returned close flushes and closes
// the codec layers (innermost first) and must run before w itself is closed.
func (c codec) wrapWriter(w io.Writer, passphrase []byte) (io.Writer, func() error, error) {
	var closers []io.Closer
	if c.encrypted {
		if len(passphrase) == 0 {
			return nil, nil, ErrPassphrase
		}
		ew, err := encryptWriter(w, passphrase)
		if err != nil {
			return nil, nil, err
		}
		w = ew
		closers = append(closers, ew)
	}
	switch c.compression {
	case compressionGzip:
		zw := gzip.NewWriter(w)
		w = zw
		closers = append(closers, zw)
	case compressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, err
		}
		w = zw
		closers = append(closers, zw)
	}
	flush := func() error {
		var first error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	return w, flush, nil
}

// wrapReader unwraps the codec layers around r. The returned close releases
// decoder resources and should run once the stream has been consumed.
func (c codec) wrapReader(r io.Reader, passphrase []byte) (io.Reader, func() error, error) {
	if c.encrypted {
		if len(passphrase) == 0 {
			return nil, nil, ErrPassphrase
		}
		dr, err := decryptReader(r, passphrase)
		if err != nil {
			return nil, nil, err
		}
		r = dr
	}
	release := func() error { return nil }
	switch c.compression {
	case compressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		r = zr
		release = zr.Close
	case compressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		r = zr
		release = func() error {
			zr.Close()
			return nil
		}
	}
	return r, release, nil
}
