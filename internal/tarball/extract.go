package tarball

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ensureParents creates intermediate directories for a path (mkdir -p).
func ensureParents(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// Extract restores every archive entry under dest, creating dest and any
// intermediate directories as needed. File modes and mtimes are applied after
// the data is written so they take effect regardless of umask; ownership is
// restored best-effort.
func (r *Reader) Extract(dest string) error {
	f, err := r.open()
	if err != nil {
		return err
	}
	defer f.Close()

	inner, closeCodec, err := r.codec.wrapReader(f, r.opts.Passphrase)
	if err != nil {
		return err
	}
	defer closeCodec()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	tr := tar.NewReader(inner)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &FormatError{Path: r.path, Err: err}
		}
		if !filepath.IsLocal(strings.TrimSuffix(hdr.Name, "/")) {
			return &FormatError{Path: r.path, Err: fmt.Errorf("unsafe entry name %q", hdr.Name)}
		}
		out := filepath.Join(dest, filepath.FromSlash(hdr.Name))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(out, os.FileMode(hdr.Mode)&os.ModePerm); err != nil {
				return err
			}
			_ = chownBestEffort(out, hdr.Uid, hdr.Gid)
			_ = os.Chtimes(out, time.Now(), hdr.ModTime)

		case tar.TypeReg, '\x00': // '\x00' is the pre-ustar regular file alias
			if err := ensureParents(out); err != nil {
				return err
			}
			dst, err := os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode)&os.ModePerm)
			if err != nil {
				return err
			}
			_, err = io.Copy(dst, tr)
			if cerr := dst.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			_ = os.Chmod(out, os.FileMode(hdr.Mode)&os.ModePerm)
			_ = chownBestEffort(out, hdr.Uid, hdr.Gid)
			_ = os.Chtimes(out, time.Now(), hdr.ModTime)

		case tar.TypeSymlink:
			if err := ensureParents(out); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, out); err != nil {
				return err
			}
			_ = chownBestEffort(out, hdr.Uid, hdr.Gid)

		case tar.TypeFifo:
			if err := ensureParents(out); err != nil {
				return err
			}
			if err := mkfifo(out, uint32(hdr.Mode)); err != nil {
				return err
			}
			_ = chownBestEffort(out, hdr.Uid, hdr.Gid)
			_ = os.Chtimes(out, time.Now(), hdr.ModTime)

		default:
			// Hard links, devices and other special entries are skipped.
			continue
		}
		r.opts.announce(hdr.Name)
	}
}
