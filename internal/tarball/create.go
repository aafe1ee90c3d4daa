package tarball

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Create writes a new archive at the writer's path, truncating any existing
// file, and recursively adds the given file or directory. Directory trees are
// walked lexically, so entry order is deterministic.
func (w *Writer) Create(source string) error {
	if _, err := os.Lstat(source); err != nil {
		return err
	}
	if w.codec.encrypted && len(w.opts.Passphrase) == 0 {
		return ErrPassphrase
	}
	f, err := os.Create(w.path)
	if err != nil {
		return err
	}
	err = w.writeStream(f, nil, source)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Add appends the given file or directory to an existing archive. archive/tar
// always terminates a stream with a trailer (and compressed or encrypted
// containers cannot be raw-appended at all), so Add rewrites the archive:
// existing entries are streamed into a temp file in the same directory, the
// new tree is appended, and the temp file is renamed over the original.
func (w *Writer) Add(source string) error {
	fi, err := os.Stat(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArchiveNotFound, w.path)
		}
		return err
	}
	if _, err := os.Lstat(source); err != nil {
		return err
	}

	in, err := os.Open(w.path)
	if err != nil {
		return err
	}
	defer in.Close()
	innerR, closeR, err := w.codec.wrapReader(in, w.opts.Passphrase)
	if err != nil {
		return err
	}
	defer closeR()

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".gotar-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	err = w.writeStream(tmp, tar.NewReader(innerR), source)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmpName, fi.Mode().Perm())
	}
	if err == nil {
		err = os.Rename(tmpName, w.path)
	}
	if err != nil {
		os.Remove(tmpName)
	}
	return err
}

// writeStream produces one complete archive stream on out: codec layers are
// set up, entries from the optional existing reader are copied through, the
// source tree is appended, and everything is flushed innermost-first.
func (w *Writer) writeStream(out io.Writer, existing *tar.Reader, source string) error {
	inner, closeCodec, err := w.codec.wrapWriter(out, w.opts.Passphrase)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(inner)
	err = func() error {
		if existing != nil {
			if err := w.copyEntries(tw, existing); err != nil {
				return err
			}
		}
		return w.addTree(tw, source)
	}()
	if cerr := tw.Close(); err == nil {
		err = cerr
	}
	if cerr := closeCodec(); err == nil {
		err = cerr
	}
	return err
}

// copyEntries streams every entry of tr into tw unchanged.
func (w *Writer) copyEntries(tw *tar.Writer, tr *tar.Reader) error {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &FormatError{Path: w.path, Err: err}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if _, err := io.Copy(tw, tr); err != nil {
			return err
		}
	}
}

// addTree adds root or, if it is a directory, every descendant file in
// lexical walk order. Directory entries themselves are not stored; they are
// implied by their children's paths and recreated on extraction.
func (w *Writer) addTree(tw *tar.Writer, root string) error {
	return filepath.WalkDir(filepath.Clean(root), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return w.addEntry(tw, p)
	})
}

// addEntry writes one filesystem object to the archive, preserving the path
// as given (relative paths stay relative; a leading slash is dropped, the
// usual tar convention).
func (w *Writer) addEntry(tw *tar.Writer, path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		return err
	}
	var link string
	if fi.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return err
		}
	}
	hdr, err := tar.FileInfoHeader(fi, link)
	if err != nil {
		return err
	}
	hdr.Name = entryName(path)

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if fi.Mode().IsRegular() {
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, src)
		src.Close()
		if err != nil {
			return err
		}
	}
	w.opts.announce(hdr.Name)
	return nil
}

// entryName converts a filesystem path into its stored archive name.
func entryName(path string) string {
	name := filepath.ToSlash(filepath.Clean(path))
	return strings.TrimPrefix(name, "/")
}
