package tarball

import (
	"archive/tar"
	"fmt"
	"io"
	"os/user"
	"strconv"
	"time"
)

// List streams entry names to stdout in archive order. In verbose mode each
// line carries an ls-like long form instead:
//
//	-rw-r--r-- alice:staff        1234 2026-08-27 10:15 some_dir/a.txt
func (r *Reader) List() error {
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

	tr := tar.NewReader(inner)
	out := r.opts.out()
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &FormatError{Path: r.path, Err: err}
		}
		if r.opts.Verbose {
			fmt.Fprintln(out, longLine(hdr))
		} else {
			fmt.Fprintln(out, hdr.Name)
		}
	}
}

// longLine renders one verbose listing line for an entry header.
func longLine(hdr *tar.Header) string {
	line := fmt.Sprintf("%s %s %12d %s %s",
		permissionString(hdr.Typeflag, hdr.Mode),
		ownerString(hdr),
		hdr.Size,
		formatLocalTime(hdr.ModTime),
		hdr.Name,
	)
	if hdr.Linkname != "" {
		line += " -> " + hdr.Linkname
	}
	return line
}

// permissionString formats the type flag and the nine permission bits, e.g.
// "drwxr-xr-x" for a 0755 directory.
func permissionString(typeflag byte, mode int64) string {
	var b [10]byte
	b[0] = typeChar(typeflag)
	const bits = "rwxrwxrwx"
	for i := 0; i < 9; i++ {
		if mode&(1<<(8-i)) != 0 {
			b[i+1] = bits[i]
		} else {
			b[i+1] = '-'
		}
	}
	return string(b[:])
}

func typeChar(typeflag byte) byte {
	switch typeflag {
	case tar.TypeReg, '\x00':
		return '-'
	case tar.TypeLink:
		return 'h'
	case tar.TypeSymlink:
		return 'l'
	case tar.TypeChar:
		return 'c'
	case tar.TypeBlock:
		return 'b'
	case tar.TypeDir:
		return 'd'
	case tar.TypeFifo:
		return 'p'
	}
	return '?'
}

// ownerString builds "user:group", preferring the names stored in the header,
// then a local uid/gid lookup, then the numeric ids.
func ownerString(hdr *tar.Header) string {
	uname, gname := hdr.Uname, hdr.Gname
	if uname == "" || gname == "" {
		lu, lg := uidGidToNames(hdr.Uid, hdr.Gid)
		if uname == "" {
			uname = lu
		}
		if gname == "" {
			gname = lg
		}
	}
	if uname == "" {
		uname = strconv.Itoa(hdr.Uid)
	}
	if gname == "" {
		gname = strconv.Itoa(hdr.Gid)
	}
	return uname + ":" + gname
}

// uidGidToNames resolves uid/gid to local user/group names. Missing entries
// yield empty strings and callers fall back to numbers.
func uidGidToNames(uid, gid int) (string, string) {
	var uname, gname string
	if u, err := user.LookupId(strconv.Itoa(uid)); err == nil && u.Username != "" {
		uname = u.Username
	}
	if g, err := user.LookupGroupId(strconv.Itoa(gid)); err == nil && g.Name != "" {
		gname = g.Name
	}
	return uname, gname
}

// formatLocalTime renders a timestamp in local time as "YYYY-MM-DD HH:MM".
func formatLocalTime(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02 15:04")
}
