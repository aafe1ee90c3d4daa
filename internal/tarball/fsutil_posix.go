//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package tarball

import (
	"os"
	"syscall"
)

// chownBestEffort attempts to restore ownership; callers ignore the error
// when not running with enough privilege.
func chownBestEffort(p string, uid, gid int) error {
	return os.Lchown(p, uid, gid)
}

// mkfifo creates a named pipe.
func mkfifo(path string, mode uint32) error {
	return syscall.Mkfifo(path, mode)
}
