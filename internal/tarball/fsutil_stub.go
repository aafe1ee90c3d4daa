//go:build !darwin && !dragonfly && !freebsd && !linux && !netbsd && !openbsd

package tarball

import "fmt"

// chownBestEffort is a no-op where Unix ownership is unavailable.
func chownBestEffort(p string, uid, gid int) error {
	return nil
}

// mkfifo is unsupported on this platform; FIFO entries fail to extract.
func mkfifo(path string, mode uint32) error {
	return fmt.Errorf("fifo entries are not supported on this platform")
}
