//go:build !windows

package fileprobe

import "golang.org/x/sys/unix"

// isReadable asks the kernel with access(2), so directories and files the
// process may read without opening them both qualify.
func isReadable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}
