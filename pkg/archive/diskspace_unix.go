//go:build !windows

package archive

import "golang.org/x/sys/unix"

// availableDiskSpace returns available disk space in bytes for Unix systems
func availableDiskSpace(path string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}
