//go:build linux
// +build linux

package pipeline

import "golang.org/x/sys/unix"

// TotalMemory reads the total RAM of the host from sysinfo(2).
func TotalMemory() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}
	return uint64(info.Totalram) * uint64(info.Unit), nil
}
