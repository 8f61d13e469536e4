//go:build !linux
// +build !linux

package pipeline

import (
	"errors"
	"runtime"
)

func TotalMemory() (uint64, error) {
	return 0, errors.New("total memory unknown on " + runtime.GOOS)
}
