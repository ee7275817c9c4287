//go:build linux

// Package sysinfo queries machine facts needed by requirement checks
package sysinfo

import (
	"golang.org/x/sys/unix"

	"github.com/mrz1836/go-test-runner/internal/units"
)

// PhysicalMemory returns the total amount of physical memory, or 0 if
// the amount cannot be determined. Callers treat 0 as "unknown" and
// skip memory requirements rather than failing them.
func PhysicalMemory() units.Bytes {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return units.Bytes(info.Totalram) * units.Bytes(info.Unit)
}
