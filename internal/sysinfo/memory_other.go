//go:build !linux

// Package sysinfo queries machine facts needed by requirement checks
package sysinfo

import "github.com/mrz1836/go-test-runner/internal/units"

// PhysicalMemory returns 0 on platforms where the total amount of
// physical memory cannot be queried; requirement checks treat the
// amount as unknown.
func PhysicalMemory() units.Bytes {
	return 0
}
