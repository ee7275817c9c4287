// Package units provides parsing and formatting of byte quantities
package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Base-1024 multipliers
const (
	KB Bytes = 1024
	MB Bytes = 1024 * KB
	GB Bytes = 1024 * MB
	TB Bytes = 1024 * GB
)

// Bytes represents a byte count
type Bytes uint64

// ParseError is returned when a size string cannot be parsed
type ParseError struct {
	// Input is the string that failed to parse
	Input string

	// Reason explains what is wrong with the input
	Reason string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid size '%s': %s", e.Input, e.Reason)
}

// ParseBytes converts a human-readable size string into a byte count.
// The input is a number optionally followed by one of the suffixes
// k, m, g or t (case-insensitive), denoting base-1024 multipliers.
func ParseBytes(s string) (Bytes, error) {
	if s == "" {
		return 0, &ParseError{Input: s, Reason: "empty string"}
	}

	multiplier := Bytes(1)
	digits := s
	switch s[len(s)-1] {
	case 'k', 'K':
		multiplier = KB
		digits = s[:len(s)-1]
	case 'm', 'M':
		multiplier = MB
		digits = s[:len(s)-1]
	case 'g', 'G':
		multiplier = GB
		digits = s[:len(s)-1]
	case 't', 'T':
		multiplier = TB
		digits = s[:len(s)-1]
	default:
		if s[len(s)-1] < '0' || s[len(s)-1] > '9' {
			return 0, &ParseError{Input: s, Reason: "unknown size unit"}
		}
	}

	if digits == "" {
		return 0, &ParseError{Input: s, Reason: "missing number"}
	}
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		return 0, &ParseError{Input: s, Reason: "not a positive number"}
	}

	count, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, &ParseError{Input: s, Reason: "not a number"}
	}

	return Bytes(count * float64(multiplier)), nil
}

// String formats the byte count for display. Quantities of one
// kilobyte or more are printed with two decimals and an uppercase
// unit suffix (e.g. 100.00T); smaller quantities are printed as a
// plain integer.
func (b Bytes) String() string {
	switch {
	case b >= TB:
		return fmt.Sprintf("%.2fT", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2fG", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2fM", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2fK", float64(b)/float64(KB))
	default:
		return strconv.FormatUint(uint64(b), 10)
	}
}
