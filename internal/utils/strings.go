package utils

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// PadLabel zero-pads the integer part of a numeric label to width,
// preserving original decimals. Non-numeric labels are returned unchanged.
func PadLabel(label string, width int) string {
	if _, err := strconv.ParseFloat(label, 64); err != nil {
		return label
	}

	// Split into integer and decimal parts
	parts := strings.SplitN(label, ".", 2)
	intPart := parts[0]

	padding := width - len(intPart)
	if padding > 0 {
		intPart = strings.Repeat("0", padding) + intPart
	}

	if len(parts) > 1 {
		return intPart + "." + parts[1]
	}
	return intPart
}

// CompareLabels orders volume and chapter labels: numeric labels first by value,
// then everything else lexically.
func CompareLabels(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)

	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(fa, fb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// HumanBytes formats a byte count with binary prefixes, e.g. 1.5KiB.
func HumanBytes(size int64) string {
	value := float64(size)
	for _, unit := range []string{"", "Ki", "Mi", "Gi", "Ti", "Pi", "Ei"} {
		if value < 1024 && value > -1024 {
			return fmt.Sprintf("%.1f%sB", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1fZiB", value)
}
