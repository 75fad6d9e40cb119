package utils

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPadLabel(t *testing.T) {
	tests := []struct {
		label string
		width int
		want  string
	}{
		{"1", 3, "001"},
		{"12.5", 3, "012.5"},
		{"1234", 3, "1234"},
		{"none", 3, "none"},
		{"7", 0, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, PadLabel(tt.label, tt.width))
		})
	}
}

func TestCompareLabels(t *testing.T) {
	labels := []string{"none", "10", "2", "1.5", "1", "extra"}
	slices.SortFunc(labels, CompareLabels)

	assert.Equal(t, []string{"1", "1.5", "2", "10", "extra", "none"}, labels)
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512.0B", HumanBytes(512))
	assert.Equal(t, "1.5KiB", HumanBytes(1536))
	assert.Equal(t, "2.0MiB", HumanBytes(2*1024*1024))
}
