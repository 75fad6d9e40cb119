package parse

import (
	"fmt"
	"testing"

	"dolabella/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeSelection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "inclusive range", input: "1-3", want: []string{"1", "2", "3"}},
		{name: "comma and space", input: "5, 7", want: []string{"5", "7"}},
		{name: "comma only", input: "5,7", want: []string{"5", "7"}},
		{name: "single", input: "4", want: []string{"4"}},
		{name: "none volume", input: "none, 1", want: []string{"none", "1"}},
		{name: "mixed and deduplicated", input: "2-3, 3, 10", want: []string{"2", "3", "10"}},
		{name: "range with spaces", input: " 1 - 2 ", want: []string{"1", "2"}},
		{name: "decimal label", input: "1.5", want: []string{"1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VolumeSelection(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVolumeSelection_Invalid(t *testing.T) {
	for _, input := range []string{"abc", "", "1-", "3-1", "1-2-3", "1,,2", "1, abc", "inf", "NaN", "1e3", "+2", ".5", "1-20000000"} {
		t.Run(input, func(t *testing.T) {
			got, err := VolumeSelection(input)
			assert.Nil(t, got)

			var rangeErr *domain.RangeError
			assert.ErrorAs(t, err, &rangeErr)
		})
	}
}

func TestVolumeSelection_RangeSpan(t *testing.T) {
	got, err := VolumeSelection(fmt.Sprintf("1-%d", MaxRangeSpan))
	require.NoError(t, err)
	assert.Len(t, got, MaxRangeSpan)

	got, err = VolumeSelection(fmt.Sprintf("0-%d", MaxRangeSpan))
	assert.Nil(t, got)

	var rangeErr *domain.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.ErrorContains(t, err, "spans more than")
}

func TestIndex(t *testing.T) {
	i, err := Index("2", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	i, err = Index("0", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	var rangeErr *domain.RangeError

	_, err = Index("4", 3)
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 3, rangeErr.Max)

	_, err = Index("-1", 3)
	assert.ErrorAs(t, err, &rangeErr)

	_, err = Index("x", 3)
	assert.ErrorAs(t, err, &rangeErr)
}
