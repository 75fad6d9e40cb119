package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testAggregate() Aggregate {
	return Aggregate{
		"none": {"50": "c50"},
		"10":   {"20": "c20", "19": "c19"},
		"2":    {"3": "c3", "2.5": "c25", "10": "c10"},
	}
}

func TestAggregate_Volumes(t *testing.T) {
	volumes := testAggregate().Volumes()

	labels := make([]string, 0, len(volumes))
	for _, v := range volumes {
		labels = append(labels, v.Label)
	}
	assert.Equal(t, []string{"2", "10", "none"}, labels)

	assert.Equal(t, []Chapter{
		{Label: "2.5", ID: "c25"},
		{Label: "3", ID: "c3"},
		{Label: "10", ID: "c10"},
	}, volumes[0].Chapters)
}

func TestAggregate_Select(t *testing.T) {
	selected := testAggregate().Select([]string{"none", "2", "99"})

	if assert.Len(t, selected, 2) {
		assert.Equal(t, "2", selected[0].Label)
		assert.Equal(t, "none", selected[1].Label)
	}
}

func TestAggregate_SelectSingleVolumeIgnoresSelection(t *testing.T) {
	agg := Aggregate{"none": {"1": "c1"}}

	selected := agg.Select([]string{"5"})
	if assert.Len(t, selected, 1) {
		assert.Equal(t, NoVolume, selected[0].Label)
	}
}

func TestAggregate_ChapterCount(t *testing.T) {
	assert.Equal(t, 6, testAggregate().ChapterCount())
}

func TestStatusAndRatingValid(t *testing.T) {
	assert.True(t, StatusHiatus.Valid())
	assert.False(t, Status("paused").Valid())
	assert.True(t, RatingErotica.Valid())
	assert.False(t, ContentRating("").Valid())
}
