package domain

import (
	"slices"

	"dolabella/internal/utils"
)

// NoVolume is the label the catalog uses for chapters outside any volume.
const NoVolume = "none"

// Aggregate maps volume label -> chapter label -> chapter id.
type Aggregate map[string]map[string]string

// Volumes returns all volumes with numeric labels first in ascending order,
// then the rest ("none" included) alphabetically. Chapters are ordered the same way.
func (a Aggregate) Volumes() []Volume {
	labels := make([]string, 0, len(a))
	for label := range a {
		labels = append(labels, label)
	}
	slices.SortFunc(labels, utils.CompareLabels)

	volumes := make([]Volume, 0, len(labels))
	for _, label := range labels {
		volumes = append(volumes, a.Volume(label))
	}

	return volumes
}

// Volume returns a single volume, empty if the label is unknown.
func (a Aggregate) Volume(label string) Volume {
	chapters := a[label]

	chapterLabels := make([]string, 0, len(chapters))
	for c := range chapters {
		chapterLabels = append(chapterLabels, c)
	}
	slices.SortFunc(chapterLabels, utils.CompareLabels)

	v := Volume{Label: label, Chapters: make([]Chapter, 0, len(chapterLabels))}
	for _, c := range chapterLabels {
		v.Chapters = append(v.Chapters, Chapter{Label: c, ID: chapters[c]})
	}

	return v
}

// Select returns the volumes whose label is in labels, in stable order.
// A title with a single volume ignores the selection.
func (a Aggregate) Select(labels []string) []Volume {
	all := a.Volumes()
	if len(all) <= 1 {
		return all
	}

	var selected []Volume
	for _, v := range all {
		if slices.Contains(labels, v.Label) {
			selected = append(selected, v)
		}
	}

	return selected
}

// ChapterCount is the total number of chapters across volumes.
func (a Aggregate) ChapterCount() int {
	n := 0
	for _, chapters := range a {
		n += len(chapters)
	}
	return n
}
