package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dolabella/internal/domain"
)

// MaxRangeSpan bounds how many volumes a single range may expand to.
const MaxRangeSpan = 10000

var labelPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// VolumeSelection parses the user input for volume labels and ranges,
// e.g. "1-3", "5, 7" or "none". Ranges are inclusive.
// Any malformed part fails the whole selection.
func VolumeSelection(input string) ([]string, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &domain.RangeError{Input: input, Err: fmt.Errorf("empty selection")}
	}

	var selected []string
	seen := make(map[string]bool)

	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			selected = append(selected, label)
		}
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)

		switch {
		case part == "":
			return nil, &domain.RangeError{Input: input, Err: fmt.Errorf("empty part")}

		case part == domain.NoVolume:
			add(part)

		case strings.Contains(part, "-"):
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return nil, &domain.RangeError{Input: input, Err: fmt.Errorf("invalid range format: %s", part)}
			}

			start, end, err := getRange(rangeParts)
			if err != nil {
				return nil, &domain.RangeError{Input: input, Err: err}
			}

			for i := start; i <= end; i++ {
				add(strconv.Itoa(i))
			}

		default:
			if !labelPattern.MatchString(part) {
				return nil, &domain.RangeError{Input: input, Err: fmt.Errorf("invalid volume: %s", part)}
			}
			add(part)
		}
	}

	return selected, nil
}

// getRange parses the user input for volume ranges
func getRange(rangeParts []string) (int, int, error) {
	start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start of range: %s", rangeParts[0])
	}
	end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end of range: %s", rangeParts[1])
	}

	if start > end {
		return 0, 0, fmt.Errorf("start of range should not be greater than end: %s-%s", rangeParts[0], rangeParts[1])
	}

	if end-start >= MaxRangeSpan {
		return 0, 0, fmt.Errorf("range %s-%s spans more than %d volumes", rangeParts[0], rangeParts[1], MaxRangeSpan)
	}

	return start, end, nil
}

// Index parses a 1-based selection among n results. 0 is accepted and means "none".
func Index(input string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, &domain.RangeError{Input: input, Min: 1, Max: n, Err: err}
	}

	if i < 0 || i > n {
		return 0, &domain.RangeError{Input: input, Min: 1, Max: n}
	}

	return i, nil
}
