package sanitize

import (
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_. -]`)

// Path makes a single path component safe for the library layout by
// replacing anything outside [A-Za-z0-9_. -] with an underscore.
func Path(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")

	// never let a component point at the current or parent directory
	if strings.Trim(name, ".") == "" {
		return strings.Repeat("_", max(len(name), 1))
	}

	return name
}
