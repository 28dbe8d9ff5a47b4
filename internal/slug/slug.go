// Package slug provides URL-friendly identifiers for vault folders:
// normalized slugs for user-chosen names and deterministic date slugs
// for run folders.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// nonAlphanumeric matches every run of characters that isn't a lowercase
// letter or digit. Each run collapses into a single hyphen.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize creates a URL-friendly slug from the given string.
// Example: "Morning Run!!" → "morning-run". An empty or all-punctuation
// input yields ""; callers must reject empty slugs before insertion.
func Normalize(s string) string {
	result := strings.ToLower(s)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// ForDate returns the base slug for a run folder: run_YYYY-MM-DD in the
// date's local calendar day. Deterministic, so two runs on the same day
// produce the same base and get suffixed at insertion time.
func ForDate(t time.Time) string {
	return fmt.Sprintf("run_%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
}

// RunFolderName builds the display name for a run folder: "Jan 2", or
// "Jan 2 - Title" when the run has a title.
func RunFolderName(date time.Time, title string) string {
	name := date.Format("Jan 2")
	if title != "" {
		name += " - " + title
	}
	return name
}
