package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripper = bluemonday.StrictPolicy()

// SanitizeText strips all markup. Notes, check-in comments, display names and
// recipe ingredients are plain text; anything that looks like HTML in them is
// hostile input, not formatting.
func SanitizeText(input string) string {
	return strings.TrimSpace(stripper.Sanitize(input))
}
