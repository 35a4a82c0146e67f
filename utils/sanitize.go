package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizePolicy = bluemonday.StrictPolicy()

// Sanitize strips all markup from client supplied text.
func Sanitize(input string) string {
	return sanitizePolicy.Sanitize(input)
}
