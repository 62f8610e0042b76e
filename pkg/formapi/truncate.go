package formapi

import (
	"strings"
	"unicode/utf8"
)

// maxErrorBodyBytes bounds how much of a failed reply ends up in an error.
const maxErrorBodyBytes = 512

// truncateBody cuts s to at most maxBytes without splitting a rune.
func truncateBody(s string, maxBytes int) string {
	s = strings.TrimSpace(s)
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	b := []byte(s[:maxBytes])
	for len(b) > 0 && !utf8.Valid(b) {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}
