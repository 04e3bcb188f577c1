package shared

import (
	"regexp"
	"strings"
	"time"
)

// DefaultMaxNameLength bounds sanitized names when no limit is configured.
const DefaultMaxNameLength = 80

// MinNameLength is the smallest accepted limit; shorter limits are raised to it.
const MinNameLength = 16

const (
	untitled   = "untitled"
	edgeTrim   = " ._-"
	nameSuffix = 16
	stampFmt   = "20060102150405"
)

var (
	unsafeChars        = regexp.MustCompile(`[^\p{L}\p{N} ._()\-]`)
	repeatedUnderscore = regexp.MustCompile(`_{2,}`)
	repeatedSpace      = regexp.MustCompile(` {2,}`)
)

// SanitizeFilename turns an arbitrary title into a safe file stem.
//
// Characters other than letters, digits, space and `._()-` become underscores, runs of underscores
// or spaces collapse, and leading/trailing space, dots, underscores and dashes are trimmed.
// Names longer than maxLen runes keep a prefix and the last 16 runes joined by an underscore.
// A maxLen of zero uses [DefaultMaxNameLength]. The result is never empty, and
// SanitizeFilename(SanitizeFilename(s, n), n) == SanitizeFilename(s, n).
func SanitizeFilename(name string, maxLen int) string {
	switch {
	case maxLen <= 0:
		maxLen = DefaultMaxNameLength
	case maxLen < MinNameLength:
		maxLen = MinNameLength
	}

	s := tidy(unsafeChars.ReplaceAllString(name, "_"))

	if r := []rune(s); len(r) > maxLen {
		suffix := min(nameSuffix, maxLen/2)
		prefix := maxLen - suffix - 1
		s = tidy(string(r[:prefix]) + "_" + string(r[len(r)-suffix:]))
	}

	if s == "" {
		return untitled
	}
	return s
}

// UniqueFilename appends a timestamp to an already sanitized stem.
func UniqueFilename(stem string, at time.Time) string {
	return stem + "_" + at.Format(stampFmt)
}

func tidy(s string) string {
	s = repeatedUnderscore.ReplaceAllString(s, "_")
	s = repeatedSpace.ReplaceAllString(s, " ")
	return strings.Trim(s, edgeTrim)
}
