package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxHeaderLength bounds a column header echoed back to clients or stored with an upload.
const MaxHeaderLength = 128

// SanitizeCSVCell prepends a single quote if the cell starts with a formula character.
// This makes most spreadsheet software treat it as text.
func SanitizeCSVCell(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	switch trimmed[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// SanitizeHeader strips control characters from a user-supplied header, trims it and caps
// its length.
func SanitizeHeader(s string) string {
	s = strings.TrimSpace(StripUnprintable(s))
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, s)
	if utf8.RuneCountInString(s) <= MaxHeaderLength {
		return s
	}
	return string([]rune(s)[:MaxHeaderLength])
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
