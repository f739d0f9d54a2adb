package common

import (
	"strings"
	"unicode"
)

// ToPascalCase capitalizes the first letter of every word and lowercases
// the rest. Words are separated by '_', '-' or whitespace.
// Examples: "asynInt32" -> "Asynint32", "STRING_IN" -> "StringIn".
func ToPascalCase(s string) string {
	if s == "" {
		return ""
	}

	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})

	var result strings.Builder
	for _, word := range words {
		if len(word) > 0 {
			result.WriteString(strings.ToUpper(string(word[0])))
			if len(word) > 1 {
				result.WriteString(strings.ToLower(word[1:]))
			}
		}
	}

	return result.String()
}

// IsCIdentifier reports whether s is a valid C identifier.
func IsCIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', isUpper(c), isLower(c):
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
func isLower(b byte) bool { return b >= 'a' && b <= 'z' }

// IsIdentRune reports whether r may appear in a C identifier: an ASCII
// letter, digit or '_'.
func IsIdentRune(r rune) bool {
	return r == '_' || (r >= '0' && r <= '9') || (r < 0x80 && (isUpper(byte(r)) || isLower(byte(r))))
}
