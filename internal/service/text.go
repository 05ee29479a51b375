package service

import (
	"strings"
	"unicode"
)

// cleanLine strips control and invisible format characters (zero-width
// spaces, bidi marks, BOM) and surrounding whitespace from single-line
// profile and post fields.
func cleanLine(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || isInvisible(r) {
			return -1
		}
		return r
	}, s))
}

// cleanBlock is cleanLine for multi-line text: newlines and tabs survive.
func cleanBlock(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || isInvisible(r) {
			return -1
		}
		return r
	}, s))
}

func isInvisible(r rune) bool {
	return unicode.Is(unicode.Cf, r)
}

func cleanedLine(v *string) *string {
	if v == nil {
		return nil
	}
	t := cleanLine(*v)
	return &t
}

func cleanedBlock(v *string) *string {
	if v == nil {
		return nil
	}
	t := cleanBlock(*v)
	return &t
}
