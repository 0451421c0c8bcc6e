package skills

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ContainsTerm reports whether term occurs in text with no word rune
// directly before or after it. Unlike a regexp \b this also works for terms
// that begin or end in punctuation ("c++", ".net", "ci/cd").
func ContainsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	for from := 0; from <= len(text)-len(term); {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(term)
		if !wordBefore(text, start) && !wordAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func wordBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func wordAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
