// Package tokenizer normalizes raw text into countable word tokens.
//
// The normalization rule is fixed: lower-case the text, split on Unicode
// whitespace, strip every rune that is not a letter, digit, apostrophe, or
// hyphen, then trim leading and trailing apostrophes/hyphens so only internal
// ones survive ("well-known" stays intact, "'tis" becomes "tis"). Words that
// normalize to the empty string are dropped. No stemming, no stop-words.
package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenize converts text into its normalized token sequence. The same input
// always yields the same sequence.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if tok := normalize(field); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func normalize(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "'-")
}
