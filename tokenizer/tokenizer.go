package tokenizer

import (
	"unicode"

	"text2phenotype.com/negex/types"
)

// Tokenize splits text into word, number and punctuation tokens. Token offsets
// are rune offsets into text.
//
// A word is a run of letters and digits. Apostrophes and hyphens stay inside a
// word when they join two alphanumeric runs ("can't", "x-ray"), and a dot stays
// inside a number when digits follow it ("2.5"). Any other non-space rune is a
// token of its own.
func Tokenize(text string) []*types.Token {
	runes := []rune(text)
	tokens := make([]*types.Token, 0, len(runes)/4+1)

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		tokens = append(tokens, newToken(len(tokens), runes[start:end], start, end))
		start = -1
	}

	for i, c := range runes {
		switch {
		case isWordRune(c):
			if start < 0 {
				start = i
			}
		case start >= 0 && isJoiner(runes, start, i):
			// stays inside the current word
		case unicode.IsSpace(c):
			flush(i)
		default:
			flush(i)
			tokens = append(tokens, newToken(len(tokens), runes[i:i+1], i, i+1))
		}
	}
	flush(len(runes))
	return tokens
}

// Words tokenizes a phrase and returns its lowercase token texts.
func Words(phrase string) []string {
	return types.LowerTexts(Tokenize(phrase))
}

func isWordRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c)
}

func isJoiner(runes []rune, start int, i int) bool {
	if i+1 >= len(runes) || !isWordRune(runes[i-1]) || !isWordRune(runes[i+1]) {
		return false
	}
	switch runes[i] {
	case '\'', '’', '-':
		return true
	case '.':
		return unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) && isNumber(runes[start:i])
	}
	return false
}

func isNumber(runes []rune) bool {
	digits := 0
	for _, c := range runes {
		switch {
		case unicode.IsDigit(c):
			digits++
		case c != '.':
			return false
		}
	}
	return digits > 0
}

func newToken(index int, runes []rune, begin int, end int) *types.Token {
	return types.NewToken(index, string(runes), int32(begin), int32(end))
}
