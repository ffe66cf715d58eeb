package types

import "strings"

type Token struct {
	Span
	Index int
	Lower string
}

func NewToken(index int, text string, begin int32, end int32) *Token {
	return &Token{
		Span: Span{
			Begin: begin,
			End:   end,
			Text:  text,
		},
		Index: index,
		Lower: strings.ToLower(text),
	}
}

// LowerTexts returns the lowercase forms in token order.
func LowerTexts(tokens []*Token) []string {
	result := make([]string, len(tokens))
	for i, token := range tokens {
		result[i] = token.Lower
	}
	return result
}
