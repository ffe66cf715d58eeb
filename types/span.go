package types

// Span is a character range [Begin, End) counted in runes.
type Span struct {
	Begin int32
	End   int32
	Text  string
}
