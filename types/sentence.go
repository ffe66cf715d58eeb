package types

// Sentence covers the tokens [Start, End) of a document.
type Sentence struct {
	Span
	Start int
	End   int
}
