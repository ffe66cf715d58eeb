package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidTokenRange    = errors.New("document: invalid token range")
	ErrInvalidCharRange     = errors.New("document: character range does not align with tokens")
	ErrInvalidSentenceStart = errors.New("document: sentence start out of range")
)

// Document is the tokenized text the negation engine runs over, together with
// optional sentence starts and the span collections to flag.
type Document struct {
	Text           string
	runes          []rune
	tokens         []*Token
	sentenceStarts []int
	hasSentences   bool
	entities       []*Annotation
	spans          map[string][]*Annotation
}

// NewDocument wraps tokens produced from text. Token offsets index runes of text.
func NewDocument(text string, tokens []*Token) *Document {
	return &Document{
		Text:   text,
		runes:  []rune(text),
		tokens: tokens,
		spans:  make(map[string][]*Annotation),
	}
}

// NewDocumentFromWords builds a document from pre-tokenized words joined by single spaces.
func NewDocumentFromWords(words []string) *Document {
	tokens := make([]*Token, len(words))
	var sb strings.Builder
	var offset int32
	for i, word := range words {
		if i > 0 {
			sb.WriteRune(' ')
			offset++
		}
		length := int32(len([]rune(word)))
		tokens[i] = NewToken(i, word, offset, offset+length)
		sb.WriteString(word)
		offset += length
	}
	return NewDocument(sb.String(), tokens)
}

func (doc *Document) Len() int {
	return len(doc.tokens)
}

func (doc *Document) Tokens() []*Token {
	return doc.tokens
}

// SentenceStarts returns the token index of every sentence start; ok is false
// when no sentence information was supplied.
func (doc *Document) SentenceStarts() ([]int, bool) {
	return doc.sentenceStarts, doc.hasSentences
}

func (doc *Document) SetSentenceStarts(starts []int) error {
	for _, start := range starts {
		if start < 0 || start > len(doc.tokens) {
			return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidSentenceStart, start, len(doc.tokens))
		}
	}
	doc.sentenceStarts = append([]int(nil), starts...)
	sort.Ints(doc.sentenceStarts)
	doc.hasSentences = true
	return nil
}

// Sentences derives sentence token ranges from the sentence starts.
func (doc *Document) Sentences() []Sentence {
	if !doc.hasSentences || len(doc.tokens) == 0 {
		return nil
	}
	bounds := append([]int{0}, doc.sentenceStarts...)
	bounds = append(bounds, len(doc.tokens))
	sentences := make([]Sentence, 0, len(bounds))
	for i := 1; i < len(bounds); i++ {
		start, end := bounds[i-1], bounds[i]
		if start >= end {
			continue
		}
		sentences = append(sentences, Sentence{
			Span:  doc.charSpan(start, end),
			Start: start,
			End:   end,
		})
	}
	return sentences
}

func (doc *Document) Entities() []*Annotation {
	return doc.entities
}

func (doc *Document) SpanGroup(key string) []*Annotation {
	return doc.spans[key]
}

func (doc *Document) SpanKeys() []string {
	keys := make([]string, 0, len(doc.spans))
	for key := range doc.spans {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (doc *Document) AddEntity(start int, end int, label string) (*Annotation, error) {
	ann, err := doc.newAnnotation(start, end, label, "")
	if err != nil {
		return nil, err
	}
	doc.entities = append(doc.entities, ann)
	return ann, nil
}

func (doc *Document) AddSpan(key string, start int, end int, label string) (*Annotation, error) {
	ann, err := doc.newAnnotation(start, end, label, key)
	if err != nil {
		return nil, err
	}
	doc.spans[key] = append(doc.spans[key], ann)
	return ann, nil
}

func (doc *Document) newAnnotation(start int, end int, label string, key string) (*Annotation, error) {
	if start < 0 || end > len(doc.tokens) || start >= end {
		return nil, fmt.Errorf("%w: [%d, %d) in document of %d tokens", ErrInvalidTokenRange, start, end, len(doc.tokens))
	}
	return &Annotation{
		Span:       doc.charSpan(start, end),
		TokenStart: start,
		TokenEnd:   end,
		Label:      label,
		Key:        key,
		Attributes: make(map[string]interface{}),
	}, nil
}

func (doc *Document) charSpan(start int, end int) Span {
	begin := doc.tokens[start].Begin
	finish := doc.tokens[end-1].End
	span := Span{Begin: begin, End: finish}
	if int(finish) <= len(doc.runes) && begin <= finish {
		span.Text = string(doc.runes[begin:finish])
	} else {
		words := make([]string, 0, end-start)
		for _, token := range doc.tokens[start:end] {
			words = append(words, token.Text)
		}
		span.Text = strings.Join(words, " ")
	}
	return span
}

// TokenRange maps a character range onto the tokens it covers. Both ends must
// fall on token boundaries.
func (doc *Document) TokenRange(begin int32, end int32) (int, int, error) {
	start := sort.Search(len(doc.tokens), func(i int) bool {
		return doc.tokens[i].Begin >= begin
	})
	if start == len(doc.tokens) || doc.tokens[start].Begin != begin {
		return 0, 0, fmt.Errorf("%w: begin %d", ErrInvalidCharRange, begin)
	}
	last := sort.Search(len(doc.tokens), func(i int) bool {
		return doc.tokens[i].End >= end
	})
	if last == len(doc.tokens) || doc.tokens[last].End != end || last < start {
		return 0, 0, fmt.Errorf("%w: end %d", ErrInvalidCharRange, end)
	}
	return start, last + 1, nil
}

// Copy duplicates the span collections so flags can be set independently;
// tokens are shared.
func (doc *Document) Copy() *Document {
	clone := &Document{
		Text:           doc.Text,
		runes:          doc.runes,
		tokens:         doc.tokens,
		sentenceStarts: doc.sentenceStarts,
		hasSentences:   doc.hasSentences,
		spans:          make(map[string][]*Annotation, len(doc.spans)),
	}
	for _, ann := range doc.entities {
		clone.entities = append(clone.entities, ann.Clone())
	}
	for key, group := range doc.spans {
		cloned := make([]*Annotation, len(group))
		for i, ann := range group {
			cloned[i] = ann.Clone()
		}
		clone.spans[key] = cloned
	}
	return clone
}
