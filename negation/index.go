package negation

import (
	"strings"

	"text2phenotype.com/negex/termset"
	"text2phenotype.com/negex/utils"
)

// Match is a phrase occurrence over tokens [Start, End).
type Match struct {
	Category termset.Category
	Start    int
	End      int
}

// PhraseTokenizer splits a trigger phrase into lowercase tokens. It should
// split the same way the documents are tokenized.
type PhraseTokenizer func(phrase string) []string

func WhitespaceTokenizer(phrase string) []string {
	return strings.Fields(strings.ToLower(phrase))
}

// PhraseIndex finds every occurrence of every termset phrase in a token
// sequence.
type PhraseIndex struct {
	tree    *utils.StringPrefixTree
	version uint64
	size    int
}

func NewPhraseIndex(ts *termset.TermSet, tokenize PhraseTokenizer) *PhraseIndex {
	if tokenize == nil {
		tokenize = WhitespaceTokenizer
	}
	idx := &PhraseIndex{
		tree:    utils.NewStringPrefixTree(),
		version: ts.Version(),
	}
	for _, category := range termset.Categories() {
		for _, phrase := range ts.Phrases(category) {
			words := tokenize(phrase)
			for i := range words {
				words[i] = strings.ToLower(words[i])
			}
			if idx.tree.Add(words, string(category)) {
				idx.size++
			}
		}
	}
	return idx
}

// Version is the termset version the index was built from.
func (idx *PhraseIndex) Version() uint64 {
	return idx.version
}

// Size is the number of distinct (phrase, category) entries.
func (idx *PhraseIndex) Size() int {
	return idx.size
}

// FindMatches reports matches ordered by start, then end, then category order
// of insertion. Overlapping and nested matches are all reported.
func (idx *PhraseIndex) FindMatches(tokens []string) []Match {
	lower := make([]string, len(tokens))
	for i, token := range tokens {
		lower[i] = strings.ToLower(token)
	}

	matches := make([]Match, 0)
	for start := range lower {
		idx.tree.Walk(lower, start, func(labels []string, end int) {
			for _, label := range labels {
				matches = append(matches, Match{Category: termset.Category(label), Start: start, End: end})
			}
		})
	}
	return matches
}
