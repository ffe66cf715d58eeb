package tokenizer

import (
	"sort"
	"strings"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"

	"text2phenotype.com/negex/types"
	"text2phenotype.com/negex/utils"
)

// SentenceSegmenter finds sentence starts with the punkt model for English.
type SentenceSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func NewSentenceSegmenter() (*SentenceSegmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &SentenceSegmenter{tokenizer: tokenizer}, nil
}

// SentenceStarts returns the index of the first token of every sentence after
// the first one. tokens must come from Tokenize(text).
func (seg *SentenceSegmenter) SentenceStarts(text string, tokens []*types.Token) []int {
	if len(tokens) == 0 {
		return []int{}
	}

	_, byteOffsets := utils.MakeRuneByteSlices(text)
	cursor := 0
	starts := make([]int, 0, 8)
	for _, sent := range seg.tokenizer.Tokenize(text) {
		sentText := strings.TrimSpace(sent.Text)
		if len(sentText) == 0 {
			continue
		}
		idx := strings.Index(text[cursor:], sentText)
		if idx < 0 {
			continue
		}
		cursor += idx

		begin := int32(sort.SearchInts(byteOffsets, cursor))
		tokenIdx := sort.Search(len(tokens), func(i int) bool {
			return tokens[i].Begin >= begin
		})
		if tokenIdx > 0 && tokenIdx < len(tokens) {
			if len(starts) == 0 || starts[len(starts)-1] < tokenIdx {
				starts = append(starts, tokenIdx)
			}
		}

		cursor += len(sentText)
	}
	return starts
}
