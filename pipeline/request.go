package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"text2phenotype.com/negex/tokenizer"
	"text2phenotype.com/negex/types"
)

var ErrEmptyRequest = errors.New("pipeline: request has neither text nor tokens")

// SpanPayload marks a span either by character offsets into the request text
// or, when TokenStart and TokenEnd are set, by token offsets.
type SpanPayload struct {
	Begin      int32  `json:"begin"`
	End        int32  `json:"end"`
	TokenStart *int   `json:"token_start,omitempty"`
	TokenEnd   *int   `json:"token_end,omitempty"`
	Label      string `json:"label"`
}

type Request struct {
	Tid            string                   `json:"tid"`
	Text           string                   `json:"text"`
	Tokens         []string                 `json:"tokens,omitempty"`
	SentenceStarts []int                    `json:"sentence_starts,omitempty"`
	Entities       []SpanPayload            `json:"entities,omitempty"`
	Spans          map[string][]SpanPayload `json:"spans,omitempty"`
}

// DecodeRequest reads a JSON request document. Anything that does not decode
// as one is taken as plain text.
func DecodeRequest(data []byte) Request {
	var request Request
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &request) != nil {
		return Request{Text: string(data)}
	}
	return request
}

// BuildDocument tokenizes the request and attaches its sentence starts and
// spans. Sentence starts come from the request when given, otherwise from seg
// when it is not nil.
func BuildDocument(request Request, seg *tokenizer.SentenceSegmenter) (*types.Document, error) {
	var doc *types.Document
	switch {
	case len(request.Tokens) > 0:
		doc = types.NewDocumentFromWords(request.Tokens)
	case len(request.Text) > 0:
		doc = types.NewDocument(request.Text, tokenizer.Tokenize(request.Text))
	default:
		return nil, ErrEmptyRequest
	}

	switch {
	case request.SentenceStarts != nil:
		if err := doc.SetSentenceStarts(request.SentenceStarts); err != nil {
			return nil, err
		}
	case seg != nil && len(request.Tokens) == 0:
		if err := doc.SetSentenceStarts(seg.SentenceStarts(doc.Text, doc.Tokens())); err != nil {
			return nil, err
		}
	}

	for i, payload := range request.Entities {
		start, end, err := tokenRange(doc, payload)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		if _, err := doc.AddEntity(start, end, payload.Label); err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
	}
	for key, payloads := range request.Spans {
		for i, payload := range payloads {
			start, end, err := tokenRange(doc, payload)
			if err != nil {
				return nil, fmt.Errorf("span %s[%d]: %w", key, i, err)
			}
			if _, err := doc.AddSpan(key, start, end, payload.Label); err != nil {
				return nil, fmt.Errorf("span %s[%d]: %w", key, i, err)
			}
		}
	}
	return doc, nil
}

func tokenRange(doc *types.Document, payload SpanPayload) (int, int, error) {
	if payload.TokenStart != nil && payload.TokenEnd != nil {
		return *payload.TokenStart, *payload.TokenEnd, nil
	}
	return doc.TokenRange(payload.Begin, payload.End)
}
