package pipeline

import (
	"strconv"

	"text2phenotype.com/negex/negation"
	"text2phenotype.com/negex/types"
)

const PolarityParamName = "polarity"

type Result struct {
	ConfigName string
	Data       interface{}
}

type SpanSection struct {
	Id         int                    `json:"id"`
	Label      string                 `json:"label"`
	Text       []interface{}          `json:"text"`
	Tokens     []int                  `json:"tokens"`
	Attributes map[string]interface{} `json:"attributes"`
}

type NegationResponse struct {
	DocId          string                   `json:"docId"`
	TermSet        string                   `json:"termset"`
	TermSetVersion string                   `json:"termset_version"`
	Extension      string                   `json:"extension_name"`
	Boundaries     [][]int                  `json:"boundaries"`
	Sentences      [][]int                  `json:"sentences,omitempty"`
	Entities       []SpanSection            `json:"entities"`
	Spans          map[string][]SpanSection `json:"spans,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

// NewNegationResult renders one engine pass over doc.
func NewNegationResult(doc *types.Document, neg *negation.Negex, result *negation.Result, request Request) NegationResponse {
	extension := neg.ExtensionName()
	response := NegationResponse{
		DocId:          request.Tid,
		TermSet:        neg.TermSet().Name(),
		TermSetVersion: strconv.FormatUint(neg.Version(), 16),
		Extension:      extension,
		Boundaries:     make([][]int, len(result.Boundaries)),
		Entities:       makeSections(doc.Entities(), extension),
	}
	for i, b := range result.Boundaries {
		response.Boundaries[i] = []int{b.Start, b.End}
	}
	for _, sentence := range doc.Sentences() {
		response.Sentences = append(response.Sentences, []int{sentence.Start, sentence.End})
	}
	if keys := doc.SpanKeys(); len(keys) > 0 {
		response.Spans = make(map[string][]SpanSection, len(keys))
		for _, key := range keys {
			response.Spans[key] = makeSections(doc.SpanGroup(key), extension)
		}
	}
	return response
}

func NewErrorResult(request Request, err error) NegationResponse {
	return NegationResponse{
		DocId:    request.Tid,
		Entities: []SpanSection{},
		Error:    err.Error(),
	}
}

func makeSections(spans []*types.Annotation, extension string) []SpanSection {
	sections := make([]SpanSection, len(spans))
	for i, span := range spans {
		attributes := make(map[string]interface{}, len(span.Attributes)+1)
		for key, value := range span.Attributes {
			attributes[key] = value
		}
		if negated, ok := span.Flag(extension); ok {
			attributes[PolarityParamName] = types.PolarityOf(negated).Name()
		}
		sections[i] = SpanSection{
			Id:    i,
			Label: span.Label,
			Text: []interface{}{
				span.Text,
				span.Begin,
				span.End,
			},
			Tokens:     []int{span.TokenStart, span.TokenEnd},
			Attributes: attributes,
		}
	}
	return sections
}
