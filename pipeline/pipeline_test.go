package pipeline

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"text2phenotype.com/negex/termset"
	"text2phenotype.com/negex/types"
)

const customConfig = `
termset:
  pseudo: [""]
  preceding: ["not"]
  following: []
  termination: ["whatever"]
`

func parseConfig(t *testing.T, name string, content string) types.Configuration {
	cfg, err := types.ParseConfiguration(name, []byte(content))
	require.NoError(t, err)
	return cfg
}

func newTestPipeline(t *testing.T, cfgs ...types.Configuration) Pipeline {
	ppln, err := NewPipeline(Params{Configurations: cfgs})
	require.NoError(t, err)
	return ppln
}

func intPtr(v int) *int {
	return &v
}

func TestCustomTermSetResponse(t *testing.T) {
	cfg := parseConfig(t, "custom", customConfig)
	ts, err := cfg.BuildTermSet()
	require.NoError(t, err)

	req := Request{
		Tid:  "doc-1",
		Text: "He does not like Steve Jobs whatever he says about Barack Obama.",
		Entities: []SpanPayload{
			{Begin: 17, End: 27, Label: "PERSON"},
			{Begin: 51, End: 63, Label: "PERSON"},
		},
	}
	res := <-newTestPipeline(t, cfg)(req)

	expected := map[string]NegationResponse{
		"custom": {
			DocId:          "doc-1",
			TermSet:        "custom",
			TermSetVersion: strconv.FormatUint(ts.Version(), 16),
			Extension:      "negex",
			Boundaries:     [][]int{{0, 6}, {6, 13}},
			Entities: []SpanSection{
				{
					Id:         0,
					Label:      "PERSON",
					Text:       []interface{}{"Steve Jobs", 17, 27},
					Tokens:     []int{4, 6},
					Attributes: map[string]interface{}{"negex": true, "polarity": "negative"},
				},
				{
					Id:         1,
					Label:      "PERSON",
					Text:       []interface{}{"Barack Obama", 51, 63},
					Tokens:     []int{10, 12},
					Attributes: map[string]interface{}{"negex": false, "polarity": "positive"},
				},
			},
		},
	}
	expectedBuf, err := json.Marshal(expected)
	require.NoError(t, err)
	if !jsonpatch.Equal([]byte(res), expectedBuf) {
		t.Errorf("response mismatch\n got: %s\nwant: %s", res, expectedBuf)
	}
}

func TestConfigurationsRunIndependently(t *testing.T) {
	clinical := parseConfig(t, "clinical", "termset: en_clinical\nentity_types: [PROBLEM]\n")
	strict := parseConfig(t, "strict", "termset: en\nrequire_sentences: true\n")
	spans := parseConfig(t, "spans", "termset: en\nspan_keys: [chunks]\nextension_name: negated\n")

	req := Request{
		Tid:  "doc-2",
		Text: "Denies fever and Tylenol use",
		Entities: []SpanPayload{
			{Begin: 7, End: 12, Label: "PROBLEM"},
			{Begin: 17, End: 24, Label: "DRUG"},
		},
		Spans: map[string][]SpanPayload{
			"chunks": {{TokenStart: intPtr(1), TokenEnd: intPtr(2), Label: "NP"}},
		},
	}
	res := <-newTestPipeline(t, clinical, strict, spans)(req)

	response := make(map[string]NegationResponse)
	require.NoError(t, json.Unmarshal([]byte(res), &response))
	require.Len(t, response, 3)

	got := response["clinical"]
	assert.Empty(t, got.Error)
	require.Len(t, got.Entities, 2)
	assert.Equal(t, true, got.Entities[0].Attributes["negex"])
	assert.Equal(t, "negative", got.Entities[0].Attributes["polarity"])
	assert.NotContains(t, got.Entities[1].Attributes, "negex")
	assert.NotContains(t, got.Entities[1].Attributes, "polarity")
	assert.Equal(t, "Tylenol", got.Entities[1].Text[0])

	assert.Contains(t, response["strict"].Error, "sentence")

	got = response["spans"]
	assert.Empty(t, got.Error)
	require.Len(t, got.Spans["chunks"], 1)
	assert.Equal(t, true, got.Spans["chunks"][0].Attributes["negated"])
	assert.NotContains(t, got.Entities[0].Attributes, "negated")
	assert.NotContains(t, got.Entities[0].Attributes, "negex")
}

func TestTokenizedRequest(t *testing.T) {
	cfg := parseConfig(t, "clinical", "termset: en_clinical\n")
	req := Request{
		Tid:            "doc-3",
		Tokens:         []string{"Patient", "denies", "Apple", "Computers", "but", "has", "Steve", "Jobs", ".", "He", "likes", "USA", "."},
		SentenceStarts: []int{0, 9},
		Entities: []SpanPayload{
			{TokenStart: intPtr(2), TokenEnd: intPtr(4), Label: "ORG"},
			{TokenStart: intPtr(6), TokenEnd: intPtr(8), Label: "PERSON"},
			{TokenStart: intPtr(11), TokenEnd: intPtr(12), Label: "GPE"},
		},
	}
	res := <-newTestPipeline(t, cfg)(req)

	response := make(map[string]NegationResponse)
	require.NoError(t, json.Unmarshal([]byte(res), &response))
	got := response["clinical"]
	require.Len(t, got.Entities, 3)
	negated := make([]interface{}, 3)
	for i, ent := range got.Entities {
		negated[i] = ent.Attributes["negex"]
	}
	assert.Equal(t, []interface{}{true, false, false}, negated)
	assert.Equal(t, [][]int{{0, 4}, {4, 9}, {9, 13}}, got.Boundaries)
	assert.Equal(t, [][]int{{0, 9}, {9, 13}}, got.Sentences)
}

func TestSentenceSegmentation(t *testing.T) {
	cfg := parseConfig(t, "strict", "termset: en_clinical\nrequire_sentences: true\n")
	ppln, err := NewPipeline(Params{Configurations: []types.Configuration{cfg}, SegmentSentences: true})
	require.NoError(t, err)

	req := Request{
		Tid:      "doc-4",
		Text:     "The patient denies fever. She reports a cough.",
		Entities: []SpanPayload{{Begin: 19, End: 24, Label: "PROBLEM"}, {Begin: 40, End: 45, Label: "PROBLEM"}},
	}
	response := make(map[string]NegationResponse)
	require.NoError(t, json.Unmarshal([]byte(<-ppln(req)), &response))
	got := response["strict"]
	require.Empty(t, got.Error)
	assert.Equal(t, true, got.Entities[0].Attributes["negex"])
	assert.Equal(t, false, got.Entities[1].Attributes["negex"])
	assert.Equal(t, [][]int{{0, 5}, {5, 10}}, got.Sentences)
}

func TestBadRequests(t *testing.T) {
	ppln := newTestPipeline(t, parseConfig(t, "custom", customConfig))

	cases := map[string]Request{
		"empty":          {Tid: "empty"},
		"misaligned":     {Tid: "misaligned", Text: "no fever", Entities: []SpanPayload{{Begin: 1, End: 8}}},
		"token range":    {Tid: "range", Tokens: []string{"no"}, Entities: []SpanPayload{{TokenStart: intPtr(0), TokenEnd: intPtr(3)}}},
		"sentence start": {Tid: "sent", Text: "no fever", SentenceStarts: []int{5}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			response := make(map[string]NegationResponse)
			require.NoError(t, json.Unmarshal([]byte(<-ppln(req)), &response))
			assert.NotEmpty(t, response["custom"].Error)
			assert.Equal(t, req.Tid, response["custom"].DocId)
		})
	}
}

func TestNewPipelineErrors(t *testing.T) {
	_, err := NewPipeline(Params{})
	assert.Error(t, err)

	bad := parseConfig(t, "bad", "termset:\n  pseudo: []\n  preceding: []\n")
	_, err = NewPipeline(Params{Configurations: []types.Configuration{bad}})
	assert.True(t, errors.Is(err, termset.ErrUnexpectedKeys))
}
