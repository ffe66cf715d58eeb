package negation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"text2phenotype.com/negex/logger"
	"text2phenotype.com/negex/termset"
	"text2phenotype.com/negex/types"
)

const DefaultExtensionName = types.DefaultExtensionName

var (
	ErrTermSetIsNil     = errors.New("negex: termset is nil")
	ErrSentencesMissing = errors.New("negex: document has no sentence boundaries")
	ErrSpanOutOfRange   = errors.New("negex: span out of token range")
)

// Document is what the engine reads and annotates.
type Document interface {
	Tokens() []*types.Token
	// SentenceStarts returns token indexes of sentence starts; ok is false when
	// the document carries no sentence information.
	SentenceStarts() (starts []int, ok bool)
	Entities() []*types.Annotation
	SpanGroup(key string) []*types.Annotation
}

type Config struct {
	// EntityTypes restricts evaluation to spans with these labels.
	EntityTypes []string
	// ExtensionName is the flag written onto spans, DefaultExtensionName if empty.
	ExtensionName string
	// ChunkPrefix negates spans whose lowercase text starts with one of these.
	ChunkPrefix []string
	// SpanKeys selects span groups to evaluate instead of the entities.
	SpanKeys []string
	// RequireSentences makes Process fail on documents without sentence starts.
	RequireSentences bool
	// PhraseTokenizer splits trigger phrases, WhitespaceTokenizer if nil.
	PhraseTokenizer PhraseTokenizer
}

// Result describes one pass.
type Result struct {
	Matches    Matches
	Boundaries []Boundary
	Evaluated  int
	Negated    int
	Skipped    int
}

// Negex flags spans as negated. Process may run concurrently; AddPatterns and
// RemovePatterns wait for running passes and rebuild the phrase index.
type Negex struct {
	mu          sync.RWMutex
	termSet     *termset.TermSet
	index       *PhraseIndex
	cfg         Config
	entityTypes map[string]bool
	chunkPrefix []string
	log         zerolog.Logger
}

func New(ts *termset.TermSet, cfg Config) (*Negex, error) {
	if ts == nil {
		return nil, ErrTermSetIsNil
	}
	if len(cfg.ExtensionName) == 0 {
		cfg.ExtensionName = DefaultExtensionName
	}
	if cfg.PhraseTokenizer == nil {
		cfg.PhraseTokenizer = WhitespaceTokenizer
	}

	neg := &Negex{
		termSet: ts.Clone(),
		cfg:     cfg,
		log:     logger.NewLogger("Negex").With().Str("termset", ts.Name()).Logger(),
	}
	if len(cfg.EntityTypes) > 0 {
		neg.entityTypes = make(map[string]bool, len(cfg.EntityTypes))
		for _, label := range cfg.EntityTypes {
			neg.entityTypes[label] = true
		}
	}
	for _, prefix := range cfg.ChunkPrefix {
		neg.chunkPrefix = append(neg.chunkPrefix, strings.ToLower(prefix))
	}
	neg.index = NewPhraseIndex(neg.termSet, cfg.PhraseTokenizer)
	neg.log.Debug().Int("phrases", neg.index.Size()).Msg("Phrase index built")
	return neg, nil
}

func (neg *Negex) ExtensionName() string {
	return neg.cfg.ExtensionName
}

// TermSet returns a copy of the current termset.
func (neg *Negex) TermSet() *termset.TermSet {
	neg.mu.RLock()
	defer neg.mu.RUnlock()
	return neg.termSet.Clone()
}

func (neg *Negex) Version() uint64 {
	neg.mu.RLock()
	defer neg.mu.RUnlock()
	return neg.index.Version()
}

func (neg *Negex) AddPatterns(raw map[string]interface{}) error {
	return neg.update(func(ts *termset.TermSet) error {
		return ts.AddPatterns(raw)
	})
}

func (neg *Negex) RemovePatterns(raw map[string]interface{}) error {
	return neg.update(func(ts *termset.TermSet) error {
		return ts.RemovePatterns(raw)
	})
}

// update applies change to a copy of the termset and swaps in the copy with a
// rebuilt index. On error nothing changes.
func (neg *Negex) update(change func(ts *termset.TermSet) error) error {
	neg.mu.Lock()
	defer neg.mu.Unlock()

	ts := neg.termSet.Clone()
	if err := change(ts); err != nil {
		return err
	}
	neg.termSet = ts
	neg.index = NewPhraseIndex(ts, neg.cfg.PhraseTokenizer)
	neg.log.Debug().Int("phrases", neg.index.Size()).Uint64("version", neg.index.Version()).Msg("Phrase index rebuilt")
	return nil
}

// Process sets the extension flag on the candidate spans of doc.
func (neg *Negex) Process(doc Document) error {
	_, err := neg.Analyze(doc)
	return err
}

// Analyze is Process returning the matches and boundaries it used.
func (neg *Negex) Analyze(doc Document) (*Result, error) {
	neg.mu.RLock()
	defer neg.mu.RUnlock()

	tokens := doc.Tokens()
	length := len(tokens)

	sentenceStarts, ok := doc.SentenceStarts()
	if !ok && neg.cfg.RequireSentences {
		return nil, ErrSentencesMissing
	}

	spans, contained := neg.candidates(doc)
	for _, span := range spans {
		if span.TokenStart < 0 || span.TokenEnd > length || span.TokenStart >= span.TokenEnd {
			return nil, fmt.Errorf("%w: %q [%d, %d) in %d tokens",
				ErrSpanOutOfRange, span.Text, span.TokenStart, span.TokenEnd, length)
		}
	}

	matches := ClassifyMatches(neg.index.FindMatches(types.LowerTexts(tokens)), &neg.log)
	boundaries := TerminationBoundaries(sentenceStarts, Starts(matches.Termination), length)
	scopes := newScopes(boundaries, matches)

	name := neg.cfg.ExtensionName
	result := &Result{Matches: matches, Boundaries: boundaries}
	for _, span := range spans {
		if neg.entityTypes != nil && !neg.entityTypes[span.Label] {
			result.Skipped++
			continue
		}
		// Skipped spans keep whatever flag they had, evaluated ones default to false.
		if _, isSet := span.Flag(name); !isSet {
			span.SetFlag(name, false)
		}
		result.Evaluated++
		if neg.isNegated(span, scopes, contained) {
			span.SetFlag(name, true)
		}
		if negated, _ := span.Flag(name); negated {
			result.Negated++
		}
	}
	return result, nil
}

// candidates returns the spans to evaluate and whether they must lie fully
// inside a boundary.
func (neg *Negex) candidates(doc Document) ([]*types.Annotation, bool) {
	if len(neg.cfg.SpanKeys) == 0 {
		return doc.Entities(), false
	}
	var spans []*types.Annotation
	for _, key := range neg.cfg.SpanKeys {
		spans = append(spans, doc.SpanGroup(key)...)
	}
	return spans, true
}

func (neg *Negex) isNegated(span *types.Annotation, scopes *scopes, contained bool) bool {
	first, last := scopes.covering(span.TokenStart, span.TokenEnd)
	if first < 0 || last < 0 || (contained && first != last) {
		// not inside any single boundary, never a candidate
		return false
	}
	for i := first; i <= last; i++ {
		if scopes.minPreceding[i] < span.TokenStart {
			return true
		}
	}
	for i := first; i <= last; i++ {
		if scopes.maxFollowing[i] > span.TokenEnd {
			return true
		}
	}
	if len(neg.chunkPrefix) > 0 {
		text := strings.ToLower(span.Text)
		for _, prefix := range neg.chunkPrefix {
			if strings.HasPrefix(text, prefix) {
				return true
			}
		}
	}
	return false
}

// scopes keeps, per boundary, the smallest preceding start and the largest
// following end found inside it.
type scopes struct {
	boundaries   []Boundary
	minPreceding []int
	maxFollowing []int
}

func newScopes(boundaries []Boundary, matches Matches) *scopes {
	sc := &scopes{
		boundaries:   boundaries,
		minPreceding: make([]int, len(boundaries)),
		maxFollowing: make([]int, len(boundaries)),
	}
	for i, b := range boundaries {
		sc.minPreceding[i] = b.End
		sc.maxFollowing[i] = b.Start
	}
	for _, match := range matches.Preceding {
		if i := sc.find(match.Start); i >= 0 && match.Start < sc.minPreceding[i] {
			sc.minPreceding[i] = match.Start
		}
	}
	for _, match := range matches.Following {
		if i := sc.find(match.Start); i >= 0 && match.End > sc.maxFollowing[i] {
			sc.maxFollowing[i] = match.End
		}
	}
	return sc
}

// find returns the boundary holding pos, -1 if none does.
func (sc *scopes) find(pos int) int {
	i := sort.Search(len(sc.boundaries), func(i int) bool {
		return sc.boundaries[i].End > pos
	})
	if i == len(sc.boundaries) || sc.boundaries[i].Start > pos {
		return -1
	}
	return i
}

// covering returns the first and last boundary intersecting [start, end).
func (sc *scopes) covering(start int, end int) (int, int) {
	return sc.find(start), sc.find(end - 1)
}
