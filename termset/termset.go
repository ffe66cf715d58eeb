package termset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"text2phenotype.com/negex/utils"
)

type Category string

const (
	Pseudo      Category = "pseudo"
	Preceding   Category = "preceding"
	Following   Category = "following"
	Termination Category = "termination"
)

// Categories lists the four categories in index build order.
func Categories() []Category {
	return []Category{Pseudo, Preceding, Following, Termination}
}

func (c Category) Valid() bool {
	switch c {
	case Pseudo, Preceding, Following, Termination:
		return true
	}
	return false
}

var (
	ErrUnexpectedKeys  = errors.New("termset: unexpected or missing categories")
	ErrUnknownCategory = errors.New("termset: unknown category")
	ErrNotSequence     = errors.New("termset: category value is not a list of phrases")
	ErrUnknownProfile  = errors.New("termset: unknown profile")
)

// Patterns maps each category to its phrases.
type Patterns map[Category][]string

func (patterns Patterns) clone() Patterns {
	result := make(Patterns, len(patterns))
	for category, phrases := range patterns {
		result[category] = append([]string(nil), phrases...)
	}
	return result
}

// TermSet holds the trigger phrases of one profile. Every TermSet owns its
// phrase lists; nothing is shared between instances.
type TermSet struct {
	name     string
	patterns Patterns
}

// New validates that patterns carries exactly the four categories.
func New(name string, patterns map[string][]string) (*TermSet, error) {
	if err := checkKeys(patterns); err != nil {
		return nil, err
	}
	ts := &TermSet{name: name, patterns: make(Patterns, len(patterns))}
	for key, phrases := range patterns {
		ts.patterns[Category(key)] = append([]string(nil), phrases...)
	}
	return ts, nil
}

// FromProfile builds a TermSet from one of the built-in profiles.
func FromProfile(name string) (*TermSet, error) {
	patterns, ok := profilePatterns(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q, expected one of %v", ErrUnknownProfile, name, Profiles())
	}
	return &TermSet{name: name, patterns: patterns}, nil
}

func checkKeys(patterns map[string][]string) error {
	got := make([]string, 0, len(patterns))
	valid := 0
	for key := range patterns {
		got = append(got, key)
		if Category(key).Valid() {
			valid++
		}
	}
	if valid != len(Categories()) || len(patterns) != len(Categories()) {
		sort.Strings(got)
		return fmt.Errorf("%w: expected %v, instead got %v", ErrUnexpectedKeys, Categories(), got)
	}
	return nil
}

func (ts *TermSet) Name() string {
	return ts.name
}

// Patterns returns a copy of all phrase lists.
func (ts *TermSet) Patterns() Patterns {
	return ts.patterns.clone()
}

// Phrases returns a copy of the phrases of one category.
func (ts *TermSet) Phrases(category Category) []string {
	return append([]string(nil), ts.patterns[category]...)
}

func (ts *TermSet) Clone() *TermSet {
	return &TermSet{name: ts.name, patterns: ts.patterns.clone()}
}

// Version fingerprints the phrase lists. Any add or remove that changes a
// list changes the version.
func (ts *TermSet) Version() uint64 {
	parts := make([]string, 0, 64)
	for _, category := range Categories() {
		parts = append(parts, string(category))
		parts = append(parts, ts.patterns[category]...)
	}
	return utils.HashStrings(parts...)
}

// Add extends the given categories. Phrases already present are not added again.
func (ts *TermSet) Add(patterns Patterns) error {
	if err := checkCategories(patterns); err != nil {
		return err
	}
	for category, phrases := range patterns {
		present := toSet(ts.patterns[category])
		for _, phrase := range phrases {
			if present[phrase] {
				continue
			}
			present[phrase] = true
			ts.patterns[category] = append(ts.patterns[category], phrase)
		}
	}
	return nil
}

// Remove drops the given phrases. Phrases that are not present are ignored.
func (ts *TermSet) Remove(patterns Patterns) error {
	if err := checkCategories(patterns); err != nil {
		return err
	}
	for category, phrases := range patterns {
		drop := toSet(phrases)
		kept := make([]string, 0, len(ts.patterns[category]))
		for _, phrase := range ts.patterns[category] {
			if !drop[phrase] {
				kept = append(kept, phrase)
			}
		}
		ts.patterns[category] = kept
	}
	return nil
}

// AddPatterns is Add for loosely typed input such as decoded JSON or YAML.
// The whole input is validated before anything is changed.
func (ts *TermSet) AddPatterns(raw map[string]interface{}) error {
	patterns, err := ParsePatterns(raw)
	if err != nil {
		return err
	}
	return ts.Add(patterns)
}

// RemovePatterns is Remove for loosely typed input.
func (ts *TermSet) RemovePatterns(raw map[string]interface{}) error {
	patterns, err := ParsePatterns(raw)
	if err != nil {
		return err
	}
	return ts.Remove(patterns)
}

// ParsePatterns converts a partial category mapping, rejecting unknown
// categories and values that are not lists of strings.
func ParsePatterns(raw map[string]interface{}) (Patterns, error) {
	patterns := make(Patterns, len(raw))
	for key, value := range raw {
		category := Category(key)
		if !category.Valid() {
			return nil, fmt.Errorf("%w: %q not in %v", ErrUnknownCategory, key, Categories())
		}
		phrases, err := toPhrases(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, key)
		}
		patterns[category] = phrases
	}
	return patterns, nil
}

func toPhrases(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		phrases := make([]string, len(v))
		for i, item := range v {
			phrase, ok := item.(string)
			if !ok {
				return nil, ErrNotSequence
			}
			phrases[i] = phrase
		}
		return phrases, nil
	}
	return nil, ErrNotSequence
}

func checkCategories(patterns Patterns) error {
	for category := range patterns {
		if !category.Valid() {
			return fmt.Errorf("%w: %q not in %v", ErrUnknownCategory, category, Categories())
		}
	}
	return nil
}

func toSet(phrases []string) map[string]bool {
	set := make(map[string]bool, len(phrases))
	for _, phrase := range phrases {
		set[phrase] = true
	}
	return set
}

func (ts *TermSet) String() string {
	counts := make([]string, 0, 4)
	for _, category := range Categories() {
		counts = append(counts, fmt.Sprintf("%s=%d", category, len(ts.patterns[category])))
	}
	return fmt.Sprintf("termset(%s: %s)", ts.name, strings.Join(counts, ", "))
}
