package termset

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"text2phenotype.com/negex/utils"
)

var ErrNoTermSet = errors.New("termset: neither profile nor patterns given")

// Source is how a configuration names its termset: either a built-in profile
// (a YAML scalar) or an explicit mapping of the four categories.
type Source struct {
	Profile  string
	Patterns map[string][]string
}

func (src *Source) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		src.Patterns = nil
		return value.Decode(&src.Profile)
	case yaml.MappingNode:
		var raw map[string]interface{}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		patterns := make(map[string][]string, len(raw))
		for key, v := range raw {
			phrases, err := toPhrases(v)
			if err != nil {
				return fmt.Errorf("%w: %q (line %d)", err, key, value.Line)
			}
			patterns[key] = phrases
		}
		src.Profile = ""
		src.Patterns = patterns
		return nil
	}
	return fmt.Errorf("termset: line %d: expected a profile name or a mapping", value.Line)
}

func (src Source) MarshalYAML() (interface{}, error) {
	if src.Patterns != nil {
		return src.Patterns, nil
	}
	return src.Profile, nil
}

func (src Source) IsEmpty() bool {
	return src.Patterns == nil && len(src.Profile) == 0
}

// Build creates a fresh TermSet; explicit patterns win over a profile name.
func (src Source) Build(name string) (*TermSet, error) {
	switch {
	case src.Patterns != nil:
		return New(name, src.Patterns)
	case len(src.Profile) > 0:
		return FromProfile(src.Profile)
	}
	return nil, ErrNoTermSet
}

// Load reads a YAML file holding the four categories.
func Load(filePath string) (*TermSet, error) {
	buf, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var src Source
	if err := yaml.Unmarshal(buf, &src); err != nil {
		return nil, fmt.Errorf("termset %s: %w", filePath, err)
	}
	if src.Patterns == nil {
		return nil, fmt.Errorf("termset %s: %w", filePath, ErrUnexpectedKeys)
	}
	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return New(name, src.Patterns)
}

// LoadDir reads <category>.txt files, one phrase per line. All four files must exist.
func LoadDir(dirPath string) (*TermSet, error) {
	patterns := make(map[string][]string, len(Categories()))
	for _, category := range Categories() {
		phrases, err := utils.ReadList(path.Join(dirPath, string(category)+".txt"))
		if err != nil {
			return nil, fmt.Errorf("termset %s: %w", dirPath, err)
		}
		if phrases == nil {
			phrases = []string{}
		}
		patterns[string(category)] = phrases
	}
	return New(filepath.Base(dirPath), patterns)
}

// Marshal renders the termset in the format Load reads.
func Marshal(ts *TermSet) ([]byte, error) {
	out := make(map[string][]string, len(ts.patterns))
	for category, phrases := range ts.patterns {
		out[string(category)] = append([]string{}, phrases...)
	}
	return yaml.Marshal(out)
}
