package types

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"text2phenotype.com/negex/logger"
	"text2phenotype.com/negex/termset"
)

const DefaultExtensionName = "negex"

var ErrTermSetConflict = errors.New("termset and termset_dir are mutually exclusive")

// Configuration is one named negation setup, read from <name>.yaml.
type Configuration struct {
	Name             string                 `yaml:"-" json:"name"`
	FilePath         string                 `yaml:"-" json:"file_path"`
	TermSet          termset.Source         `yaml:"termset" json:"termset"`
	TermSetDir       string                 `yaml:"termset_dir" json:"termset_dir,omitempty"`
	AddPatterns      map[string]interface{} `yaml:"add_patterns" json:"add_patterns,omitempty"`
	RemovePatterns   map[string]interface{} `yaml:"remove_patterns" json:"remove_patterns,omitempty"`
	EntityTypes      []string               `yaml:"entity_types" json:"entity_types,omitempty"`
	ExtensionName    string                 `yaml:"extension_name" json:"extension_name"`
	ChunkPrefix      []string               `yaml:"chunk_prefix" json:"chunk_prefix,omitempty"`
	SpanKeys         []string               `yaml:"span_keys" json:"span_keys,omitempty"`
	RequireSentences bool                   `yaml:"require_sentences" json:"require_sentences"`
}

func (cfg Configuration) GetExtensionName() string {
	if len(cfg.ExtensionName) == 0 {
		return DefaultExtensionName
	}
	return cfg.ExtensionName
}

// BuildTermSet resolves the termset source and applies the configured
// additions, then removals.
func (cfg Configuration) BuildTermSet() (*termset.TermSet, error) {
	var ts *termset.TermSet
	var err error
	if len(cfg.TermSetDir) > 0 {
		ts, err = termset.LoadDir(cfg.termSetDir())
	} else {
		ts, err = cfg.TermSet.Build(cfg.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("configuration %q: %w", cfg.Name, err)
	}
	if len(cfg.AddPatterns) > 0 {
		if err := ts.AddPatterns(cfg.AddPatterns); err != nil {
			return nil, fmt.Errorf("configuration %q: add_patterns: %w", cfg.Name, err)
		}
	}
	if len(cfg.RemovePatterns) > 0 {
		if err := ts.RemovePatterns(cfg.RemovePatterns); err != nil {
			return nil, fmt.Errorf("configuration %q: remove_patterns: %w", cfg.Name, err)
		}
	}
	return ts, nil
}

func ParseConfiguration(name string, buf []byte) (Configuration, error) {
	cfg := Configuration{Name: name}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, err
	}
	switch {
	case cfg.TermSet.IsEmpty() && len(cfg.TermSetDir) == 0:
		return cfg, fmt.Errorf("configuration %q: %w", name, termset.ErrNoTermSet)
	case !cfg.TermSet.IsEmpty() && len(cfg.TermSetDir) > 0:
		return cfg, fmt.Errorf("configuration %q: %w", name, ErrTermSetConflict)
	}
	return cfg, nil
}

// termSetDir resolves a relative termset_dir against the configuration file.
func (cfg Configuration) termSetDir() string {
	if filepath.IsAbs(cfg.TermSetDir) || len(cfg.FilePath) == 0 {
		return cfg.TermSetDir
	}
	return filepath.Join(filepath.Dir(cfg.FilePath), cfg.TermSetDir)
}

// LoadConfigurations reads every *.yaml file of dirPath. Files that fail to
// parse are logged and skipped.
func LoadConfigurations(dirPath string) ([]Configuration, error) {
	negexLogger := logger.NewLogger("LoadConfigurations")

	files, err := ioutil.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(file os.FileInfo) {
			defer wg.Done()
			filePath := path.Join(dirPath, file.Name())
			buf, err := ioutil.ReadFile(filePath)
			if err != nil {
				negexLogger.Err(err).Str("file", filePath).Msg("Failed to read configuration")
				return
			}
			cfg, err := ParseConfiguration(strings.TrimSuffix(file.Name(), ".yaml"), buf)
			if err != nil {
				negexLogger.Err(err).Str("file", filePath).Msg("Failed to parse configuration")
				return
			}
			cfg.FilePath = filePath
			configChan <- cfg
		}(f)
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(files))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})
	return configs, nil
}
