package types

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"text2phenotype.com/negex/termset"
)

func TestNewDocumentFromWords(t *testing.T) {
	doc := NewDocumentFromWords([]string{"She", "does", "not", "like", "Steve", "Jobs"})
	assert.Equal(t, "She does not like Steve Jobs", doc.Text)
	assert.Equal(t, 6, doc.Len())

	ann, err := doc.AddEntity(4, 6, "PERSON")
	require.NoError(t, err)
	assert.Equal(t, "Steve Jobs", ann.Text)
	assert.Equal(t, int32(18), ann.Begin)
	assert.Equal(t, int32(28), ann.End)

	for _, bad := range [][2]int{{-1, 2}, {3, 3}, {5, 7}, {4, 2}} {
		_, err := doc.AddEntity(bad[0], bad[1], "X")
		assert.True(t, errors.Is(err, ErrInvalidTokenRange), "%v", bad)
	}
	assert.Len(t, doc.Entities(), 1)
}

func TestSentenceStarts(t *testing.T) {
	doc := NewDocumentFromWords([]string{"no", "fever", ".", "has", "cough", "."})
	_, ok := doc.SentenceStarts()
	assert.False(t, ok)
	assert.Nil(t, doc.Sentences())

	require.NoError(t, doc.SetSentenceStarts([]int{3, 0}))
	starts, ok := doc.SentenceStarts()
	assert.True(t, ok)
	assert.Equal(t, []int{0, 3}, starts)

	sentences := doc.Sentences()
	require.Len(t, sentences, 2)
	assert.Equal(t, "no fever .", sentences[0].Text)
	assert.Equal(t, 3, sentences[1].Start)
	assert.Equal(t, 6, sentences[1].End)

	err := doc.SetSentenceStarts([]int{7})
	assert.True(t, errors.Is(err, ErrInvalidSentenceStart))
}

func TestTokenRange(t *testing.T) {
	doc := NewDocumentFromWords([]string{"denies", "chest", "pain"})

	start, end, err := doc.TokenRange(7, 17)
	require.NoError(t, err)
	assert.Equal(t, 1, start)
	assert.Equal(t, 3, end)

	_, _, err = doc.TokenRange(8, 17)
	assert.True(t, errors.Is(err, ErrInvalidCharRange))
	_, _, err = doc.TokenRange(7, 15)
	assert.True(t, errors.Is(err, ErrInvalidCharRange))
}

func TestDocumentCopy(t *testing.T) {
	doc := NewDocumentFromWords([]string{"no", "fever"})
	ent, err := doc.AddEntity(1, 2, "PROBLEM")
	require.NoError(t, err)
	_, err = doc.AddSpan("sc", 0, 2, "CHUNK")
	require.NoError(t, err)
	ent.SetFlag("negex", false)

	clone := doc.Copy()
	clone.Entities()[0].SetFlag("negex", true)
	clone.SpanGroup("sc")[0].SetFlag("negex", true)

	value, ok := ent.Flag("negex")
	assert.True(t, ok)
	assert.False(t, value)
	_, ok = doc.SpanGroup("sc")[0].Flag("negex")
	assert.False(t, ok)
	assert.Equal(t, []string{"sc"}, clone.SpanKeys())
}

func TestPolarityOf(t *testing.T) {
	assert.Equal(t, "negative", PolarityOf(true).Name())
	assert.Equal(t, "positive", PolarityOf(false).Name())
	assert.Equal(t, "neutral", PolarityNeutral.Name())
}

func writeConfig(t *testing.T, dir string, name string, content string) {
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfigurations(t *testing.T) {
	dir, err := ioutil.TempDir("", "negex-configs")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	writeConfig(t, dir, "clinical.yaml", `
termset: en_clinical
entity_types: [PROBLEM]
add_patterns:
  preceding: ["ruled out for"]
remove_patterns:
  following: ["free"]
chunk_prefix: ["no"]
require_sentences: true
`)
	writeConfig(t, dir, "custom.yaml", `
termset:
  pseudo: [""]
  preceding: ["not"]
  following: []
  termination: ["whatever"]
extension_name: negated
span_keys: [sc]
`)
	writeConfig(t, dir, "broken.yaml", "termset: [unclosed\n")
	writeConfig(t, dir, "empty.yaml", "entity_types: [X]\n")
	writeConfig(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	configs, err := LoadConfigurations(dir)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	clinical := configs[0]
	assert.Equal(t, "clinical", clinical.Name)
	assert.Equal(t, DefaultExtensionName, clinical.GetExtensionName())
	assert.True(t, clinical.RequireSentences)
	assert.Equal(t, []string{"PROBLEM"}, clinical.EntityTypes)

	ts, err := clinical.BuildTermSet()
	require.NoError(t, err)
	assert.Contains(t, ts.Phrases(termset.Preceding), "ruled out for")
	assert.NotContains(t, ts.Phrases(termset.Following), "free")

	custom := configs[1]
	assert.Equal(t, "negated", custom.GetExtensionName())
	assert.Equal(t, []string{"sc"}, custom.SpanKeys)
	ts, err = custom.BuildTermSet()
	require.NoError(t, err)
	assert.Equal(t, "custom", ts.Name())
	assert.Equal(t, []string{"not"}, ts.Phrases(termset.Preceding))

	_, err = LoadConfigurations(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestBuildTermSetErrors(t *testing.T) {
	cfg, err := ParseConfiguration("bad", []byte("termset: klingon\n"))
	require.NoError(t, err)
	_, err = cfg.BuildTermSet()
	assert.True(t, errors.Is(err, termset.ErrUnknownProfile))

	cfg, err = ParseConfiguration("bad", []byte("termset: en\nadd_patterns:\n  negations: [x]\n"))
	require.NoError(t, err)
	_, err = cfg.BuildTermSet()
	assert.True(t, errors.Is(err, termset.ErrUnknownCategory))

	_, err = ParseConfiguration("none", []byte("span_keys: [sc]\n"))
	assert.True(t, errors.Is(err, termset.ErrNoTermSet))
}

func TestTermSetDirConfiguration(t *testing.T) {
	dir := t.TempDir()
	listDir := filepath.Join(dir, "lists")
	require.NoError(t, os.Mkdir(listDir, 0o755))
	files := map[string]string{
		"pseudo.txt":      "no increase\n",
		"preceding.txt":   "no\ndenies\n",
		"following.txt":   "was ruled out\n",
		"termination.txt": "but\n",
	}
	for name, content := range files {
		require.NoError(t, ioutil.WriteFile(filepath.Join(listDir, name), []byte(content), 0o644))
	}
	configFile := "termset_dir: lists\nadd_patterns:\n  preceding: [without]\n"
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "local.yaml"), []byte(configFile), 0o644))

	configs, err := LoadConfigurations(dir)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "lists", configs[0].TermSetDir)
	assert.True(t, configs[0].TermSet.IsEmpty())

	ts, err := configs[0].BuildTermSet()
	require.NoError(t, err)
	assert.Equal(t, "lists", ts.Name())
	assert.Equal(t, []string{"no", "denies", "without"}, ts.Phrases(termset.Preceding))
	assert.Equal(t, []string{"was ruled out"}, ts.Phrases(termset.Following))

	_, err = ParseConfiguration("both", []byte("termset: en\ntermset_dir: lists\n"))
	assert.True(t, errors.Is(err, ErrTermSetConflict))

	cfg, err := ParseConfiguration("gone", []byte("termset_dir: "+filepath.Join(dir, "missing")+"\n"))
	require.NoError(t, err)
	_, err = cfg.BuildTermSet()
	assert.Error(t, err)
}
