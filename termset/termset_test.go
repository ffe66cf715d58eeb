package termset

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func counts(ts *TermSet) map[Category]int {
	result := make(map[Category]int)
	for category, phrases := range ts.Patterns() {
		result[category] = len(phrases)
	}
	return result
}

func TestProfiles(t *testing.T) {
	expected := map[string]map[Category]int{
		ProfileEnglish:                  {Pseudo: 16, Preceding: 35, Following: 8, Termination: 13},
		ProfileEnglishClinical:          {Pseudo: 24, Preceding: 62, Following: 11, Termination: 34},
		ProfileEnglishClinicalSensitive: {Pseudo: 24, Preceding: 81, Following: 11, Termination: 34},
	}
	for _, name := range Profiles() {
		ts, err := FromProfile(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected[name], counts(ts), name)
		assert.Len(t, ts.Patterns(), 4)
	}

	_, err := FromProfile("klingon")
	assert.True(t, errors.Is(err, ErrUnknownProfile))
}

func TestProfilesAreIndependent(t *testing.T) {
	first, err := FromProfile(ProfileEnglishClinical)
	require.NoError(t, err)
	require.NoError(t, first.Remove(Patterns{Following: {"free"}}))

	second, err := FromProfile(ProfileEnglishClinical)
	require.NoError(t, err)
	assert.Contains(t, second.Phrases(Following), "free")
	assert.NotContains(t, first.Phrases(Following), "free")

	patterns := second.Patterns()
	patterns[Following][0] = "changed"
	assert.Equal(t, "declined", second.Phrases(Following)[0])
}

func TestNewValidatesKeys(t *testing.T) {
	valid := map[string][]string{
		"pseudo":      {""},
		"preceding":   {"not"},
		"following":   {},
		"termination": {"whatever"},
	}
	ts, err := New("custom", valid)
	require.NoError(t, err)
	assert.Equal(t, []string{"not"}, ts.Phrases(Preceding))

	cases := map[string]map[string][]string{
		"missing category": {"pseudo": {}, "preceding": {}, "following": {}},
		"extra category": {
			"pseudo": {}, "preceding": {}, "following": {}, "termination": {}, "chunk": {},
		},
		"long names": {
			"pseudo_negations": {}, "preceding_negations": {}, "following_negations": {}, "termination": {},
		},
		"empty": {},
	}
	for name, patterns := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New("bad", patterns)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnexpectedKeys))
		})
	}
}

func TestAddRemovePatterns(t *testing.T) {
	ts, err := FromProfile(ProfileEnglishClinical)
	require.NoError(t, err)
	before := counts(ts)

	err = ts.AddPatterns(map[string]interface{}{
		"pseudo":      []interface{}{"my favorite pattern"},
		"termination": []interface{}{"these are", "great patterns", "but"},
		"preceding":   []string{"wow a negation"},
		"following":   []interface{}{"extra negation"},
	})
	require.NoError(t, err)
	after := counts(ts)
	assert.Equal(t, before[Pseudo]+1, after[Pseudo])
	assert.Equal(t, before[Termination]+2, after[Termination])
	assert.Equal(t, before[Preceding]+1, after[Preceding])
	assert.Equal(t, before[Following]+1, after[Following])

	err = ts.RemovePatterns(map[string]interface{}{
		"termination": []interface{}{"these are", "great patterns"},
		"pseudo":      []interface{}{"my favorite pattern"},
		"preceding":   []interface{}{"denied", "wow a negation"},
		"following":   []interface{}{"unlikely", "extra negation"},
	})
	require.NoError(t, err)
	after = counts(ts)
	assert.Equal(t, before[Termination], after[Termination])
	assert.Equal(t, before[Pseudo], after[Pseudo])
	assert.Equal(t, before[Preceding]-1, after[Preceding])
	assert.Equal(t, before[Following]-1, after[Following])
}

func TestAddRemoveRoundTrip(t *testing.T) {
	ts, err := FromProfile(ProfileEnglishClinical)
	require.NoError(t, err)
	before := counts(ts)
	version := ts.Version()

	added := Patterns{
		Pseudo:      {"not at all certain"},
		Preceding:   {"absent", "negative"},
		Following:   {"was excluded"},
		Termination: {"whereas"},
	}
	require.NoError(t, ts.Add(added))
	assert.NotEqual(t, version, ts.Version())
	require.NoError(t, ts.Remove(added))

	assert.Equal(t, before, counts(ts))
	assert.Equal(t, version, ts.Version())
}

func TestRemoveAbsentPhraseIsNoop(t *testing.T) {
	ts, err := FromProfile(ProfileEnglish)
	require.NoError(t, err)
	before := ts.Patterns()

	require.NoError(t, ts.RemovePatterns(map[string]interface{}{
		"preceding": []interface{}{"definitely not a phrase"},
	}))
	require.NoError(t, ts.RemovePatterns(map[string]interface{}{
		"preceding": []interface{}{"definitely not a phrase"},
	}))
	assert.Equal(t, before, ts.Patterns())
}

func TestAddPatternsValidation(t *testing.T) {
	ts, err := FromProfile(ProfileEnglish)
	require.NoError(t, err)
	before := ts.Patterns()

	t.Run("unknown category leaves termset untouched", func(t *testing.T) {
		err := ts.AddPatterns(map[string]interface{}{
			"preceding":  []interface{}{"new phrase"},
			"negations":  []interface{}{"x"},
			"following":  []interface{}{"other phrase"},
			"terminator": []interface{}{"y"},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownCategory))
		assert.Equal(t, before, ts.Patterns())
	})

	t.Run("non sequence value", func(t *testing.T) {
		for _, value := range []interface{}{"not a list", 42, nil, []interface{}{"ok", 3}} {
			err := ts.AddPatterns(map[string]interface{}{
				"preceding": []interface{}{"new phrase"},
				"following": value,
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotSequence), "%v", value)
		}
		assert.Equal(t, before, ts.Patterns())
	})

	t.Run("remove validates too", func(t *testing.T) {
		err := ts.RemovePatterns(map[string]interface{}{"pseudo_negations": []interface{}{"no further"}})
		assert.True(t, errors.Is(err, ErrUnknownCategory))
		err = ts.RemovePatterns(map[string]interface{}{"pseudo": "no further"})
		assert.True(t, errors.Is(err, ErrNotSequence))
		assert.Equal(t, before, ts.Patterns())
	})
}

func TestAddKeepsOrder(t *testing.T) {
	ts, err := New("ordered", map[string][]string{
		"pseudo": {}, "preceding": {"b", "a"}, "following": {}, "termination": {},
	})
	require.NoError(t, err)
	require.NoError(t, ts.Add(Patterns{Preceding: {"c", "a", "d", "c"}}))
	assert.Equal(t, []string{"b", "a", "c", "d"}, ts.Phrases(Preceding))
}

func TestSourceYAML(t *testing.T) {
	var cfg struct {
		TermSet Source `yaml:"termset"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("termset: en_clinical\n"), &cfg))
	ts, err := cfg.TermSet.Build("cfg")
	require.NoError(t, err)
	assert.Equal(t, ProfileEnglishClinical, ts.Name())

	doc := `
termset:
  pseudo: [""]
  preceding: ["not"]
  following: []
  termination: ["whatever"]
`
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))
	ts, err = cfg.TermSet.Build("cfg")
	require.NoError(t, err)
	assert.Equal(t, []string{"whatever"}, ts.Phrases(Termination))

	bad := `
termset:
  pseudo: []
  preceding: not-a-list
  following: []
  termination: []
`
	err = yaml.Unmarshal([]byte(bad), &cfg)
	assert.True(t, errors.Is(err, ErrNotSequence))

	missing := "termset:\n  pseudo: []\n  preceding: []\n"
	require.NoError(t, yaml.Unmarshal([]byte(missing), &cfg))
	_, err = cfg.TermSet.Build("cfg")
	assert.True(t, errors.Is(err, ErrUnexpectedKeys))

	_, err = Source{}.Build("cfg")
	assert.True(t, errors.Is(err, ErrNoTermSet))
}

func TestLoadAndMarshal(t *testing.T) {
	dir, err := ioutil.TempDir("", "termset")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	ts, err := FromProfile(ProfileEnglish)
	require.NoError(t, err)
	buf, err := Marshal(ts)
	require.NoError(t, err)

	filePath := filepath.Join(dir, "english.yaml")
	require.NoError(t, ioutil.WriteFile(filePath, buf, 0o644))

	loaded, err := Load(filePath)
	require.NoError(t, err)
	assert.Equal(t, "english", loaded.Name())
	assert.Equal(t, ts.Patterns(), loaded.Patterns())
	assert.Equal(t, ts.Version(), loaded.Version())

	require.NoError(t, ioutil.WriteFile(filePath, []byte("en\n"), 0o644))
	_, err = Load(filePath)
	assert.True(t, errors.Is(err, ErrUnexpectedKeys))
}

func TestLoadDir(t *testing.T) {
	dir, err := ioutil.TempDir("", "termset-dir")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	files := map[string]string{
		"pseudo.txt":      "# pseudo negations\nno further\n",
		"preceding.txt":   "no\ndenies\n\n",
		"following.txt":   "",
		"termination.txt": "but\n",
	}
	for name, content := range files {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	ts, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"no further"}, ts.Phrases(Pseudo))
	assert.Equal(t, []string{"no", "denies"}, ts.Phrases(Preceding))
	assert.Empty(t, ts.Phrases(Following))

	require.NoError(t, os.Remove(filepath.Join(dir, "termination.txt")))
	_, err = LoadDir(dir)
	assert.Error(t, err)
}
