package utils

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRuneByteSlices(t *testing.T) {
	runes, offsets := MakeRuneByteSlices("Señor, ок")
	assert.Equal(t, []rune("Señor, ок"), runes)
	assert.Equal(t, []int{0, 1, 2, 4, 5, 6, 7, 8, 10}, offsets)

	runes, offsets = MakeRuneByteSlices("")
	assert.Empty(t, runes)
	assert.Empty(t, offsets)
}

func TestHashStrings(t *testing.T) {
	assert.Equal(t, HashStrings("a", "b"), HashStrings("a", "b"))
	assert.NotEqual(t, HashStrings("ab"), HashStrings("a", "b"))
	assert.NotEqual(t, HashStrings("a", "b"), HashStrings("b", "a"))
	assert.NotEqual(t, HashStrings("no"), HashStrings("not"))
}

func TestReadList(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "preceding.txt")
	require.NoError(t, ioutil.WriteFile(filePath, []byte("# triggers\nno\n\n  denies  \nnegative for\n"), 0o644))

	list, err := ReadList(filePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"no", "denies", "negative for"}, list)

	_, err = ReadList(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

var errBoom = errors.New("boom")

func panicking(value interface{}) (err error) {
	defer RecoverWithError(&err)
	panic(value)
}

func TestRecoverWithError(t *testing.T) {
	err := panicking(errBoom)
	assert.True(t, errors.Is(err, errBoom))
	assert.EqualError(t, err, "got panic: boom")

	err = panicking("index out of range")
	assert.EqualError(t, err, "got panic: index out of range")
}
