package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFileValue(t *testing.T) {
	path := writeTempFile(t, "prompt.txt", "Hello")
	a := &arg{long: "prompt", fileLoad: true, arity: ExactlyOne}

	got, err := resolveFileValue(a, "@"+path)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
}

func TestResolveFileValuePreservesWhitespace(t *testing.T) {
	path := writeTempFile(t, "prompt.txt", "line one\nline two\n")
	a := &arg{long: "prompt", fileLoad: true, arity: ExactlyOne}

	got, err := resolveFileValue(a, "@"+path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", got)
}

func TestResolveFileValuePassthrough(t *testing.T) {
	a := &arg{long: "prompt", fileLoad: true, arity: ExactlyOne}
	got, err := resolveFileValue(a, "plain text")
	require.NoError(t, err)
	assert.Equal(t, "plain text", got)
}

func TestResolveFileValueNotLoadable(t *testing.T) {
	// fields without the marker keep literal @ values
	a := &arg{long: "handle", arity: ExactlyOne}
	got, err := resolveFileValue(a, "@someuser")
	require.NoError(t, err)
	assert.Equal(t, "@someuser", got)
}

func TestResolveFileValueEmptyPath(t *testing.T) {
	a := &arg{long: "prompt", fileLoad: true, arity: ExactlyOne}
	_, err := resolveFileValue(a, "@")
	require.Error(t, err)
	var verr ValueError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "--prompt", verr.Field)
}

func TestResolveFileValueMissingFile(t *testing.T) {
	a := &arg{long: "prompt", fileLoad: true, arity: ExactlyOne}
	path := filepath.Join(t.TempDir(), "nope.txt")
	_, err := resolveFileValue(a, "@"+path)
	require.Error(t, err)
	var ferr FileError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, path, ferr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveFileValueBinaryContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o600))
	a := &arg{long: "prompt", fileLoad: true, arity: ExactlyOne}

	_, err := resolveFileValue(a, "@"+path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}
