package jsonstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_MissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "todos.json"))

	v, ok, err := s.Get("myList")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestGet_EmptyFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(p, nil, 0o644))

	_, ok, err := New(p).Get("myList")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSet_WritesReadableFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "todos.json")
	s := New(p)

	require.NoError(t, s.Set("myList", `[{"id":"1","text":"Buy milk","completed":false}]`))
	require.NoError(t, s.Set("other", "x"))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, `[{"id":"1","text":"Buy milk","completed":false}]`, m["myList"])
	assert.Equal(t, "x", m["other"])

	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestSet_Overwrites(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "todos.json"))
	require.NoError(t, s.Set("myList", "[]"))
	require.NoError(t, s.Set("myList", `[{"id":"1","text":"a","completed":true}]`))

	v, ok, err := s.Get("myList")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"1","text":"a","completed":true}]`, v)
}

func TestGet_CorruptFileIsAnError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o644))

	_, _, err := New(p).Get("myList")
	require.Error(t, err)
}

func TestClose_KeepsOtherHoldersLocked(t *testing.T) {
	p := filepath.Join(t.TempDir(), "todos.json")

	a := New(p)
	unlock, err := a.acquire()
	require.NoError(t, err)
	defer unlock()

	// A second store finishing its command must not break a's lock.
	b := New(p)
	require.NoError(t, b.Close())
	assert.FileExists(t, p+".lock")

	c := flock.New(p + ".lock")
	defer func() { _ = c.Close() }()
	locked, err := c.TryLock()
	require.NoError(t, err)
	assert.False(t, locked, "lock taken while another store holds it")
}

func TestClose_Twice(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "todos.json"))
	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
