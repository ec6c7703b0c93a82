package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/memstore"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

type result struct {
	code           int
	stdout, stderr string
}

// isolate keeps config discovery away from the developer's own files.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	return dir
}

func run(t *testing.T, data string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--data", data, "--color", "never", "--theme", "mono"}, args...)
	code := Execute(full, &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func storedItems(t *testing.T, path string) []model.Item {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var file map[string]string
	require.NoError(t, json.Unmarshal(b, &file))
	var items []model.Item
	require.NoError(t, json.Unmarshal([]byte(file["myList"]), &items))
	return items
}

func TestAddAndList(t *testing.T) {
	data := filepath.Join(isolate(t), "todos.json")

	res := run(t, data, "add", "Buy", "milk")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Buy milk")
	assert.Contains(t, res.stdout, "added")

	res = run(t, data, "add", "Walk dog")
	require.Equal(t, ExitOK, res.code, res.stderr)

	want := []model.Item{{ID: "1", Text: "Buy milk"}, {ID: "2", Text: "Walk dog"}}
	if diff := cmp.Diff(want, storedItems(t, data)); diff != "" {
		t.Fatalf("stored items mismatch (-want +got):\n%s", diff)
	}

	res = run(t, data, "ls")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Less(t, strings.Index(res.stdout, "Walk dog"), strings.Index(res.stdout, "Buy milk"), "newest first")
	assert.Contains(t, res.stdout, "0/2")
}

func TestList_OldestFirst(t *testing.T) {
	data := filepath.Join(isolate(t), "todos.json")
	require.Equal(t, ExitOK, run(t, data, "add", "a-first").code)
	require.Equal(t, ExitOK, run(t, data, "add", "b-second").code)

	res := run(t, data, "--order", "oldest-first", "ls")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Less(t, strings.Index(res.stdout, "a-first"), strings.Index(res.stdout, "b-second"))
}

func TestList_Group(t *testing.T) {
	data := filepath.Join(isolate(t), "todos.json")
	require.Equal(t, ExitOK, run(t, data, "add", "a").code)
	require.Equal(t, ExitOK, run(t, data, "done", "1").code)

	res := run(t, data, "ls", "--group")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Pending")
	assert.Contains(t, res.stdout, "(none)")
	assert.Contains(t, res.stdout, "[x] a")
}

func TestAdd_BlankIsUsageError(t *testing.T) {
	data := filepath.Join(isolate(t), "todos.json")

	res := run(t, data, "add", "   ")
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "empty text")
	assert.NoFileExists(t, data)

	assert.Equal(t, ExitUsage, run(t, data, "add").code)
}

func TestDoneRemoveClear(t *testing.T) {
	data := filepath.Join(isolate(t), "todos.json")
	require.Equal(t, ExitOK, run(t, data, "add", "a").code)
	require.Equal(t, ExitOK, run(t, data, "add", "b").code)

	res := run(t, data, "done", "1")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "1/2")
	assert.True(t, storedItems(t, data)[0].Completed)

	require.Equal(t, ExitOK, run(t, data, "rm", "1").code)
	assert.Equal(t, []model.Item{{ID: "2", Text: "b"}}, storedItems(t, data))

	// Unknown ids are a no-op.
	require.Equal(t, ExitOK, run(t, data, "rm", "42").code)
	require.Equal(t, ExitOK, run(t, data, "done", "42").code)
	assert.Len(t, storedItems(t, data), 1)

	res = run(t, data, "clear")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "no items")
	assert.Empty(t, storedItems(t, data))
}

func TestNextIDContinuesAfterRestart(t *testing.T) {
	data := filepath.Join(isolate(t), "todos.json")
	require.Equal(t, ExitOK, run(t, data, "add", "a").code)
	require.Equal(t, ExitOK, run(t, data, "add", "b").code)
	require.Equal(t, ExitOK, run(t, data, "rm", "1").code)
	require.Equal(t, ExitOK, run(t, data, "add", "c").code)

	items := storedItems(t, data)
	require.Len(t, items, 2)
	assert.Equal(t, "3", items[1].ID)
}

func TestExport(t *testing.T) {
	data := filepath.Join(isolate(t), "todos.json")
	require.Equal(t, ExitOK, run(t, data, "add", "Buy milk").code)
	require.Equal(t, ExitOK, run(t, data, "done", "1").code)
	want := []model.Item{{ID: "1", Text: "Buy milk", Completed: true}}

	t.Run("json", func(t *testing.T) {
		res := run(t, data, "export")
		require.Equal(t, ExitOK, res.code, res.stderr)
		var got []model.Item
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
		assert.Equal(t, want, got)
	})

	t.Run("yaml", func(t *testing.T) {
		res := run(t, data, "export", "--format", "yaml")
		require.Equal(t, ExitOK, res.code, res.stderr)
		assert.Contains(t, res.stdout, "text: Buy milk")
		var got []model.Item
		require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &got))
		assert.Equal(t, want, got)
	})

	t.Run("empty list", func(t *testing.T) {
		res := run(t, filepath.Join(t.TempDir(), "none.json"), "export")
		require.Equal(t, ExitOK, res.code, res.stderr)
		assert.Equal(t, "[]\n", res.stdout)
	})

	t.Run("unknown format", func(t *testing.T) {
		res := run(t, data, "export", "--format", "csv")
		assert.Equal(t, ExitUsage, res.code)
		assert.Contains(t, res.stderr, "csv")
	})
}

func TestSQLiteBackend(t *testing.T) {
	data := filepath.Join(isolate(t), "todos.sqlite")

	require.Equal(t, ExitOK, run(t, data, "--backend", "sqlite", "add", "persist me").code)
	res := run(t, data, "--backend", "sqlite", "ls")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "persist me")
}

func TestCustomKey(t *testing.T) {
	data := filepath.Join(isolate(t), "todos.json")
	require.Equal(t, ExitOK, run(t, data, "--key", "work", "add", "ship it").code)

	res := run(t, data, "ls")
	require.Equal(t, ExitOK, res.code)
	assert.NotContains(t, res.stdout, "ship it")

	res = run(t, data, "--key", "work", "ls")
	assert.Contains(t, res.stdout, "ship it")
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := isolate(t)
	data := filepath.Join(dir, "from-config.json")
	cfg := filepath.Join(dir, "tada.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("storage:\n  path: "+data+"\n"), 0o644))

	var out, errOut bytes.Buffer
	code := Execute([]string{"--color", "never", "add", "via config"}, &out, &errOut)
	require.Equal(t, ExitOK, code, errOut.String())
	assert.FileExists(t, data)

	t.Setenv("TADA_STORAGE_BACKEND", "memory")
	out.Reset()
	code = Execute([]string{"--color", "never", "ls"}, &out, &errOut)
	require.Equal(t, ExitOK, code, errOut.String())
	assert.NotContains(t, out.String(), "via config", "memory backend starts empty")
}

func TestUsageErrors(t *testing.T) {
	data := filepath.Join(isolate(t), "todos.json")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown command", []string{"frobnicate"}, "unknown command"},
		{"unknown flag", []string{"ls", "--nope"}, "unknown flag"},
		{"missing id", []string{"done"}, "accepts 1 arg"},
		{"extra id", []string{"rm", "1", "2"}, "accepts 1 arg"},
		{"bad backend", []string{"--backend", "postgres", "ls"}, "postgres"},
		{"bad order", []string{"--order", "random", "ls"}, "random"},
		{"missing config", []string{"--config", "nowhere.yaml", "ls"}, "nowhere.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, data, tt.args...)
			assert.Equal(t, ExitUsage, res.code)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
}

func TestStorageFailureExitsOne(t *testing.T) {
	dir := isolate(t)
	// A directory where the data file should be cannot be read.
	data := filepath.Join(dir, "todos.json")
	require.NoError(t, os.Mkdir(data, 0o755))

	res := run(t, data, "ls")
	assert.Equal(t, ExitError, res.code)
	assert.NotEmpty(t, res.stderr)
}

func TestPanelView(t *testing.T) {
	ui.SetTheme("mono")
	ui.SetColorMode("never")

	b := memstore.New()
	require.NoError(t, b.Set("myList", `[{"id":"1","text":"a","completed":true},{"id":"2","text":"b\u001b[2J","completed":false}]`))
	s := store.New(b)
	require.NoError(t, s.Restore())

	var buf bytes.Buffer
	v := NewPanelView(&buf, tui.NewestFirst, false)
	v.Render(s)
	out := buf.String()
	assert.Contains(t, out, "#")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "[x] a")
	assert.Contains(t, out, "[ ] b")
	assert.NotContains(t, out, "\x1b")
	assert.Less(t, strings.Index(out, "[ ] b"), strings.Index(out, "[x] a"))

	buf.Reset()
	v.Clear()
	assert.Contains(t, buf.String(), "no items")
	assert.Contains(t, buf.String(), "0/0")
}

func TestRootCmd_Help(t *testing.T) {
	isolate(t)
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})

	require.NoError(t, root.Execute())
	for _, sub := range []string{"add", "ls", "done", "rm", "clear", "export"} {
		assert.Contains(t, out.String(), sub)
	}
	assert.Contains(t, out.String(), "--backend")
}
