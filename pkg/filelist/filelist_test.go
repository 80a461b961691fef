package filelist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree 快速铺一棵测试目录树
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestCollect_SortedRelativePaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"mix.exs":        "project",
		"lib/b.ex":       "b",
		"lib/a.ex":       "a",
		"README.md":      "readme",
		"lib/sub/c.ex":   "c",
		"priv/static.js": "js",
	})

	files, err := Collect(root)
	require.NoError(t, err)

	var got []string
	for _, f := range files {
		got = append(got, f.Name)
	}
	// 排好序的斜杠相对路径
	assert.Equal(t, []string{
		"README.md", "lib/a.ex", "lib/b.ex", "lib/sub/c.ex", "mix.exs", "priv/static.js",
	}, got)
}

func TestCollect_DefaultIgnores(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"mix.exs":           "project",
		".git/config":       "git stuff",
		"_build/out.beam":   "artifact",
		"deps/ecto/mix.exs": "dep",
		".env":              "SECRET=1",
		".DS_Store":         "junk",
	})

	files, err := Collect(root)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "mix.exs", files[0].Name)
}

func TestCollect_UserIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"mix.exs":    "project",
		"notes.txt":  "private notes",
		"lib/app.ex": "app",
		IgnoreFile:   "*.txt\n",
	})

	files, err := Collect(root)
	require.NoError(t, err)

	var got []string
	for _, f := range files {
		got = append(got, f.Name)
	}
	// notes.txt 被用户规则干掉，.hxpignore 自己也不进包
	assert.Equal(t, []string{"lib/app.ex", "mix.exs"}, got)
}

func TestCollect_ModePreserved(t *testing.T) {
	root := t.TempDir()
	script := filepath.Join(root, "run.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755))

	files, err := Collect(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(0o755), files[0].Mode)
	assert.Equal(t, script, files[0].Source)
}

func TestCollect_Symlink(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.txt": "content"})
	require.NoError(t, os.Symlink("real.txt", filepath.Join(root, "alias.txt")))

	files, err := Collect(root)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "alias.txt", files[0].Name)
	assert.Equal(t, "real.txt", files[0].Link)
	assert.Equal(t, "real.txt", files[1].Name)
}

func TestMatcher_Defaults(t *testing.T) {
	m, err := NewMatcher(t.TempDir())
	require.NoError(t, err)

	assert.True(t, m.Matches(".git/HEAD"))
	assert.True(t, m.Matches("output.tar"))
	assert.False(t, m.Matches("lib/app.ex"))
}
