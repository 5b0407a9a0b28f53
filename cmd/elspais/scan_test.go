package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldSkipDir(t *testing.T) {
	require.True(t, shouldSkipDir(".git"))
	require.True(t, shouldSkipDir("node_modules"))
	require.True(t, shouldSkipDir("vendor"))
	require.True(t, shouldSkipDir(".hidden"))
	require.False(t, shouldSkipDir("."))
	require.False(t, shouldSkipDir("docs"))
	require.False(t, shouldSkipDir("internal"))
}

func TestWalkFiles_SkipsVendorAndHiddenDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor", "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "spec.md"), []byte("spec"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "pkg", "lib.go"), []byte("lib"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref"), 0o644))

	files, err := walkFiles(root)
	require.NoError(t, err)
	require.Contains(t, files, filepath.Join("docs", "spec.md"))
	for _, f := range files {
		require.NotContains(t, f, "vendor")
		require.NotContains(t, f, ".git")
	}
}
