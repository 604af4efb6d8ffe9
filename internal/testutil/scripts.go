package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteScript writes content to name inside a fresh temp dir and returns the
// file path.
func WriteScript(t *testing.T, name, content string) string {
	t.Helper()
	return WriteScripts(t, map[string]string{name: content})[name]
}

// WriteScripts writes each name/content pair into one fresh temp dir. The
// returned map holds the full path of every file; the directory itself is
// under the key "".
func WriteScripts(t *testing.T, files map[string]string) map[string]string {
	t.Helper()
	dir := t.TempDir()
	paths := map[string]string{"": dir}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths[name] = path
	}
	return paths
}
