package clean

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile creates path with size bytes, creating parents as needed.
func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

// touch sets the mtime of path.
func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func usedSet(paths ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		m[p] = struct{}{}
	}
	return m
}

func candidatePaths(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Path
	}
	return out
}

// profileTree lays out <root>/debug/deps and returns both paths.
func profileTree(t *testing.T) (profileDir, depsDir string) {
	t.Helper()
	profileDir = filepath.Join(t.TempDir(), "debug")
	depsDir = filepath.Join(profileDir, "deps")
	require.NoError(t, os.MkdirAll(depsDir, 0o755))
	return profileDir, depsDir
}
