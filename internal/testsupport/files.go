package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// Touch creates empty placeholder files, including parent directories.
// Existing files are truncated.
func Touch(t testing.TB, paths ...string) {
	t.Helper()
	for _, path := range paths {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", path, err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatalf("touch %s: %v", path, err)
		}
	}
}
