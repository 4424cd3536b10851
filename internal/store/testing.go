package store

import (
	"path/filepath"
	"testing"
)

// NewTestStore creates a Store backed by a throwaway database file.
// This is only intended for use in tests.
func NewTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
