package sqlite_test

import (
	"path/filepath"
	"testing"

	"git.sr.ht/~jakintosh/onlook/pkg/store"
	"git.sr.ht/~jakintosh/onlook/pkg/store/sqlite"
	"git.sr.ht/~jakintosh/onlook/pkg/store/storetest"
)

func TestStore_Conformance(t *testing.T) {
	t.Parallel()
	storetest.Run(t, func(t *testing.T) store.Store {
		t.Helper()
		s, err := sqlite.Open(":memory:")
		if err != nil {
			t.Fatalf("failed to open sqlite store: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestStore_ConformanceOnDisk(t *testing.T) {
	t.Parallel()
	storetest.Run(t, func(t *testing.T) store.Store {
		t.Helper()
		s, err := sqlite.Open(filepath.Join(t.TempDir(), "kv.db"))
		if err != nil {
			t.Fatalf("failed to open sqlite store: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
