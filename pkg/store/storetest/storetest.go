// Package storetest provides the conformance suite every store backend
// must pass. Backend test files call Run with a factory that opens a
// fresh, empty store.
package storetest

import (
	"context"
	"errors"
	"slices"
	"testing"

	"git.sr.ht/~jakintosh/onlook/pkg/store"
)

// Factory opens a fresh, empty store. Cleanup is registered by the
// factory itself (t.Cleanup).
type Factory func(t *testing.T) store.Store

// Run exercises the full store contract against the backend under test.
func Run(t *testing.T, open Factory) {
	t.Helper()

	t.Run("GetMissingKey", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		_, err := s.Get(ctx, "missing")
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		if err := s.Put(ctx, "k", []byte("v")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		value, err := s.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(value) != "v" {
			t.Errorf("expected 'v', got '%s'", value)
		}
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		if err := s.Put(ctx, "k", []byte("first")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := s.Put(ctx, "k", []byte("second")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		value, err := s.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(value) != "second" {
			t.Errorf("expected 'second', got '%s'", value)
		}
	})

	t.Run("DeleteRemovesKey", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		if err := s.Put(ctx, "k", []byte("v")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := s.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		_, err := s.Get(ctx, "k")
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("DeleteMissingKeySucceeds", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		if err := s.Delete(ctx, "missing"); err != nil {
			t.Fatalf("Delete of missing key failed: %v", err)
		}
	})

	t.Run("BatchCommitsAllOps", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		if err := s.Put(ctx, "doomed", []byte("v")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		b := s.Batch()
		b.Put("a", []byte("1"))
		b.Put("b", []byte("2"))
		b.Delete("doomed")
		if err := b.Write(ctx); err != nil {
			t.Fatalf("batch Write failed: %v", err)
		}

		for _, key := range []string{"a", "b"} {
			if _, err := s.Get(ctx, key); err != nil {
				t.Errorf("expected '%s' after batch, got %v", key, err)
			}
		}
		_, err := s.Get(ctx, "doomed")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected 'doomed' deleted by batch, got %v", err)
		}
	})

	t.Run("BatchNotVisibleBeforeWrite", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		b := s.Batch()
		b.Put("pending", []byte("v"))

		_, err := s.Get(ctx, "pending")
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound before Write, got %v", err)
		}

		if err := b.Write(ctx); err != nil {
			t.Fatalf("batch Write failed: %v", err)
		}
		if _, err := s.Get(ctx, "pending"); err != nil {
			t.Fatalf("expected 'pending' after Write, got %v", err)
		}
	})

	t.Run("ScanKeysOrdered", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		// insert out of order
		for _, key := range []string{"c", "a", "d", "b"} {
			if err := s.Put(ctx, key, []byte("v")); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
		}

		keys, err := s.ScanKeys(ctx, "a", "")
		if err != nil {
			t.Fatalf("ScanKeys failed: %v", err)
		}
		if !slices.Equal(keys, []string{"a", "b", "c", "d"}) {
			t.Errorf("expected lexicographic order, got %v", keys)
		}
	})

	t.Run("ScanKeysHalfOpen", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		for _, key := range []string{"a", "b", "c", "d"} {
			if err := s.Put(ctx, key, []byte("v")); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
		}

		// start inclusive, end exclusive
		keys, err := s.ScanKeys(ctx, "b", "d")
		if err != nil {
			t.Fatalf("ScanKeys failed: %v", err)
		}
		if !slices.Equal(keys, []string{"b", "c"}) {
			t.Errorf("expected [b c], got %v", keys)
		}
	})

	t.Run("ScanKeysPrefixRange", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		for _, key := range []string{"x/1", "x/2", "x0", "y/1"} {
			if err := s.Put(ctx, key, []byte("v")); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
		}

		start, end := store.PrefixRange("x/")
		keys, err := s.ScanKeys(ctx, start, end)
		if err != nil {
			t.Fatalf("ScanKeys failed: %v", err)
		}
		if !slices.Equal(keys, []string{"x/1", "x/2"}) {
			t.Errorf("expected exactly the x/ keys, got %v", keys)
		}
	})

	t.Run("ScanKeysEmptyRange", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		keys, err := s.ScanKeys(ctx, "a", "b")
		if err != nil {
			t.Fatalf("ScanKeys failed: %v", err)
		}
		if len(keys) != 0 {
			t.Errorf("expected no keys in empty store, got %v", keys)
		}
	})
}
