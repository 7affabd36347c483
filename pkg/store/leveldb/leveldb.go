// Package leveldb implements the store contract over goleveldb. It is the
// default backend: a single embedded database file tree on disk, or a
// purely in-memory instance for tests.
package leveldb

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	ldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"git.sr.ht/~jakintosh/onlook/pkg/store"
)

type Store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) a goleveldb database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb store at '%s': %v", path, err)
	}
	return &Store{db: db}, nil
}

// OpenMem opens a fresh in-memory store for tests.
func OpenMem() (*Store, error) {
	db, err := leveldb.Open(ldbstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory leveldb store: %v", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(
	ctx context.Context,
	key string,
) (
	[]byte,
	error,
) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb get '%s': %v", key, err)
	}
	return value, nil
}

func (s *Store) Put(
	ctx context.Context,
	key string,
	value []byte,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Put([]byte(key), value, nil); err != nil {
		return fmt.Errorf("leveldb put '%s': %v", key, err)
	}
	return nil
}

func (s *Store) Delete(
	ctx context.Context,
	key string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("leveldb delete '%s': %v", key, err)
	}
	return nil
}

func (s *Store) Batch() store.Batch {
	return &batch{db: s.db, b: new(leveldb.Batch)}
}

func (s *Store) ScanKeys(
	ctx context.Context,
	start string,
	end string,
) (
	[]string,
	error,
) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := &util.Range{Start: []byte(start)}
	if end != "" {
		rng.Limit = []byte(end)
	}

	var keys []string
	iter := s.db.NewIterator(rng, nil)
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("leveldb scan [%s, %s): %v", start, end, err)
	}
	return keys, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type batch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *batch) Put(key string, value []byte) {
	b.b.Put([]byte(key), value)
}

func (b *batch) Delete(key string) {
	b.b.Delete([]byte(key))
}

func (b *batch) Write(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.db.Write(b.b, nil); err != nil {
		return fmt.Errorf("leveldb batch write: %v", err)
	}
	return nil
}
