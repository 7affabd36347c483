// Package bolt implements the store contract over bbolt, keeping every
// entry in a single bucket so key order matches the flat namespace the
// contract promises.
package bolt

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"git.sr.ht/~jakintosh/onlook/pkg/store"
)

const kvBucket = "kv"

type Store struct {
	db *bbolt.DB
}

// Open opens a bbolt-backed store at the provided path. The open is
// timeout-guarded so a second process holding the file lock fails fast
// instead of blocking forever.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store at '%s': %v", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(kvBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create kv bucket: %v", err)
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

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(kvBucket)).Get([]byte(key))
		if v == nil {
			return fmt.Errorf("%w: %s", store.ErrNotFound, key)
		}
		// v is only valid inside the transaction
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
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
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(kvBucket)).Put([]byte(key), value)
	})
}

func (s *Store) Delete(
	ctx context.Context,
	key string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(kvBucket)).Delete([]byte(key))
	})
}

func (s *Store) Batch() store.Batch {
	return &batch{db: s.db}
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

	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(kvBucket)).Cursor()
		for k, _ := c.Seek([]byte(start)); k != nil; k, _ = c.Next() {
			if end != "" && string(k) >= end {
				break
			}
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt scan [%s, %s): %v", start, end, err)
	}
	return keys, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type op struct {
	key    string
	value  []byte
	delete bool
}

type batch struct {
	db  *bbolt.DB
	ops []op
}

func (b *batch) Put(key string, value []byte) {
	b.ops = append(b.ops, op{key: key, value: value})
}

func (b *batch) Delete(key string) {
	b.ops = append(b.ops, op{key: key, delete: true})
}

func (b *batch) Write(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(kvBucket))
		for _, o := range b.ops {
			if o.delete {
				if err := bucket.Delete([]byte(o.key)); err != nil {
					return err
				}
				continue
			}
			if err := bucket.Put([]byte(o.key), o.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bolt batch write: %v", err)
	}
	return nil
}
