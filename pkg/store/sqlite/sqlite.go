// Package sqlite implements the store contract over a single SQLite table.
// Batches commit as one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"git.sr.ht/~jakintosh/onlook/pkg/store"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite-backed store at dbPath.
// Pass ":memory:" for an in-memory instance.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store at '%s': %v", dbPath, err)
	}

	// the same in-memory database must be visible to every operation
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key    TEXT PRIMARY KEY,
			value  BLOB
		);`,
	)
	if err != nil {
		return fmt.Errorf("failed to init 'kv' table schema: %v", err)
	}
	return nil
}

func (s *Store) Get(
	ctx context.Context,
	key string,
) (
	[]byte,
	error,
) {
	row := s.db.QueryRowContext(ctx, `
		SELECT value
		FROM kv
		WHERE key=?;`,
		key,
	)

	var value []byte
	err := row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get '%s': %v", key, err)
	}
	return value, nil
}

func (s *Store) Put(
	ctx context.Context,
	key string,
	value []byte,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value=excluded.value;`,
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("sqlite put '%s': %v", key, err)
	}
	return nil
}

func (s *Store) Delete(
	ctx context.Context,
	key string,
) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM kv
		WHERE key=?;`,
		key,
	)
	if err != nil {
		return fmt.Errorf("sqlite delete '%s': %v", key, err)
	}
	return nil
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
	query := `
		SELECT key
		FROM kv
		WHERE key>=?
		ORDER BY key;`
	args := []any{start}
	if end != "" {
		query = `
			SELECT key
			FROM kv
			WHERE key>=? AND key<?
			ORDER BY key;`
		args = append(args, end)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite scan [%s, %s): %v", start, end, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("sqlite scan [%s, %s): %v", start, end, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite scan [%s, %s): %v", start, end, err)
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
	db  *sql.DB
	ops []op
}

func (b *batch) Put(key string, value []byte) {
	b.ops = append(b.ops, op{key: key, value: value})
}

func (b *batch) Delete(key string) {
	b.ops = append(b.ops, op{key: key, delete: true})
}

func (b *batch) Write(ctx context.Context) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite batch begin: %v", err)
	}

	for _, o := range b.ops {
		if o.delete {
			_, err = tx.ExecContext(ctx, `
				DELETE FROM kv
				WHERE key=?;`,
				o.key,
			)
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO kv (key, value)
				VALUES (?, ?)
				ON CONFLICT (key) DO UPDATE SET value=excluded.value;`,
				o.key,
				o.value,
			)
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite batch write '%s': %v", o.key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite batch commit: %v", err)
	}
	return nil
}
