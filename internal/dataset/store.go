package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store caches downloaded corpora in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates a SQLite cache at the given path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns the cached splits of a dataset. The boolean is false when
// nothing is cached under that name.
func (s *Store) Load(ctx context.Context, name string) (DatasetDict, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, fmt.Errorf("store is nil")
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT split, fields FROM records WHERE dataset = ? ORDER BY split, idx", name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	dict := make(DatasetDict)
	found := false
	for rows.Next() {
		var split string
		var blob []byte
		if err := rows.Scan(&split, &blob); err != nil {
			return nil, false, fmt.Errorf("failed to scan record: %w", err)
		}
		var r Record
		if err := json.Unmarshal(blob, &r); err != nil {
			return nil, false, fmt.Errorf("failed to decode cached record: %w", err)
		}
		dict[split] = append(dict[split], r)
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read rows: %w", err)
	}
	return dict, found, nil
}

// Save replaces the cached splits of a dataset.
func (s *Store) Save(ctx context.Context, name string, dict DatasetDict) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE dataset = ?", name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records(dataset,split,idx,fields) VALUES(?,?,?,?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for split, records := range dict {
		for i, r := range records {
			blob, err := json.Marshal(r)
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to encode record: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, name, split, i, blob); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS records (
	dataset TEXT NOT NULL,
	split TEXT NOT NULL,
	idx INTEGER NOT NULL,
	fields BLOB NOT NULL,
	PRIMARY KEY (dataset, split, idx)
);
`); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

// CachedSource serves datasets from a Store and falls back to the wrapped
// Source on a miss, caching what it downloads.
type CachedSource struct {
	Source  Source
	Store   *Store
	Refresh bool
}

// Load implements Source.
func (c *CachedSource) Load(ctx context.Context, name string) (DatasetDict, error) {
	if !c.Refresh {
		dict, ok, err := c.Store.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			return dict, nil
		}
	}

	dict, err := c.Source.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := c.Store.Save(ctx, name, dict); err != nil {
		return nil, err
	}
	return dict, nil
}
