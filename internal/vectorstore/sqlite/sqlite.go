// Package sqlite provides a persistent local vector store backed by SQLite.
// Vectors are stored as little-endian float64 blobs and searched with a
// brute-force scan, which is plenty for a teaching-lab corpus.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"healthrag/internal/domain"
	"healthrag/internal/rank"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	id        TEXT PRIMARY KEY,
	source_id TEXT NOT NULL,
	page      INTEGER NOT NULL,
	idx       INTEGER NOT NULL,
	content   TEXT NOT NULL,
	vector    BLOB NOT NULL
);
`

// Storage is a SQLite-backed vector store.
type Storage struct {
	db        *sql.DB
	dimension int
}

// NewStorage opens (or creates) the vector database at path. An empty path
// defaults to ~/.config/healthrag/vectors.db.
func NewStorage(path string) (*Storage, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "healthrag", "vectors.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database connection.
func (s *Storage) Close() error { return s.db.Close() }

// Init records the vector dimensionality. A dimension change invalidates the
// stored vectors, so the table is cleared when it differs.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	var stored int
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'dimension'`).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("reading dimension: %w", err)
	case stored != dimension:
		if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return fmt.Errorf("clearing stale records: %w", err)
		}
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('dimension', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, dimension); err != nil {
		return fmt.Errorf("storing dimension: %w", err)
	}
	s.dimension = dimension
	return nil
}

// Upsert inserts or replaces records by ID inside a single transaction.
func (s *Storage) Upsert(ctx context.Context, records []domain.EmbeddingRecord) error {
	for _, r := range records {
		if len(r.Vector) != s.dimension {
			return fmt.Errorf("vector dimension mismatch for record %s", r.ID)
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (id, source_id, page, idx, content, vector)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			page      = excluded.page,
			idx       = excluded.idx,
			content   = excluded.content,
			vector    = excluded.vector`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.SourceID, r.Page, r.Index, r.Text, encodeVector(r.Vector)); err != nil {
			return fmt.Errorf("upserting record %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Search scans all stored records and ranks them against the query vector.
func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source_id, page, idx, content, vector FROM records`)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	defer rows.Close()

	var records []domain.EmbeddingRecord
	for rows.Next() {
		var r domain.EmbeddingRecord
		var blob []byte
		if err := rows.Scan(&r.ID, &r.SourceID, &r.Page, &r.Index, &r.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Vector = decodeVector(blob)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rank.TopK(records, vector, topK)
}

// Clear removes every stored record.
func (s *Storage) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records`)
	return err
}

func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float64 {
	v := make([]float64, len(buf)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return v
}
