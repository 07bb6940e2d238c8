// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: sqlite.go — SQLite output sink for the drain worker
//
// Purpose:
//   - SQLite batches flattened 64-byte records into a local sqlite3 database
//     instead of a flat file, for callers who want the profile queryable
//     in place rather than post-processed from a raw stream.
//
// Notes:
//   - Grounded on main.go's openDatabase/loadPoolsFromDatabase: sql.Open
//     with the "sqlite3" driver registered by the blank go-sqlite3 import,
//     panicking on open failure there because it runs once at startup
//     before there's anything sensible to fall back to; here the
//     equivalent failure is returned to the caller instead, which decides
//     how to handle it (cmd/profilerdemo reports it and exits).
//   - A transaction batches up to batchSize records, committed when the
//     batch fills and on Close, so a busy drain period doesn't pay a fsync
//     per 64-byte row.
// ─────────────────────────────────────────────────────────────────────────────

package sink

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a drain.Worker output that appends flattened records as rows
// in a local sqlite3 database rather than a flat byte stream.
type SQLite struct {
	db      *sql.DB
	tx      *sql.Tx
	stmt    *sql.Stmt
	batch   int
	pending int
}

// NewSQLite opens (creating if necessary) the sqlite3 database at dsn,
// creates the records table if absent, and returns a SQLite sink that
// batches up to batchSize rows per transaction before committing.
func NewSQLite(dsn string, batchSize int) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sink: opening %s: %w", dsn, err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: creating table: %w", err)
	}
	if batchSize < 1 {
		batchSize = 1
	}
	s := &SQLite{db: db, batch: batchSize}
	if err := s.beginBatch(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS profile_records (
	id        INTEGER NOT NULL,
	parent_id INTEGER NOT NULL,
	processor INTEGER NOT NULL,
	thread    INTEGER NOT NULL,
	start_ns  INTEGER NOT NULL,
	end_ns    INTEGER NOT NULL,
	name      TEXT NOT NULL,
	raw       BLOB NOT NULL
)`

const insertSQL = `INSERT INTO profile_records (id, parent_id, processor, thread, start_ns, end_ns, name, raw) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (s *SQLite) beginBatch() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sink: beginning batch: %w", err)
	}
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sink: preparing insert: %w", err)
	}
	s.tx, s.stmt, s.pending = tx, stmt, 0
	return nil
}

// Write decodes one or more concatenated 64-byte records from p and inserts
// each as a row, committing the batch transaction once batchSize rows have
// accumulated. p's length must be a multiple of 64; the drain worker always
// calls with exactly one record's image.
func (s *SQLite) Write(p []byte) (int, error) {
	for off := 0; off+64 <= len(p); off += 64 {
		rec := p[off : off+64]
		id := le32(rec[0:4])
		parentID := le32(rec[4:8])
		processor := le32u(rec[8:12])
		thread := le32u(rec[12:16])
		start := le64(rec[16:24])
		end := le64(rec[24:32])
		name := cString(rec[32:58])

		if _, err := s.stmt.Exec(id, parentID, processor, thread, start, end, name, rec); err != nil {
			return off, fmt.Errorf("sink: inserting record: %w", err)
		}
		s.pending++
		if s.pending >= s.batch {
			if err := s.commitAndRebegin(); err != nil {
				return off + 64, err
			}
		}
	}
	return len(p), nil
}

func (s *SQLite) commitAndRebegin() error {
	s.stmt.Close()
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("sink: committing batch: %w", err)
	}
	return s.beginBatch()
}

// Close commits any pending batch and closes the underlying database.
func (s *SQLite) Close() error {
	if s.pending > 0 {
		if err := s.commitAndRebegin(); err != nil {
			s.db.Close()
			return err
		}
	}
	s.stmt.Close()
	s.tx.Rollback() // empty transaction opened by the final beginBatch
	return s.db.Close()
}

func le32(b []byte) int32 {
	return int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

func le32u(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func le64(b []byte) int64 {
	u := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	return int64(u)
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
