package sink

import (
	"testing"

	"profiler/block"
)

func TestSQLite_WriteInsertsAndCommitsOnBatch(t *testing.T) {
	s, err := NewSQLite(":memory:", 2)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer s.Close()

	var b block.Block
	b.ID = 42
	b.SetName("alpha")
	rec := block.AppendRecord(nil, &b)

	if _, err := s.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if s.pending != 1 {
		t.Errorf("pending = %d, want 1 (batch of 2 not yet committed)", s.pending)
	}

	if _, err := s.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if s.pending != 0 {
		t.Errorf("pending = %d, want 0 (batch of 2 should have committed)", s.pending)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM profile_records").Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 2 {
		t.Errorf("row count = %d, want 2", count)
	}

	var name string
	if err := s.db.QueryRow("SELECT name FROM profile_records LIMIT 1").Scan(&name); err != nil {
		t.Fatalf("name query: %v", err)
	}
	if name != "alpha" {
		t.Errorf("name = %q, want %q", name, "alpha")
	}
}

func TestSQLite_CloseCommitsPartialBatch(t *testing.T) {
	s, err := NewSQLite(":memory:", 100)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}

	var b block.Block
	b.ID = 7
	b.SetName("pending")
	rec := block.AppendRecord(nil, &b)
	if _, err := s.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Close's commitAndRebegin runs before the underlying db is closed, so
	// assert the commit happened by driving it directly and querying while
	// the connection is still open - querying after Close would just
	// reopen a fresh, empty in-memory database under the same dsn.
	if err := s.commitAndRebegin(); err != nil {
		t.Fatalf("commitAndRebegin: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM profile_records").Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
