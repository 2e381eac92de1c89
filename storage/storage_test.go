package storage

import (
	"bytes"
	"testing"
)

func requireSuccessGet(t *testing.T, db Database, key []byte, correctValue []byte) {
	value, err := db.Get(key)
	if err != nil {
		t.Fatalf("Failed Get key=%v, err: %v", string(key), err)
	}
	if !bytes.Equal(value, correctValue) {
		t.Fatalf("Error value for key=%v. got %v, expecting %v", string(key), string(value), string(correctValue))
	}
}

func requireErrorGet(t *testing.T, db Database, key []byte) {
	_, err := db.Get(key)
	if err == nil {
		t.Fatalf("Get non-existent key=%v", string(key))
	}
}

func requireSuccessPut(t *testing.T, db Database, key []byte, value []byte) {
	if err := db.Put(key, value); err != nil {
		t.Fatalf("Failed Put key=%v, value=%v, err %v", string(key), string(value), err)
	}
}

func requireSuccessDel(t *testing.T, db Database, key []byte) {
	if err := db.Delete(key); err != nil {
		t.Fatalf("Failed Delete key=%v, err %v", string(key), err)
	}
}

func dbTest(t *testing.T, db Database) {
	requireErrorGet(t, db, []byte("missing"))

	requireSuccessPut(t, db, []byte("k1"), []byte("v1"))
	requireSuccessPut(t, db, []byte("k2"), []byte("v2"))
	requireSuccessPut(t, db, []byte("k3"), []byte("v3"))
	requireSuccessGet(t, db, []byte("k2"), []byte("v2"))

	has, err := db.Has([]byte("k1"))
	if err != nil || !has {
		t.Fatalf("Has(k1) = %v, %v", has, err)
	}

	// overwrite
	requireSuccessPut(t, db, []byte("k2"), []byte("v2bis"))
	requireSuccessGet(t, db, []byte("k2"), []byte("v2bis"))

	requireSuccessDel(t, db, []byte("k2"))
	requireErrorGet(t, db, []byte("k2"))

	// range scan is ascending and bounded by [start, limit)
	var visited []string
	db.Iterate([]byte("k1"), []byte("k4"), func(key, value []byte) bool {
		visited = append(visited, string(key))
		return true
	})
	if len(visited) != 2 || visited[0] != "k1" || visited[1] != "k3" {
		t.Fatalf("unexpected iteration order: %v", visited)
	}

	// early stop
	visited = visited[:0]
	db.Iterate(nil, nil, func(key, value []byte) bool {
		visited = append(visited, string(key))
		return false
	})
	if len(visited) != 1 {
		t.Fatalf("iteration did not stop early: %v", visited)
	}

	// batched writes are atomic from the caller's point of view
	b := db.NewBatch()
	_ = b.Put([]byte("b1"), []byte("x"))
	_ = b.Put([]byte("b2"), []byte("y"))
	_ = b.Delete([]byte("k1"))
	if err := b.Write(); err != nil {
		t.Fatalf("batch write failed: %v", err)
	}
	db.DeleteBatch(b)
	requireSuccessGet(t, db, []byte("b1"), []byte("x"))
	requireSuccessGet(t, db, []byte("b2"), []byte("y"))
	requireErrorGet(t, db, []byte("k1"))
}

func TestMemoryDatabase(t *testing.T) {
	db := NewMemoryDatabase()
	defer db.Close()
	dbTest(t, db)
}

func TestLevelDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := NewLevelDatabase(dir)
	if err != nil {
		t.Fatalf("failed to open leveldb: %v", err)
	}
	defer db.Close()
	dbTest(t, db)
}
