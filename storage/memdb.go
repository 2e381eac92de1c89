package storage

//
// This file implements Database interface based on map[string][]byte.
//

import (
	"sort"

	"github.com/pkg/errors"
	deadlock "github.com/sasha-s/go-deadlock"
)

var ErrKeyNotFound = errors.New("not found")

type MemoryDatabase struct {
	db   map[string][]byte
	lock deadlock.RWMutex
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{db: make(map[string][]byte)}
}

func (db *MemoryDatabase) Close() {

}

func (db *MemoryDatabase) Has(key []byte) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	_, ok := db.db[string(key)]
	return ok, nil
}

func (db *MemoryDatabase) Get(key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if value, ok := db.db[string(key)]; ok {
		return copyBytes(value), nil
	}
	return nil, ErrKeyNotFound
}

func (db *MemoryDatabase) Put(key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	db.db[string(key)] = copyBytes(value)
	return nil
}

func (db *MemoryDatabase) Delete(key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	delete(db.db, string(key))
	return nil
}

func (db *MemoryDatabase) Iterate(start, limit []byte, callback func(key, value []byte) bool) {
	db.lock.RLock()
	keys := make([]string, 0, len(db.db))
	for k := range db.db {
		if start != nil && k < string(start) {
			continue
		}
		if limit != nil && k >= string(limit) {
			continue
		}
		keys = append(keys, k)
	}
	data := make(map[string][]byte, len(keys))
	for _, k := range keys {
		data[k] = copyBytes(db.db[k])
	}
	db.lock.RUnlock()

	sort.Strings(keys)
	for _, k := range keys {
		if callback != nil && !callback([]byte(k), data[k]) {
			break
		}
	}
}

func (db *MemoryDatabase) NewBatch() Batch {
	return &memoryDatabaseBatch{db: db}
}

func (db *MemoryDatabase) DeleteBatch(b Batch) {

}

type batchOp struct {
	del        bool
	key, value []byte
}

type memoryDatabaseBatch struct {
	db  *MemoryDatabase
	ops []batchOp
}

func (b *memoryDatabaseBatch) Put(key []byte, value []byte) error {
	b.ops = append(b.ops, batchOp{key: copyBytes(key), value: copyBytes(value)})
	return nil
}

func (b *memoryDatabaseBatch) Delete(key []byte) error {
	b.ops = append(b.ops, batchOp{del: true, key: copyBytes(key)})
	return nil
}

func (b *memoryDatabaseBatch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	for _, op := range b.ops {
		if op.del {
			delete(b.db.db, string(op.key))
		} else {
			b.db.db[string(op.key)] = op.value
		}
	}
	return nil
}

func (b *memoryDatabaseBatch) Reset() {
	b.ops = b.ops[:0]
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
