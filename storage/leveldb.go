package storage

//
// This file implements Database interface based on levelDB.
//

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type LevelDatabase struct {
	db *leveldb.DB
}

// open or create a database at the given path
func NewLevelDatabase(file string) (*LevelDatabase, error) {
	db, err := leveldb.OpenFile(file, &opt.Options{
		Filter: filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &LevelDatabase{db: db}, nil
}

func (db *LevelDatabase) Close() {
	_ = db.db.Close()
}

func (db *LevelDatabase) Has(key []byte) (bool, error) {
	return db.db.Has(key, nil)
}

func (db *LevelDatabase) Get(key []byte) ([]byte, error) {
	return db.db.Get(key, nil)
}

func (db *LevelDatabase) Put(key []byte, value []byte) error {
	return db.db.Put(key, value, nil)
}

func (db *LevelDatabase) Delete(key []byte) error {
	return db.db.Delete(key, nil)
}

func (db *LevelDatabase) Iterate(start, limit []byte, callback func(key, value []byte) bool) {
	it := db.db.NewIterator(&util.Range{Start: start, Limit: limit}, nil)
	defer it.Release()

	for it.Next() {
		if callback != nil && !callback(it.Key(), it.Value()) {
			break
		}
	}
}

func (db *LevelDatabase) NewBatch() Batch {
	return &levelDatabaseBatch{db: db.db, b: new(leveldb.Batch)}
}

func (db *LevelDatabase) DeleteBatch(b Batch) {

}

type levelDatabaseBatch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *levelDatabaseBatch) Write() error {
	return b.db.Write(b.b, nil)
}

func (b *levelDatabaseBatch) Reset() {
	b.b.Reset()
}

func (b *levelDatabaseBatch) Put(key []byte, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *levelDatabaseBatch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}
