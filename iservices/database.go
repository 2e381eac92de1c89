package iservices

//
// This file defines interfaces of Database service.
//

var DbServerName = "db"

//
// interface for batched writes
// write operations must be executed atomically
//
type IDatabaseBatch interface {
	// insert a new key-value pair, or update the value if the given key already exists
	Put(key []byte, value []byte) error

	// delete the given key and its value
	// if the given key does not exist, just return nil, indicating a successful deletion without doing anything.
	Delete(key []byte) error

	// execute all batched operations
	Write() error

	// reset the batch to empty
	Reset()
}

//
// Database Service
//
type IDatabaseService interface {
	// check existence of the given key
	Has(key []byte) (bool, error)

	// query the value of the given key
	Get(key []byte) ([]byte, error)

	// insert a new key-value pair, or update the value if the given key already exists
	Put(key []byte, value []byte) error

	// delete the given key and its value
	Delete(key []byte) error

	// create a batch which can pack Put & Delete operations and execute them atomically
	NewBatch() IDatabaseBatch

	// release a Batch
	DeleteBatch(b IDatabaseBatch)

	Close()
}
