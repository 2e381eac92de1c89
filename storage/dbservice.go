package storage

//
// This file implements the database service.
//
// The service uses levelDB as the underlying kv-store, or a plain in-memory
// map when the node is configured with Database.InMemory (the embedded
// simulator harness always runs in memory).
//
// New() creates a service instance of type DatabaseService.
// DatabaseService implements both node.Service and iservices.IDatabaseService.
//

import (
	"github.com/pkg/errors"

	"github.com/corvuschain/corvus-sim-go/iservices"
	"github.com/corvuschain/corvus-sim-go/node"
)

type DatabaseService struct {
	inMemory bool
	path     string
	db       Database
}

// service constructor
func New(ctx *node.ServiceContext) (*DatabaseService, error) {
	if ctx == nil {
		return nil, errors.New("invalid service context")
	}
	cfg := ctx.Config().Database
	if cfg.InMemory {
		return &DatabaseService{inMemory: true}, nil
	}
	path := ctx.ResolvePath(cfg.Dir)
	if len(path) == 0 {
		return nil, errors.New("cannot resolve database path")
	}
	return &DatabaseService{path: path}, nil
}

// NewInMemory builds a service backed by a throwaway in-memory database,
// usable without going through the service life cycle.
func NewInMemory() *DatabaseService {
	return &DatabaseService{inMemory: true, db: NewMemoryDatabase()}
}

//
// implementation of Service interface
//

func (s *DatabaseService) Start(node *node.Node) error {
	if s.inMemory {
		if s.db == nil {
			s.db = NewMemoryDatabase()
		}
		return nil
	}
	db, err := NewLevelDatabase(s.path)
	if err != nil {
		return errors.Wrapf(err, "failed to open or create leveldb at %s", s.path)
	}
	s.db = db
	return nil
}

func (s *DatabaseService) Stop() error {
	s.Close()
	return nil
}

//
// implementation of IDatabaseService interface
//

func (s *DatabaseService) Has(key []byte) (bool, error) {
	return s.db.Has(key)
}

func (s *DatabaseService) Get(key []byte) ([]byte, error) {
	return s.db.Get(key)
}

func (s *DatabaseService) Put(key []byte, value []byte) error {
	return s.db.Put(key, value)
}

func (s *DatabaseService) Delete(key []byte) error {
	return s.db.Delete(key)
}

func (s *DatabaseService) NewBatch() iservices.IDatabaseBatch {
	return s.db.NewBatch()
}

func (s *DatabaseService) DeleteBatch(b iservices.IDatabaseBatch) {
	if batch, ok := b.(Batch); ok {
		s.db.DeleteBatch(batch)
	}
}

func (s *DatabaseService) Iterate(start, limit []byte, callback func(key, value []byte) bool) {
	s.db.Iterate(start, limit, callback)
}

func (s *DatabaseService) Close() {
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
}
