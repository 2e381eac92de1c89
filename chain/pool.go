package chain

import (
	"github.com/sasha-s/go-deadlock"
	"github.com/willf/bloom"

	"github.com/corvuschain/corvus-sim-go/common/types"
)

const (
	// bloom filter sizing for the duplicate-hash prefilter
	poolBloomFilterArgM = 1 << 21
	poolBloomFilterArgK = 7
)

// txPool holds pending transactions in arrival order. A bloom filter over
// every hash ever admitted answers the common "never seen" case without
// touching the map or the receipt store.
type txPool struct {
	lock    deadlock.Mutex
	queue   []types.Hash
	pending map[types.Hash]*types.Transaction
	seen    *bloom.BloomFilter
}

func newTxPool() *txPool {
	return &txPool{
		pending: make(map[types.Hash]*types.Transaction),
		seen:    bloom.New(poolBloomFilterArgM, poolBloomFilterArgK),
	}
}

// MaybeSeen reports whether the hash could have passed through the pool
// before. False means definitely new, true needs an authoritative check.
func (p *txPool) MaybeSeen(hash types.Hash) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.seen.Test(hash.Bytes())
}

func (p *txPool) Contains(hash types.Hash) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	_, ok := p.pending[hash]
	return ok
}

func (p *txPool) Get(hash types.Hash) (*types.Transaction, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	tx, ok := p.pending[hash]
	return tx, ok
}

func (p *txPool) Add(hash types.Hash, tx *types.Transaction) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if _, ok := p.pending[hash]; ok {
		return ErrDuplicateTx.Format(hash.Hex())
	}
	p.pending[hash] = tx
	p.queue = append(p.queue, hash)
	p.seen.Add(hash.Bytes())
	return nil
}

// PopMax removes up to max transactions in arrival order.
func (p *txPool) PopMax(max int) []*types.Transaction {
	p.lock.Lock()
	defer p.lock.Unlock()
	if max > len(p.queue) {
		max = len(p.queue)
	}
	out := make([]*types.Transaction, 0, max)
	for _, hash := range p.queue[:max] {
		out = append(out, p.pending[hash])
		delete(p.pending, hash)
	}
	p.queue = p.queue[max:]
	return out
}

func (p *txPool) Len() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.queue)
}
