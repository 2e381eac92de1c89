package chain

import (
	"math/big"

	"github.com/sasha-s/go-deadlock"

	"github.com/corvuschain/corvus-sim-go/common/types"
)

type accountData struct {
	nonce   uint64
	balance *big.Int
}

// State is the in-memory account ledger. Unknown addresses read as empty
// accounts with a zero balance.
type State struct {
	lock     deadlock.RWMutex
	accounts map[types.Address]*accountData
}

func NewState() *State {
	return &State{accounts: make(map[types.Address]*accountData)}
}

func (s *State) account(addr types.Address) *accountData {
	acc, ok := s.accounts[addr]
	if !ok {
		acc = &accountData{balance: new(big.Int)}
		s.accounts[addr] = acc
	}
	return acc
}

func (s *State) BalanceOf(addr types.Address) *big.Int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if acc, ok := s.accounts[addr]; ok {
		return new(big.Int).Set(acc.balance)
	}
	return new(big.Int)
}

func (s *State) NonceOf(addr types.Address) uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if acc, ok := s.accounts[addr]; ok {
		return acc.nonce
	}
	return 0
}

func (s *State) SetBalance(addr types.Address, balance *big.Int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.account(addr).balance = types.CloneAmount(balance)
}

func (s *State) SetNonce(addr types.Address, nonce uint64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.account(addr).nonce = nonce
}

func (s *State) AddBalance(addr types.Address, amount *big.Int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	acc := s.account(addr)
	acc.balance.Add(acc.balance, amount)
}

func (s *State) SubBalance(addr types.Address, amount *big.Int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	acc := s.account(addr)
	if acc.balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	acc.balance.Sub(acc.balance, amount)
	return nil
}

// Transfer moves funds between accounts, also satisfying the staking
// engine's balance interface.
func (s *State) Transfer(from, to types.Address, amount *big.Int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	src := s.account(from)
	if src.balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	src.balance.Sub(src.balance, amount)
	dst := s.account(to)
	dst.balance.Add(dst.balance, amount)
	return nil
}

// Mint creates new funds out of thin air, used for epoch rewards.
func (s *State) Mint(to types.Address, amount *big.Int) {
	s.AddBalance(to, amount)
}

func (s *State) Account(addr types.Address) *types.AccountInfo {
	s.lock.RLock()
	defer s.lock.RUnlock()
	info := &types.AccountInfo{Address: addr, Balance: new(big.Int)}
	if acc, ok := s.accounts[addr]; ok {
		info.Nonce = acc.nonce
		info.Balance.Set(acc.balance)
	}
	return info
}
