package simulator

import (
	"math/big"

	"github.com/corvuschain/corvus-sim-go/common/types"
	"github.com/corvuschain/corvus-sim-go/wallet"
)

// SimAccount binds a named wallet to its simulator for chained calls.
type SimAccount struct {
	S    *Simulator
	Name string
	Key  *wallet.Wallet
}

func NewSimAccount(name string, s *Simulator) *SimAccount {
	return &SimAccount{
		S:    s,
		Name: name,
		Key:  s.Wallet(name),
	}
}

func (acc *SimAccount) Address() types.Address {
	return acc.Key.Address()
}

func (acc *SimAccount) Balance() *big.Int {
	return acc.S.Balance(acc.Address())
}

func (acc *SimAccount) Nonce() uint64 {
	return acc.S.Chain().GetAccount(acc.Address()).Nonce
}

func (acc *SimAccount) SendTransaction(receiver types.Address, value *big.Int, gasLimit uint64, data []byte) (types.Hash, error) {
	return acc.S.SendTransaction(acc.Key, receiver, value, gasLimit, data)
}

func (acc *SimAccount) RunTransaction(receiver types.Address, value *big.Int, gasLimit uint64, data []byte) (*types.TxResult, error) {
	return acc.S.RunTransaction(acc.Key, receiver, value, gasLimit, data)
}
