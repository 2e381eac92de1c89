package iservices

import (
	"math/big"

	"github.com/corvuschain/corvus-sim-go/common/types"
)

//
// This file defines the interface of the simulated chain service.
//

var ChainServerName = "chain"

type IChainService interface {
	// static checks + pending pool; the hash identifies the tx from now on
	PushTransaction(tx *types.Transaction) (types.Hash, error)

	// produce exactly one block now
	ProduceBlock() (*types.Block, error)

	// produce the given number of blocks
	GenerateBlocks(numOfBlocks int) error

	// produce blocks until the current epoch reaches the target
	GenerateBlocksUntilEpochReached(targetEpoch uint32) error

	// produce blocks until the tx has a receipt, bounded by
	// constants.MaxBlocksToGenerateWhenExecutingTx
	GenerateBlocksUntilTxProcessed(hash types.Hash) (*types.TxResult, error)

	// force an immediate epoch rollover on the next produced block
	ForceEpochChange() error

	GetAccount(addr types.Address) *types.AccountInfo
	SetBalance(addr types.Address, balance *big.Int) error
	SetNonce(addr types.Address, nonce uint64) error
	SetStateMultiple(states []types.AddressState) error

	GetTransaction(hash types.Hash) (*types.Transaction, error)
	GetTxResult(hash types.Hash) (*types.TxResult, error)
	GetBlockByNonce(nonce uint64) (*types.Block, error)
	GetBlockByHash(hash types.Hash) (*types.Block, error)

	GetNetworkStatus() types.NetworkStatus
	CurrentEpoch() uint32
	ChainId() string

	// register hosted validator keys, 96 bytes each
	AddValidatorKeys(pubKeys [][]byte) error

	// per-key status map, hex key -> staked|notStaked|unStaked|jailed
	ValidatorStatistics() map[string]string

	// read-only view call against a system contract
	QueryContract(contract types.Address, function string, args [][]byte) ([][]byte, error)
}
