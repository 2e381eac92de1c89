package types

import (
	"encoding/json"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// Transaction is a value transfer or a system-contract call. Data carries
// the call in "function@hexarg@hexarg" form, empty for plain transfers.
type Transaction struct {
	Nonce     uint64   `json:"nonce"`
	Value     *big.Int `json:"value"`
	Sender    Address  `json:"sender"`
	Receiver  Address  `json:"receiver"`
	GasPrice  uint64   `json:"gasPrice"`
	GasLimit  uint64   `json:"gasLimit"`
	Data      []byte   `json:"data,omitempty"`
	ChainID   string   `json:"chainID"`
	Version   uint32   `json:"version"`
	Signature []byte   `json:"signature,omitempty"`
}

// SerializeForSigning renders the canonical byte form covered by the
// signature: the JSON encoding with the signature field cleared.
func (t *Transaction) SerializeForSigning() []byte {
	unsigned := *t
	unsigned.Signature = nil
	b, err := json.Marshal(&unsigned)
	if err != nil {
		panic(err)
	}
	return b
}

// ComputeHash is the identity of the transaction, signature excluded.
func (t *Transaction) ComputeHash() Hash {
	return Hash(blake2b.Sum256(t.SerializeForSigning()))
}

// Block is a produced block of the simulated chain.
type Block struct {
	Nonce       uint64 `json:"nonce"`
	Round       uint64 `json:"round"`
	Epoch       uint32 `json:"epoch"`
	TimestampMs uint64 `json:"timestampMs"`
	PrevHash    Hash   `json:"prevHash"`
	Hash        Hash   `json:"hash"`
	TxHashes    []Hash `json:"txHashes,omitempty"`
}

// ComputeHash is the block identity: the header hashed with the hash
// field cleared.
func (b *Block) ComputeHash() Hash {
	header := *b
	header.Hash = Hash{}
	raw, err := json.Marshal(&header)
	if err != nil {
		panic(err)
	}
	return Hash(blake2b.Sum256(raw))
}

// TxResult is the receipt of an executed transaction.
type TxResult struct {
	TxHash        Hash                  `json:"txHash"`
	Status        TxStatus              `json:"status"`
	GasUsed       uint64                `json:"gasUsed"`
	Fee           *big.Int              `json:"fee"`
	ReturnMessage string                `json:"returnMessage,omitempty"`
	Logs          []LogEvent            `json:"logs,omitempty"`
	SCResults     []SmartContractResult `json:"smartContractResults,omitempty"`
	BlockNonce    uint64                `json:"blockNonce"`
	Epoch         uint32                `json:"epoch"`
}

// AccountInfo is the externally visible state of an account.
type AccountInfo struct {
	Address Address  `json:"address"`
	Nonce   uint64   `json:"nonce"`
	Balance *big.Int `json:"balance"`
}

// AddressState is one entry of a bulk state override.
type AddressState struct {
	Address string  `json:"address"`
	Balance string  `json:"balance,omitempty"`
	Nonce   *uint64 `json:"nonce,omitempty"`
}
