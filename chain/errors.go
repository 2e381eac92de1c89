package chain

import (
	"github.com/kataras/go-errors"
)

// static-check and lookup failures; execution failures carry the staking
// engine's own messages
var (
	ErrNilTransaction    = errors.New("nil transaction")
	ErrInvalidChainId    = errors.New("transaction has an invalid chain id: got %s, want %s")
	ErrInvalidSignature  = errors.New("transaction signature verification failed")
	ErrNegativeValue     = errors.New("transaction value must not be negative")
	ErrNonceTooLow       = errors.New("transaction nonce too low: got %d, account is at %d")
	ErrGasPriceTooLow    = errors.New("gas price below the network minimum")
	ErrInsufficientGas   = errors.New("insufficient gas limit")
	ErrInsufficientFunds = errors.New("insufficient balance to cover value and fee")
	ErrTxTooLarge        = errors.New("transaction exceeds the maximum size")
	ErrDuplicateTx       = errors.New("transaction %s is already known")

	ErrInvalidCallData = errors.New("invalid call data")

	ErrTxNotFound        = errors.New("transaction not found")
	ErrTxResultNotFound  = errors.New("transaction result not found")
	ErrBlockNotFound     = errors.New("block not found")
	ErrTxNotProcessed    = errors.New("transaction %s was not fully executed after %d blocks")
	ErrEpochNotReached   = errors.New("epoch %d was not reached")
	ErrInvalidKeyLength  = errors.New("validator keys must be %d bytes long")
	ErrInvalidAddress    = errors.New("cannot parse address %s")
	ErrInvalidBalance    = errors.New("cannot parse balance %s")
	ErrSystemAccount     = errors.New("balances of system accounts cannot be overridden")
	ErrInvalidBlockCount = errors.New("the number of blocks to generate must be positive")
)
