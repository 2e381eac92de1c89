package facade

import (
	"github.com/kataras/go-errors"
)

var (
	ErrNilChainService     = errors.New("nil chain service provided")
	ErrInvalidNumOfBlocks  = errors.New("invalid number of blocks %v")
	ErrInvalidTxHash       = errors.New("cannot parse transaction hash %s")
	ErrInvalidAddress      = errors.New("cannot parse address %s")
	ErrNilTransaction      = errors.New("nil transaction payload")
	ErrNoValidatorKeys     = errors.New("no validator keys provided")
	ErrInvalidValidatorKey = errors.New("cannot parse validator key %s")
	ErrEmptyStateList      = errors.New("empty state list")
)
