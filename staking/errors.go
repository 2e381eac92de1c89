package staking

import (
	"github.com/kataras/go-errors"
)

// user-facing failures, surfaced verbatim as the receipt return message
var (
	ErrNotEnabledYet = errors.New("delegation manager is not enabled yet")

	ErrInsufficientDeposit = errors.New("not enough call value to create a new delegation contract")
	ErrInvalidServiceFee   = errors.New("service fee out of bounds")
	ErrInvalidCap          = errors.New("invalid delegation cap")
	ErrUnknownFunction     = errors.New("function %s is not known by the delegation contract")
	ErrUnknownContract     = errors.New("delegation contract not found")
	ErrNotContractOwner    = errors.New("only the contract owner may call this function")
	ErrValueNotAccepted    = errors.New("function %s does not accept a call value")
	ErrInvalidArguments    = errors.New("invalid arguments for function %s")

	ErrInvalidKeyLength   = errors.New("invalid bls key length")
	ErrInvalidProofLength = errors.New("invalid registration proof length")
	ErrInvalidProof       = errors.New("registration proof verification failed")
	ErrKeyAlreadyExists   = errors.New("bls key %s is already registered")
	ErrKeyNotRegistered   = errors.New("bls key %s is not registered by the delegation contract")
	ErrKeyAlreadyStaked   = errors.New("bls key %s is already staked")
	ErrKeyNotStaked       = errors.New("bls key %s is not staked")
	ErrKeyNotUnStaked     = errors.New("bls key %s is not in the unstaked state")
	ErrKeyStillStaked     = errors.New("bls key %s must be unstaked and unbonded first")
	ErrUnBondNotDue       = errors.New("unbond period for bls key %s has not passed yet")

	ErrNotEnoughFundsToStake = errors.New("not enough funds in the delegation contract to stake nodes")
	ErrDelegationCapReached  = errors.New("total delegation cap reached")
	ErrDelegationTooSmall    = errors.New("delegated value is below the minimum")
	ErrNotEnoughActiveStake  = errors.New("not enough active stake to undelegate")
	ErrRemainderTooSmall     = errors.New("remaining active stake would fall below the minimum")
	ErrNotEnoughFreeFunds    = errors.New("not enough free funds, unstake nodes first")
	ErrNothingToWithdraw     = errors.New("no matured undelegated funds to withdraw")
	ErrNothingToClaim        = errors.New("no rewards to claim")
	ErrUnknownDelegator      = errors.New("caller never delegated to this contract")
)
