package simulator

import (
	"math/big"

	"github.com/corvuschain/corvus-sim-go/chain"
	"github.com/corvuschain/corvus-sim-go/common/types"
	"github.com/corvuschain/corvus-sim-go/staking"
	"github.com/corvuschain/corvus-sim-go/wallet"
)

// generous enough for every delegation operation at the configured gas
// schedule, the sender still pays only for what a call actually uses
const delegationGasLimit = 60_000_000

// DelegationClient builds and sends calls against the delegation manager
// and its contracts. Every method pushes one transaction and returns its
// hash, block production stays in the caller's hands.
type DelegationClient struct {
	sim      *Simulator
	gasLimit uint64
}

func (s *Simulator) Delegation() *DelegationClient {
	return &DelegationClient{sim: s, gasLimit: delegationGasLimit}
}

// CreateNewDelegationContract deploys a delegation contract funded with
// value. A zero maxCap leaves the contract uncapped, serviceFee is in basis
// points of 10000.
func (d *DelegationClient) CreateNewDelegationContract(owner *wallet.Wallet, value, maxCap *big.Int, serviceFee uint64) (types.Hash, error) {
	data := chain.BuildCallData(
		"createNewDelegationContract",
		chain.AmountArg(maxCap),
		chain.AmountArg(new(big.Int).SetUint64(serviceFee)),
	)
	return d.sim.SendTransaction(owner, staking.DelegationManagerAddress, value, d.gasLimit, data)
}

// AddNodes registers validator keys with the contract, each key paired with
// its registration proof.
func (d *DelegationClient) AddNodes(owner *wallet.Wallet, contract types.Address, keys ...*wallet.ValidatorKey) (types.Hash, error) {
	args := make([][]byte, 0, 2*len(keys))
	for _, key := range keys {
		args = append(args, key.PubKey(), key.RegistrationProof(contract))
	}
	return d.contractCall(owner, contract, nil, "addNodes", args...)
}

func (d *DelegationClient) StakeNodes(owner *wallet.Wallet, contract types.Address, keys ...*wallet.ValidatorKey) (types.Hash, error) {
	return d.contractCall(owner, contract, nil, "stakeNodes", pubKeyArgs(keys)...)
}

func (d *DelegationClient) UnStakeNodes(owner *wallet.Wallet, contract types.Address, keys ...*wallet.ValidatorKey) (types.Hash, error) {
	return d.contractCall(owner, contract, nil, "unStakeNodes", pubKeyArgs(keys)...)
}

func (d *DelegationClient) UnBondNodes(owner *wallet.Wallet, contract types.Address, keys ...*wallet.ValidatorKey) (types.Hash, error) {
	return d.contractCall(owner, contract, nil, "unBondNodes", pubKeyArgs(keys)...)
}

func (d *DelegationClient) RemoveNodes(owner *wallet.Wallet, contract types.Address, keys ...*wallet.ValidatorKey) (types.Hash, error) {
	return d.contractCall(owner, contract, nil, "removeNodes", pubKeyArgs(keys)...)
}

func (d *DelegationClient) Delegate(from *wallet.Wallet, contract types.Address, value *big.Int) (types.Hash, error) {
	return d.contractCall(from, contract, value, "delegate")
}

func (d *DelegationClient) UnDelegate(from *wallet.Wallet, contract types.Address, value *big.Int) (types.Hash, error) {
	return d.contractCall(from, contract, nil, "unDelegate", chain.AmountArg(value))
}

func (d *DelegationClient) Withdraw(from *wallet.Wallet, contract types.Address) (types.Hash, error) {
	return d.contractCall(from, contract, nil, "withdraw")
}

func (d *DelegationClient) ClaimRewards(from *wallet.Wallet, contract types.Address) (types.Hash, error) {
	return d.contractCall(from, contract, nil, "claimRewards")
}

func (d *DelegationClient) ChangeServiceFee(owner *wallet.Wallet, contract types.Address, serviceFee uint64) (types.Hash, error) {
	return d.contractCall(owner, contract, nil, "changeServiceFee", chain.AmountArg(new(big.Int).SetUint64(serviceFee)))
}

func (d *DelegationClient) contractCall(from *wallet.Wallet, contract types.Address, value *big.Int, function string, args ...[]byte) (types.Hash, error) {
	data := chain.BuildCallData(function, args...)
	return d.sim.SendTransaction(from, contract, value, d.gasLimit, data)
}

func pubKeyArgs(keys []*wallet.ValidatorKey) [][]byte {
	args := make([][]byte, len(keys))
	for i, key := range keys {
		args[i] = key.PubKey()
	}
	return args
}

//
// read-only views
//

func (d *DelegationClient) ContractAddresses() ([]types.Address, error) {
	out, err := d.sim.Query(staking.DelegationManagerAddress, "getAllContractAddresses", nil)
	if err != nil {
		return nil, err
	}
	addrs := make([]types.Address, 0, len(out))
	for _, raw := range out {
		addr, err := types.AddressFromBytes(raw)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func (d *DelegationClient) TotalActiveStake(contract types.Address) (*big.Int, error) {
	return d.queryAmount(contract, "getTotalActiveStake", nil)
}

func (d *DelegationClient) UserActiveStake(contract types.Address, user types.Address) (*big.Int, error) {
	return d.queryAmount(contract, "getUserActiveStake", [][]byte{user.Bytes()})
}

func (d *DelegationClient) UserUnStakedValue(contract types.Address, user types.Address) (*big.Int, error) {
	return d.queryAmount(contract, "getUserUnStakedValue", [][]byte{user.Bytes()})
}

func (d *DelegationClient) ClaimableRewards(contract types.Address, user types.Address) (*big.Int, error) {
	return d.queryAmount(contract, "getClaimableRewards", [][]byte{user.Bytes()})
}

// KeyStatus resolves the state of one registered validator key, one of
// staked, notStaked, unStaked or jailed.
func (d *DelegationClient) KeyStatus(contract types.Address, key *wallet.ValidatorKey) (string, error) {
	return d.sim.ValidatorKeyStatus(contract, key)
}

func (d *DelegationClient) queryAmount(contract types.Address, function string, args [][]byte) (*big.Int, error) {
	out, err := d.sim.Query(contract, function, args)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return new(big.Int), nil
	}
	return new(big.Int).SetBytes(out[0]), nil
}
