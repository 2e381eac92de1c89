package staking

import (
	"encoding/binary"
	"encoding/hex"
	"math/big"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/corvuschain/corvus-sim-go/common/constants"
	"github.com/corvuschain/corvus-sim-go/common/types"
)

// DelegationManagerAddress receives createNewDelegationContract calls.
var DelegationManagerAddress = types.NewSystemAddress("delegation")

// BalanceOps is the slice of account state the engine needs: moving funds
// between existing accounts and minting epoch rewards.
type BalanceOps interface {
	Transfer(from, to types.Address, amount *big.Int) error
	Mint(to types.Address, amount *big.Int)
}

// Params carries the chain-configured knobs of the delegation system.
type Params struct {
	EnableEpoch            uint32
	UnBondPeriodInEpochs   uint32
	RewardsPerEpochPerNode *big.Int
}

// Call is one transaction-borne invocation, already parsed from call data.
type Call struct {
	Caller      types.Address
	Recipient   types.Address
	Value       *big.Int
	Function    string
	Args        [][]byte
	Epoch       uint32
	CallerNonce uint64
}

// CallOutput is what a successful invocation hands back to the chain.
type CallOutput struct {
	ReturnData [][]byte
	Logs       []types.LogEvent
}

// Engine models the delegation manager and every delegation contract it
// deployed. It is driven synchronously by the chain controller and holds no
// locks of its own.
type Engine struct {
	log      *logrus.Logger
	balances BalanceOps
	registry *Registry
	params   Params

	contracts    map[types.Address]*DelegationContract
	contractList []types.Address

	minDeposit    *big.Int
	nodeStake     *big.Int
	minDelegation *big.Int
}

func NewEngine(log *logrus.Logger, balances BalanceOps, params Params) *Engine {
	if params.RewardsPerEpochPerNode == nil {
		params.RewardsPerEpochPerNode = new(big.Int)
	}
	return &Engine{
		log:           log,
		balances:      balances,
		registry:      NewRegistry(),
		params:        params,
		contracts:     make(map[types.Address]*DelegationContract),
		minDeposit:    types.Coins(constants.MinDelegationDepositCORV),
		nodeStake:     types.Coins(constants.NodeStakeCORV),
		minDelegation: types.Coins(constants.MinDelegationCORV),
	}
}

func (e *Engine) Registry() *Registry {
	return e.registry
}

func (e *Engine) Contract(addr types.Address) (*DelegationContract, bool) {
	c, ok := e.contracts[addr]
	return c, ok
}

func (e *Engine) IsDelegationContract(addr types.Address) bool {
	_, ok := e.contracts[addr]
	return ok
}

// Execute runs one call against the delegation manager or one of its
// contracts. The caller's value has already been credited to the recipient
// account; on error the chain refunds it.
func (e *Engine) Execute(call *Call) (*CallOutput, error) {
	if call.Epoch < e.params.EnableEpoch {
		return nil, ErrNotEnabledYet
	}
	if call.Recipient == DelegationManagerAddress {
		return e.executeManagerCall(call)
	}
	contract, ok := e.contracts[call.Recipient]
	if !ok {
		return nil, ErrUnknownContract
	}
	return e.executeContractCall(contract, call)
}

func (e *Engine) executeManagerCall(call *Call) (*CallOutput, error) {
	switch call.Function {
	case "createNewDelegationContract":
		return e.createContract(call)
	default:
		return nil, ErrUnknownFunction.Format(call.Function)
	}
}

func (e *Engine) createContract(call *Call) (*CallOutput, error) {
	if len(call.Args) != 2 {
		return nil, ErrInvalidArguments.Format(call.Function)
	}
	if call.Value.Cmp(e.minDeposit) < 0 {
		return nil, ErrInsufficientDeposit
	}
	maxCap := new(big.Int).SetBytes(call.Args[0])
	fee := new(big.Int).SetBytes(call.Args[1])
	if !fee.IsUint64() || fee.Uint64() > constants.MaxServiceFee {
		return nil, ErrInvalidServiceFee
	}
	if maxCap.Sign() > 0 && maxCap.Cmp(call.Value) < 0 {
		return nil, ErrInvalidCap
	}

	addr := deriveContractAddress(call.Caller, call.CallerNonce)
	contract := &DelegationContract{
		Address:               addr,
		Owner:                 call.Caller,
		CreatedEpoch:          call.Epoch,
		MaxDelegationCap:      maxCap,
		ServiceFee:            fee.Uint64(),
		TotalActiveStake:      types.CloneAmount(call.Value),
		StakedAmount:          new(big.Int),
		Delegators:            make(map[types.Address]*Delegator),
		TotalCumulatedRewards: new(big.Int),
	}
	owner := contract.delegator(call.Caller)
	owner.ActiveStake = types.CloneAmount(call.Value)

	e.contracts[addr] = contract
	e.contractList = append(e.contractList, addr)

	// the deposit was credited to the manager account, park it in the
	// freshly deployed contract instead
	if err := e.balances.Transfer(DelegationManagerAddress, addr, call.Value); err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"contract": addr.String(),
		"owner":    call.Caller.String(),
		"deposit":  call.Value.String(),
	}).Info("delegation contract deployed")

	return &CallOutput{
		ReturnData: [][]byte{addr.Bytes()},
		Logs: []types.LogEvent{{
			Address:    addr,
			Identifier: "SCDeploy",
			Topics:     [][]byte{call.Caller.Bytes(), addr.Bytes()},
		}},
	}, nil
}

func (e *Engine) executeContractCall(c *DelegationContract, call *Call) (*CallOutput, error) {
	if call.Value.Sign() > 0 && call.Function != "delegate" {
		return nil, ErrValueNotAccepted.Format(call.Function)
	}
	switch call.Function {
	case "delegate":
		return e.delegate(c, call)
	case "unDelegate":
		return e.unDelegate(c, call)
	case "withdraw":
		return e.withdraw(c, call)
	case "claimRewards":
		return e.claimRewards(c, call)
	case "addNodes":
		return e.addNodes(c, call)
	case "stakeNodes":
		return e.stakeNodes(c, call)
	case "unStakeNodes":
		return e.unStakeNodes(c, call)
	case "unBondNodes":
		return e.unBondNodes(c, call)
	case "removeNodes":
		return e.removeNodes(c, call)
	case "changeServiceFee":
		return e.changeServiceFee(c, call)
	default:
		return nil, ErrUnknownFunction.Format(call.Function)
	}
}

func (e *Engine) delegate(c *DelegationContract, call *Call) (*CallOutput, error) {
	if len(call.Args) != 0 {
		return nil, ErrInvalidArguments.Format(call.Function)
	}
	if call.Value.Cmp(e.minDelegation) < 0 {
		return nil, ErrDelegationTooSmall
	}
	newTotal := new(big.Int).Add(c.TotalActiveStake, call.Value)
	if c.MaxDelegationCap.Sign() > 0 && newTotal.Cmp(c.MaxDelegationCap) > 0 {
		return nil, ErrDelegationCapReached
	}
	d := c.delegator(call.Caller)
	d.ActiveStake.Add(d.ActiveStake, call.Value)
	c.TotalActiveStake = newTotal

	return &CallOutput{
		Logs: []types.LogEvent{{
			Address:    c.Address,
			Identifier: "delegate",
			Topics:     [][]byte{call.Caller.Bytes(), call.Value.Bytes(), c.TotalActiveStake.Bytes()},
		}},
	}, nil
}

func (e *Engine) unDelegate(c *DelegationContract, call *Call) (*CallOutput, error) {
	if len(call.Args) != 1 {
		return nil, ErrInvalidArguments.Format(call.Function)
	}
	amount := new(big.Int).SetBytes(call.Args[0])
	if amount.Sign() <= 0 {
		return nil, ErrInvalidArguments.Format(call.Function)
	}
	d, ok := c.Delegators[call.Caller]
	if !ok {
		return nil, ErrUnknownDelegator
	}
	if amount.Cmp(d.ActiveStake) > 0 {
		return nil, ErrNotEnoughActiveStake
	}
	remainder := new(big.Int).Sub(d.ActiveStake, amount)
	if remainder.Sign() != 0 && remainder.Cmp(e.minDelegation) < 0 {
		return nil, ErrRemainderTooSmall
	}
	if amount.Cmp(c.FreeFunds()) > 0 {
		return nil, ErrNotEnoughFreeFunds
	}
	d.ActiveStake = remainder
	c.TotalActiveStake.Sub(c.TotalActiveStake, amount)
	d.UnStaked = append(d.UnStaked, UnStakedEntry{Amount: amount, Epoch: call.Epoch})

	return &CallOutput{
		Logs: []types.LogEvent{{
			Address:    c.Address,
			Identifier: "unDelegate",
			Topics:     [][]byte{call.Caller.Bytes(), amount.Bytes()},
		}},
	}, nil
}

func (e *Engine) withdraw(c *DelegationContract, call *Call) (*CallOutput, error) {
	d, ok := c.Delegators[call.Caller]
	if !ok {
		return nil, ErrUnknownDelegator
	}
	matured := new(big.Int)
	var remaining []UnStakedEntry
	for _, entry := range d.UnStaked {
		if entry.Epoch+e.params.UnBondPeriodInEpochs <= call.Epoch {
			matured.Add(matured, entry.Amount)
		} else {
			remaining = append(remaining, entry)
		}
	}
	if matured.Sign() == 0 {
		return nil, ErrNothingToWithdraw
	}
	d.UnStaked = remaining
	if err := e.balances.Transfer(c.Address, call.Caller, matured); err != nil {
		return nil, err
	}

	return &CallOutput{
		ReturnData: [][]byte{matured.Bytes()},
		Logs: []types.LogEvent{{
			Address:    c.Address,
			Identifier: "withdraw",
			Topics:     [][]byte{call.Caller.Bytes(), matured.Bytes()},
		}},
	}, nil
}

func (e *Engine) claimRewards(c *DelegationContract, call *Call) (*CallOutput, error) {
	d, ok := c.Delegators[call.Caller]
	if !ok {
		return nil, ErrUnknownDelegator
	}
	if d.Claimable.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	claimed := types.CloneAmount(d.Claimable)
	d.Claimable.SetInt64(0)
	if err := e.balances.Transfer(c.Address, call.Caller, claimed); err != nil {
		return nil, err
	}

	return &CallOutput{
		ReturnData: [][]byte{claimed.Bytes()},
		Logs: []types.LogEvent{{
			Address:    c.Address,
			Identifier: "claimRewards",
			Topics:     [][]byte{call.Caller.Bytes(), claimed.Bytes()},
		}},
	}, nil
}

func (e *Engine) addNodes(c *DelegationContract, call *Call) (*CallOutput, error) {
	if call.Caller != c.Owner {
		return nil, ErrNotContractOwner
	}
	if len(call.Args) == 0 || len(call.Args)%2 != 0 {
		return nil, ErrInvalidArguments.Format(call.Function)
	}
	for i := 0; i < len(call.Args); i += 2 {
		key, proof := call.Args[i], call.Args[i+1]
		if len(key) != ValidatorPubKeyLength {
			return nil, ErrInvalidKeyLength
		}
		if len(proof) != RegistrationProofLength {
			return nil, ErrInvalidProofLength
		}
		keyHex := hex.EncodeToString(key)
		if !verifyRegistrationProof(c.Address, key, proof) {
			return nil, ErrInvalidProof
		}
		if err := e.registry.Register(c.Address, keyHex); err != nil {
			return nil, err
		}
		c.Nodes = append(c.Nodes, keyHex)
	}
	return &CallOutput{}, nil
}

func (e *Engine) stakeNodes(c *DelegationContract, call *Call) (*CallOutput, error) {
	if call.Caller != c.Owner {
		return nil, ErrNotContractOwner
	}
	if len(call.Args) == 0 {
		return nil, ErrInvalidArguments.Format(call.Function)
	}

	var toStake []string
	needed := new(big.Int)
	for _, arg := range call.Args {
		if len(arg) != ValidatorPubKeyLength {
			return nil, ErrInvalidKeyLength
		}
		keyHex := hex.EncodeToString(arg)
		if !c.hasNode(keyHex) {
			return nil, ErrKeyNotRegistered.Format(shortKey(keyHex))
		}
		status, err := e.registry.StatusOf(keyHex)
		if err != nil {
			return nil, err
		}
		switch status {
		case StatusStaked:
			return nil, ErrKeyAlreadyStaked.Format(shortKey(keyHex))
		case StatusNotStaked:
			// a fresh stake locks the per-node amount
			needed.Add(needed, e.nodeStake)
		}
		toStake = append(toStake, keyHex)
	}
	if needed.Cmp(c.FreeFunds()) > 0 {
		return nil, ErrNotEnoughFundsToStake
	}

	c.StakedAmount.Add(c.StakedAmount, needed)
	for _, keyHex := range toStake {
		e.registry.markStaked(keyHex)
	}

	e.log.WithFields(logrus.Fields{
		"contract": c.Address.String(),
		"nodes":    len(toStake),
		"locked":   needed.String(),
	}).Info("nodes staked")

	return &CallOutput{}, nil
}

func (e *Engine) unStakeNodes(c *DelegationContract, call *Call) (*CallOutput, error) {
	if call.Caller != c.Owner {
		return nil, ErrNotContractOwner
	}
	if len(call.Args) == 0 {
		return nil, ErrInvalidArguments.Format(call.Function)
	}
	keys, err := e.contractKeys(c, call.Args)
	if err != nil {
		return nil, err
	}
	for _, keyHex := range keys {
		status, _ := e.registry.StatusOf(keyHex)
		if status != StatusStaked {
			return nil, ErrKeyNotStaked.Format(shortKey(keyHex))
		}
	}
	for _, keyHex := range keys {
		e.registry.markUnStaked(keyHex, call.Epoch)
	}
	return &CallOutput{}, nil
}

func (e *Engine) unBondNodes(c *DelegationContract, call *Call) (*CallOutput, error) {
	if call.Caller != c.Owner {
		return nil, ErrNotContractOwner
	}
	if len(call.Args) == 0 {
		return nil, ErrInvalidArguments.Format(call.Function)
	}
	keys, err := e.contractKeys(c, call.Args)
	if err != nil {
		return nil, err
	}
	for _, keyHex := range keys {
		rec, _ := e.registry.record(keyHex)
		if rec.Status != StatusUnStaked {
			return nil, ErrKeyNotUnStaked.Format(shortKey(keyHex))
		}
		if rec.UnStakeEpoch+e.params.UnBondPeriodInEpochs > call.Epoch {
			return nil, ErrUnBondNotDue.Format(shortKey(keyHex))
		}
	}
	for _, keyHex := range keys {
		c.StakedAmount.Sub(c.StakedAmount, e.nodeStake)
		e.registry.markNotStaked(keyHex)
	}
	return &CallOutput{}, nil
}

func (e *Engine) removeNodes(c *DelegationContract, call *Call) (*CallOutput, error) {
	if call.Caller != c.Owner {
		return nil, ErrNotContractOwner
	}
	if len(call.Args) == 0 {
		return nil, ErrInvalidArguments.Format(call.Function)
	}
	keys, err := e.contractKeys(c, call.Args)
	if err != nil {
		return nil, err
	}
	for _, keyHex := range keys {
		status, _ := e.registry.StatusOf(keyHex)
		if status != StatusNotStaked {
			return nil, ErrKeyStillStaked.Format(shortKey(keyHex))
		}
	}
	for _, keyHex := range keys {
		e.registry.Remove(keyHex)
		c.dropNode(keyHex)
	}
	return &CallOutput{}, nil
}

func (e *Engine) changeServiceFee(c *DelegationContract, call *Call) (*CallOutput, error) {
	if call.Caller != c.Owner {
		return nil, ErrNotContractOwner
	}
	if len(call.Args) != 1 {
		return nil, ErrInvalidArguments.Format(call.Function)
	}
	fee := new(big.Int).SetBytes(call.Args[0])
	if !fee.IsUint64() || fee.Uint64() > constants.MaxServiceFee {
		return nil, ErrInvalidServiceFee
	}
	c.ServiceFee = fee.Uint64()
	return &CallOutput{}, nil
}

// contractKeys maps raw key args to hex, requiring every key to belong to
// the contract.
func (e *Engine) contractKeys(c *DelegationContract, args [][]byte) ([]string, error) {
	keys := make([]string, 0, len(args))
	for _, arg := range args {
		if len(arg) != ValidatorPubKeyLength {
			return nil, ErrInvalidKeyLength
		}
		keyHex := hex.EncodeToString(arg)
		if !c.hasNode(keyHex) {
			return nil, ErrKeyNotRegistered.Format(shortKey(keyHex))
		}
		keys = append(keys, keyHex)
	}
	return keys, nil
}

// OnEpochStart accrues the configured per-node reward to every contract
// with staked nodes, splitting it between the owner's service fee and the
// delegators' active stake, pro rata.
func (e *Engine) OnEpochStart(epoch uint32) {
	if e.params.RewardsPerEpochPerNode.Sign() <= 0 {
		return
	}
	for _, addr := range e.contractList {
		c := e.contracts[addr]
		staked := 0
		for _, keyHex := range c.Nodes {
			if status, err := e.registry.StatusOf(keyHex); err == nil && status == StatusStaked {
				staked++
			}
		}
		if staked == 0 {
			continue
		}

		reward := new(big.Int).Mul(e.params.RewardsPerEpochPerNode, big.NewInt(int64(staked)))
		e.balances.Mint(c.Address, reward)
		c.TotalCumulatedRewards.Add(c.TotalCumulatedRewards, reward)

		ownerCut := new(big.Int).Mul(reward, new(big.Int).SetUint64(c.ServiceFee))
		ownerCut.Div(ownerCut, big.NewInt(constants.PERCENT))
		toSplit := new(big.Int).Sub(reward, ownerCut)

		distributed := new(big.Int)
		for delegatorAddr, d := range c.Delegators {
			if d.ActiveStake.Sign() == 0 || delegatorAddr == c.Owner {
				continue
			}
			share := new(big.Int).Mul(toSplit, d.ActiveStake)
			share.Div(share, c.TotalActiveStake)
			d.Claimable.Add(d.Claimable, share)
			distributed.Add(distributed, share)
		}

		// the owner collects the fee, its own pro-rata share and the
		// integer-division dust
		ownerShare := new(big.Int).Sub(toSplit, distributed)
		owner := c.delegator(c.Owner)
		owner.Claimable.Add(owner.Claimable, ownerCut)
		owner.Claimable.Add(owner.Claimable, ownerShare)

		e.log.WithFields(logrus.Fields{
			"contract": c.Address.String(),
			"epoch":    epoch,
			"reward":   reward.String(),
		}).Debug("epoch rewards accrued")
	}
}

func deriveContractAddress(owner types.Address, nonce uint64) types.Address {
	buf := make([]byte, 0, types.AddressLength+8+len("delegation"))
	buf = append(buf, owner.Bytes()...)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	buf = append(buf, n[:]...)
	buf = append(buf, []byte("delegation")...)
	sum := blake2b.Sum256(buf)
	// keep the system prefix clear so contract addresses stay in user space
	if sum[0] == 0 {
		sum[0] = 1
	}
	addr, _ := types.AddressFromBytes(sum[:])
	return addr
}

// RegistrationProof is the 48-byte proof a validator key presents when it
// is added to a contract. The simulator uses a keyed hash over the contract
// address and the public key instead of a real BLS signature.
func RegistrationProof(contract types.Address, pubKey []byte) []byte {
	buf := make([]byte, 0, types.AddressLength+len(pubKey))
	buf = append(buf, contract.Bytes()...)
	buf = append(buf, pubKey...)
	sum := blake2b.Sum512(buf)
	return sum[:RegistrationProofLength]
}

func verifyRegistrationProof(contract types.Address, pubKey, proof []byte) bool {
	expected := RegistrationProof(contract, pubKey)
	if len(proof) != len(expected) {
		return false
	}
	for i := range proof {
		if proof[i] != expected[i] {
			return false
		}
	}
	return true
}
