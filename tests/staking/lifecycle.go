package staking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvuschain/corvus-sim-go/common/constants"
	"github.com/corvuschain/corvus-sim-go/common/types"
	"github.com/corvuschain/corvus-sim-go/simulator"
	"github.com/corvuschain/corvus-sim-go/wallet"
)

// LifecycleTester drives a delegation contract through the full node
// lifecycle: register, stake, unstake, unbond, remove, plus the delegator
// side of undelegating and withdrawing matured funds.
type LifecycleTester struct {
	owner     *wallet.Wallet
	delegator *wallet.Wallet
	keys      [2]*wallet.ValidatorKey
	contract  types.Address
}

func (tester *LifecycleTester) Test(t *testing.T, s *simulator.Simulator) {
	tester.owner = s.Wallet("actor0")
	tester.delegator = s.Wallet("actor1")
	var err error
	for i := range tester.keys {
		tester.keys[i], err = wallet.NewValidatorKey()
		require.NoError(t, err)
	}
	require.NoError(t, s.GenerateBlocksUntilEpochReached(constants.DefaultDelegationEnableEpoch))

	t.Run("create-contract", s.Test(tester.createContract))
	t.Run("register-nodes", s.Test(tester.registerNodes))
	t.Run("stake-nodes", s.Test(tester.stakeNodes))
	t.Run("unstake-and-unbond", s.Test(tester.unStakeAndUnBond))
	t.Run("remove-nodes", s.Test(tester.removeNodes))
	t.Run("delegate-and-undelegate", s.Test(tester.delegateAndUnDelegate))
	t.Run("withdraw", s.Test(tester.withdraw))
}

func (tester *LifecycleTester) createContract(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().CreateNewDelegationContract(tester.owner, types.Coins(5000), nil, 1000)
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	info, err := s.TxInfo(result.TxHash)
	a.NoError(err)
	tester.contract, err = info.DelegationContractAddress()
	a.NoError(err)

	active, err := s.Delegation().TotalActiveStake(tester.contract)
	a.NoError(err)
	a.Equal(types.Coins(5000), active)
}

func (tester *LifecycleTester) registerNodes(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().AddNodes(tester.owner, tester.contract, tester.keys[0], tester.keys[1])
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	for _, key := range tester.keys {
		status, err := s.ValidatorKeyStatus(tester.contract, key)
		a.NoError(err)
		a.Equal("notStaked", status)
	}
}

func (tester *LifecycleTester) stakeNodes(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().StakeNodes(tester.owner, tester.contract, tester.keys[0], tester.keys[1])
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	for _, key := range tester.keys {
		status, err := s.ValidatorKeyStatus(tester.contract, key)
		a.NoError(err)
		a.Equal("staked", status)
	}
}

func (tester *LifecycleTester) unStakeAndUnBond(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().UnStakeNodes(tester.owner, tester.contract, tester.keys[0])
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	status, err := s.ValidatorKeyStatus(tester.contract, tester.keys[0])
	a.NoError(err)
	a.Equal("unStaked", status)

	// unbonding in the same epoch the key was unstaked in is too early
	hash, err = s.Delegation().UnBondNodes(tester.owner, tester.contract, tester.keys[0])
	result = execute(t, s, hash, err)
	a.Equal(types.TxStatusFail, result.Status)
	a.Contains(result.ReturnMessage, "unbond period")

	a.NoError(s.ForceEpochChange())

	hash, err = s.Delegation().UnBondNodes(tester.owner, tester.contract, tester.keys[0])
	result = execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	status, err = s.ValidatorKeyStatus(tester.contract, tester.keys[0])
	a.NoError(err)
	a.Equal("notStaked", status)
}

func (tester *LifecycleTester) removeNodes(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().RemoveNodes(tester.owner, tester.contract, tester.keys[1])
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusFail, result.Status)
	a.Contains(result.ReturnMessage, "must be unstaked and unbonded first")

	hash, err = s.Delegation().RemoveNodes(tester.owner, tester.contract, tester.keys[0])
	result = execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	_, err = s.ValidatorKeyStatus(tester.contract, tester.keys[0])
	a.Error(err)
}

func (tester *LifecycleTester) delegateAndUnDelegate(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().Delegate(tester.delegator, tester.contract, types.Coins(1000))
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	hash, err = s.Delegation().UnDelegate(tester.delegator, tester.contract, types.Coins(400))
	result = execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	active, err := s.Delegation().UserActiveStake(tester.contract, tester.delegator.Address())
	a.NoError(err)
	a.Equal(types.Coins(600), active)

	unstaked, err := s.Delegation().UserUnStakedValue(tester.contract, tester.delegator.Address())
	a.NoError(err)
	a.Equal(types.Coins(400), unstaked)
}

func (tester *LifecycleTester) withdraw(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().Withdraw(tester.delegator, tester.contract)
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusFail, result.Status)
	a.Contains(result.ReturnMessage, "no matured undelegated funds")

	a.NoError(s.ForceEpochChange())

	before := s.Balance(tester.delegator.Address())
	hash, err = s.Delegation().Withdraw(tester.delegator, tester.contract)
	result = execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	expected := new(big.Int).Add(before, types.Coins(400))
	expected.Sub(expected, result.Fee)
	a.Equal(expected, s.Balance(tester.delegator.Address()))

	unstaked, err := s.Delegation().UserUnStakedValue(tester.contract, tester.delegator.Address())
	a.NoError(err)
	a.Zero(unstaked.Sign())
}
