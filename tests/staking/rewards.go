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

// rewardsPerEpoch is what each staked node earns its contract per epoch in
// the rewards suite.
var rewardsPerEpoch = types.Coins(10)

// RewardsTester checks the epoch reward split between a contract owner
// taking a 10% service fee and an external delegator holding half of the
// active stake.
type RewardsTester struct {
	owner     *wallet.Wallet
	delegator *wallet.Wallet
	key       *wallet.ValidatorKey
	contract  types.Address
}

func (tester *RewardsTester) Test(t *testing.T, s *simulator.Simulator) {
	tester.owner = s.Wallet("actor0")
	tester.delegator = s.Wallet("actor1")
	var err error
	tester.key, err = wallet.NewValidatorKey()
	require.NoError(t, err)
	require.NoError(t, s.GenerateBlocksUntilEpochReached(constants.DefaultDelegationEnableEpoch))

	t.Run("stake-and-delegate", s.Test(tester.stakeAndDelegate))
	t.Run("accrue-rewards", s.Test(tester.accrueRewards))
	t.Run("claim-rewards", s.Test(tester.claimRewards))
	t.Run("claim-again", s.Test(tester.claimAgain))
}

func (tester *RewardsTester) stakeAndDelegate(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().CreateNewDelegationContract(tester.owner, types.Coins(2500), nil, 1000)
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	info, err := s.TxInfo(result.TxHash)
	a.NoError(err)
	tester.contract, err = info.DelegationContractAddress()
	a.NoError(err)

	hash, err = s.Delegation().AddNodes(tester.owner, tester.contract, tester.key)
	result = execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	hash, err = s.Delegation().StakeNodes(tester.owner, tester.contract, tester.key)
	result = execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	hash, err = s.Delegation().Delegate(tester.delegator, tester.contract, types.Coins(2500))
	result = execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	active, err := s.Delegation().TotalActiveStake(tester.contract)
	a.NoError(err)
	a.Equal(types.Coins(5000), active)
}

func (tester *RewardsTester) accrueRewards(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	a.NoError(s.ForceEpochChange())

	// 10 CORV reward: 1 CORV owner fee, 9 CORV split over 5000 active
	ownerClaim, err := s.Delegation().ClaimableRewards(tester.contract, tester.owner.Address())
	a.NoError(err)
	a.Equal(big.NewInt(5_500_000_000_000_000_000), ownerClaim)

	delegatorClaim, err := s.Delegation().ClaimableRewards(tester.contract, tester.delegator.Address())
	a.NoError(err)
	a.Equal(big.NewInt(4_500_000_000_000_000_000), delegatorClaim)

	out, err := s.Query(tester.contract, "getTotalCumulatedRewards", nil)
	a.NoError(err)
	a.Equal(rewardsPerEpoch, new(big.Int).SetBytes(out[0]))
}

func (tester *RewardsTester) claimRewards(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	before := s.Balance(tester.delegator.Address())
	hash, err := s.Delegation().ClaimRewards(tester.delegator, tester.contract)
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	expected := new(big.Int).Add(before, big.NewInt(4_500_000_000_000_000_000))
	expected.Sub(expected, result.Fee)
	a.Equal(expected, s.Balance(tester.delegator.Address()))

	delegatorClaim, err := s.Delegation().ClaimableRewards(tester.contract, tester.delegator.Address())
	a.NoError(err)
	a.Zero(delegatorClaim.Sign())

	// the owner has not claimed, its share stays put
	ownerClaim, err := s.Delegation().ClaimableRewards(tester.contract, tester.owner.Address())
	a.NoError(err)
	a.Equal(big.NewInt(5_500_000_000_000_000_000), ownerClaim)
}

func (tester *RewardsTester) claimAgain(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().ClaimRewards(tester.delegator, tester.contract)
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusFail, result.Status)
	a.Contains(result.ReturnMessage, "no rewards to claim")
}
