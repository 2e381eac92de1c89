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

// UnhappyPathsTester walks the staking-provider paths that must fail:
// creating a delegation contract below the deposit minimum, staking an
// unregistered key and staking without enough contract funds, then the
// recovery through an extra delegation.
type UnhappyPathsTester struct {
	wallet   *wallet.Wallet
	keys     [2]*wallet.ValidatorKey
	contract types.Address
	minted   *big.Int
}

func (tester *UnhappyPathsTester) Test(t *testing.T, s *simulator.Simulator) {
	var err error
	tester.wallet, err = wallet.NewRandom()
	require.NoError(t, err)
	for i := range tester.keys {
		tester.keys[i], err = wallet.NewValidatorKey()
		require.NoError(t, err)
	}
	tester.minted = types.Coins(6500)

	t.Run("mint-to-wallet", s.Test(tester.mintToWallet))
	t.Run("reach-delegation-epoch", s.Test(tester.reachDelegationEpoch))
	t.Run("create-below-minimum", s.Test(tester.createBelowMinimum))
	t.Run("create-contract", s.Test(tester.createContract))
	t.Run("add-second-key", s.Test(tester.addSecondKey))
	t.Run("stake-unregistered-key", s.Test(tester.stakeUnregisteredKey))
	t.Run("stake-without-funds", s.Test(tester.stakeWithoutFunds))
	t.Run("delegate-and-stake", s.Test(tester.delegateAndStake))
}

func (tester *UnhappyPathsTester) mintToWallet(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	a.NoError(s.SetBalance(tester.wallet.Address(), tester.minted))
	a.NoError(s.GenerateBlocks(1))
	a.Equal(tester.minted, s.Balance(tester.wallet.Address()))
}

func (tester *UnhappyPathsTester) reachDelegationEpoch(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	a.NoError(s.GenerateBlocksUntilEpochReached(constants.DefaultDelegationEnableEpoch))
	a.EqualValues(constants.DefaultDelegationEnableEpoch, s.NetworkStatus().Epoch)
}

func (tester *UnhappyPathsTester) createBelowMinimum(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().CreateNewDelegationContract(tester.wallet, types.Coins(1249), nil, 0)
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusFail, result.Status)
	a.Contains(result.ReturnMessage, "not enough call value")

	a.NoError(s.GenerateBlocks(1))

	// the deposit came back, only the fee is gone
	info, err := s.TxInfo(result.TxHash)
	a.NoError(err)
	spent := new(big.Int).Add(s.Balance(tester.wallet.Address()), info.Fee())
	a.Equal(tester.minted, spent)
}

func (tester *UnhappyPathsTester) createContract(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().CreateNewDelegationContract(tester.wallet, types.Coins(1250), types.Coins(4900), 0)
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	info, err := s.TxInfo(result.TxHash)
	a.NoError(err)
	tester.contract, err = info.DelegationContractAddress()
	a.NoError(err)
	a.NotEqual(types.Address{}, tester.contract)

	stake, err := s.Delegation().UserActiveStake(tester.contract, tester.wallet.Address())
	a.NoError(err)
	a.Equal(types.Coins(1250), stake)
}

func (tester *UnhappyPathsTester) addSecondKey(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().AddNodes(tester.wallet, tester.contract, tester.keys[1])
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	status, err := s.ValidatorKeyStatus(tester.contract, tester.keys[1])
	a.NoError(err)
	a.Equal("notStaked", status)
}

func (tester *UnhappyPathsTester) stakeUnregisteredKey(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().StakeNodes(tester.wallet, tester.contract, tester.keys[0])
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusFail, result.Status)
	a.Contains(result.ReturnMessage, "is not registered")

	// the first key was never added, the contract does not know it
	_, err = s.ValidatorKeyStatus(tester.contract, tester.keys[0])
	a.Error(err)
}

func (tester *UnhappyPathsTester) stakeWithoutFunds(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().StakeNodes(tester.wallet, tester.contract, tester.keys[1])
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusFail, result.Status)
	a.Contains(result.ReturnMessage, "not enough funds")

	status, err := s.ValidatorKeyStatus(tester.contract, tester.keys[1])
	a.NoError(err)
	a.Equal("notStaked", status)
}

func (tester *UnhappyPathsTester) delegateAndStake(t *testing.T, s *simulator.Simulator) {
	a := assert.New(t)

	hash, err := s.Delegation().Delegate(tester.wallet, tester.contract, types.Coins(1250))
	result := execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	hash, err = s.Delegation().StakeNodes(tester.wallet, tester.contract, tester.keys[1])
	result = execute(t, s, hash, err)
	a.Equal(types.TxStatusSuccess, result.Status)

	status, err := s.ValidatorKeyStatus(tester.contract, tester.keys[1])
	a.NoError(err)
	a.Equal("staked", status)

	active, err := s.Delegation().TotalActiveStake(tester.contract)
	a.NoError(err)
	a.Equal(types.Coins(2500), active)
}
