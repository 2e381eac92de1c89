package staking

import (
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvuschain/corvus-sim-go/common/types"
)

func TestManagerViews(t *testing.T) {
	a := assert.New(t)
	f := newEngineFixture()

	owner := testAddress(0xa1)
	f.ledger.credit(owner, types.Coins(2500))

	first, err := f.createContract(owner, types.Coins(1250), []byte{0}, []byte{0})
	a.NoError(err)
	second, err := f.createContract(owner, types.Coins(1250), []byte{0}, []byte{0})
	a.NoError(err)

	out, err := f.engine.Query(DelegationManagerAddress, "getAllContractAddresses", nil)
	a.NoError(err)
	a.Equal([][]byte{first.Bytes(), second.Bytes()}, out)

	_, err = f.engine.Query(DelegationManagerAddress, "getTotalActiveStake", nil)
	a.EqualError(err, ErrUnknownFunction.Format("getTotalActiveStake").Error())
}

func TestContractViews(t *testing.T) {
	a := assert.New(t)
	f := newEngineFixture()
	f.engine.params.RewardsPerEpochPerNode = big.NewInt(1000)

	owner := testAddress(0xa1)
	delegator := testAddress(0xb2)
	f.ledger.credit(owner, types.Coins(2500))
	f.ledger.credit(delegator, types.Coins(1000))

	// 10% service fee, uncapped
	contract, err := f.createContract(owner, types.Coins(2500), []byte{0}, big.NewInt(1000).Bytes())
	a.NoError(err)

	staked := testValidatorKey(0x01)
	idle := testValidatorKey(0x02)
	_, err = f.call(owner, contract, nil, "addNodes",
		staked, RegistrationProof(contract, staked),
		idle, RegistrationProof(contract, idle))
	a.NoError(err)
	_, err = f.call(owner, contract, nil, "stakeNodes", staked)
	a.NoError(err)

	_, err = f.call(delegator, contract, types.Coins(1000), "delegate")
	a.NoError(err)
	_, err = f.call(delegator, contract, nil, "unDelegate", types.Coins(500).Bytes())
	a.NoError(err)

	f.epoch++
	f.engine.OnEpochStart(f.epoch)

	out, err := f.engine.Query(contract, "getTotalActiveStake", nil)
	a.NoError(err)
	a.Equal(types.Coins(3000), new(big.Int).SetBytes(out[0]))

	out, err = f.engine.Query(contract, "getServiceFee", nil)
	a.NoError(err)
	a.Equal(uint64(1000), binary.BigEndian.Uint64(out[0]))

	out, err = f.engine.Query(contract, "getNumNodes", nil)
	a.NoError(err)
	a.Equal(int64(2), new(big.Int).SetBytes(out[0]).Int64())

	out, err = f.engine.Query(contract, "getAllNodeStates", nil)
	a.NoError(err)
	a.Equal([][]byte{
		staked, []byte(StatusStaked),
		idle, []byte(StatusNotStaked),
	}, out)

	out, err = f.engine.Query(contract, "getBLSKeyStatus", [][]byte{staked})
	a.NoError(err)
	a.Equal(string(StatusStaked), string(out[0]))

	unknown := testValidatorKey(0x03)
	_, err = f.engine.Query(contract, "getBLSKeyStatus", [][]byte{unknown})
	a.EqualError(err, ErrKeyNotRegistered.Format(shortKey(hex.EncodeToString(unknown))).Error())

	out, err = f.engine.Query(contract, "getUserActiveStake", [][]byte{delegator.Bytes()})
	a.NoError(err)
	a.Equal(types.Coins(500), new(big.Int).SetBytes(out[0]))

	out, err = f.engine.Query(contract, "getUserUnStakedValue", [][]byte{delegator.Bytes()})
	a.NoError(err)
	a.Equal(types.Coins(500), new(big.Int).SetBytes(out[0]))

	// 1000 per staked node: 100 fee, 900 split over 3000 active stake
	out, err = f.engine.Query(contract, "getClaimableRewards", [][]byte{delegator.Bytes()})
	a.NoError(err)
	a.Equal(int64(150), new(big.Int).SetBytes(out[0]).Int64())

	out, err = f.engine.Query(contract, "getClaimableRewards", [][]byte{owner.Bytes()})
	a.NoError(err)
	a.Equal(int64(850), new(big.Int).SetBytes(out[0]).Int64())

	out, err = f.engine.Query(contract, "getTotalCumulatedRewards", nil)
	a.NoError(err)
	a.Equal(int64(1000), new(big.Int).SetBytes(out[0]).Int64())

	stranger := testAddress(0xc3)
	_, err = f.engine.Query(contract, "getUserActiveStake", [][]byte{stranger.Bytes()})
	a.Equal(ErrUnknownDelegator, err)

	_, err = f.engine.Query(contract, "getOwner", nil)
	a.EqualError(err, ErrUnknownFunction.Format("getOwner").Error())
}

func TestQueryUnknownContract(t *testing.T) {
	a := assert.New(t)
	f := newEngineFixture()

	_, err := f.engine.Query(testAddress(0x77), "getTotalActiveStake", nil)
	a.Equal(ErrUnknownContract, err)
}
