package chain

import (
	"encoding/hex"
	"io/ioutil"
	"math/big"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvuschain/corvus-sim-go/common/constants"
	"github.com/corvuschain/corvus-sim-go/common/types"
	"github.com/corvuschain/corvus-sim-go/config"
	"github.com/corvuschain/corvus-sim-go/node"
	"github.com/corvuschain/corvus-sim-go/staking"
	"github.com/corvuschain/corvus-sim-go/storage"
)

func newTestController(t *testing.T, mutate func(cfg *node.Config)) *Controller {
	cfg := config.DefaultNodeConfig
	cfg.Simulator.BypassTxSignatureCheck = true
	cfg.Chain.InitialBalances = nil
	if mutate != nil {
		mutate(&cfg)
	}

	ctl, err := NewController(nil)
	require.NoError(t, err)
	ctl.SetDB(storage.NewInMemory())
	log := logrus.New()
	log.SetOutput(ioutil.Discard)
	ctl.SetLogger(log)
	ctl.SetNoticer(EventBus.New())
	require.NoError(t, ctl.Open(&cfg))
	return ctl
}

func newTx(nonce uint64, from, to types.Address, value *big.Int, data []byte) *types.Transaction {
	return &types.Transaction{
		Nonce:    nonce,
		Value:    value,
		Sender:   from,
		Receiver: to,
		GasPrice: constants.MinGasPrice,
		GasLimit: 60000000,
		Data:     data,
		ChainID:  constants.CorvusChainId,
		Version:  1,
	}
}

func chainTestAddress(fill byte) types.Address {
	var raw [types.AddressLength]byte
	for i := range raw {
		raw[i] = fill
	}
	addr, _ := types.AddressFromBytes(raw[:])
	return addr
}

func chainTestKey(fill byte) []byte {
	key := make([]byte, staking.ValidatorPubKeyLength)
	for i := range key {
		key[i] = fill
	}
	return key
}

func TestNetworkStatusProgression(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, nil)

	status := ctl.GetNetworkStatus()
	a.Zero(status.BlockNonce)
	a.Zero(status.Round)
	a.Zero(status.Epoch)
	a.Zero(status.RoundsPassedInEpoch)
	a.Equal(uint32(constants.DefaultRoundsPerEpoch), status.RoundsPerEpoch)

	a.NoError(ctl.GenerateBlocks(5))
	status = ctl.GetNetworkStatus()
	a.Equal(uint64(5), status.BlockNonce)
	a.Equal(uint64(5), status.Round)
	a.Zero(status.Epoch)
	a.Equal(uint32(5), status.RoundsPassedInEpoch)

	a.NoError(ctl.GenerateBlocksUntilEpochReached(1))
	status = ctl.GetNetworkStatus()
	a.Equal(uint32(1), status.Epoch)
	a.Equal(uint64(constants.DefaultRoundsPerEpoch), status.Round)
	a.Zero(status.RoundsPassedInEpoch)
	a.Equal(uint64(constants.DefaultRoundsPerEpoch), status.NonceAtEpochStart)

	// reaching an already reached epoch produces nothing
	a.NoError(ctl.GenerateBlocksUntilEpochReached(1))
	a.Equal(uint64(constants.DefaultRoundsPerEpoch), ctl.GetNetworkStatus().Round)

	a.NoError(ctl.GenerateBlocksUntilEpochReached(4))
	a.Equal(uint32(4), ctl.CurrentEpoch())

	a.Equal(ErrInvalidBlockCount, ctl.GenerateBlocks(0))
}

func TestForceEpochChange(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, nil)

	a.NoError(ctl.ForceEpochChange())
	status := ctl.GetNetworkStatus()
	a.Equal(uint32(1), status.Epoch)
	a.Equal(uint64(1), status.Round)
	a.Equal(uint64(1), status.NonceAtEpochStart)
	a.Zero(status.RoundsPassedInEpoch)
}

func TestGenesisInitialBalances(t *testing.T) {
	a := assert.New(t)
	funded := chainTestAddress(0x11)
	ctl := newTestController(t, func(cfg *node.Config) {
		cfg.Chain.InitialBalances = map[string]string{
			funded.String(): types.Coins(42).String(),
		}
	})

	a.Equal(types.Coins(42), ctl.GetAccount(funded).Balance)
}

func TestPushTransactionValidation(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, nil)
	sender := chainTestAddress(0x11)
	receiver := chainTestAddress(0x22)
	require.NoError(t, ctl.SetBalance(sender, types.Coins(100)))

	_, err := ctl.PushTransaction(nil)
	a.Equal(ErrNilTransaction, err)

	tx := newTx(0, sender, receiver, big.NewInt(-1), nil)
	_, err = ctl.PushTransaction(tx)
	a.Equal(ErrNegativeValue, err)

	tx = newTx(0, sender, receiver, types.Coins(1), nil)
	tx.ChainID = "other-chain"
	_, err = ctl.PushTransaction(tx)
	a.Contains(err.Error(), "invalid chain id")

	tx = newTx(0, sender, receiver, types.Coins(1), nil)
	tx.GasPrice = constants.MinGasPrice - 1
	_, err = ctl.PushTransaction(tx)
	a.Equal(ErrGasPriceTooLow, err)

	tx = newTx(0, sender, receiver, types.Coins(1), nil)
	tx.GasLimit = constants.MinGasLimit - 1
	_, err = ctl.PushTransaction(tx)
	a.Equal(ErrInsufficientGas, err)

	tx = newTx(0, sender, receiver, types.Coins(1000), nil)
	_, err = ctl.PushTransaction(tx)
	a.Equal(ErrInsufficientFunds, err)

	tx = newTx(0, sender, receiver, types.Coins(1), nil)
	_, err = ctl.PushTransaction(tx)
	a.NoError(err)
	_, err = ctl.PushTransaction(tx)
	a.Contains(err.Error(), "already known")
}

func TestSignatureChecks(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, func(cfg *node.Config) {
		cfg.Simulator.BypassTxSignatureCheck = false
	})
	sender := chainTestAddress(0x11)
	require.NoError(t, ctl.SetBalance(sender, types.Coins(100)))

	tx := newTx(0, sender, chainTestAddress(0x22), types.Coins(1), nil)
	_, err := ctl.PushTransaction(tx)
	a.Equal(ErrInvalidSignature, err)

	tx.Signature = make([]byte, 64)
	_, err = ctl.PushTransaction(tx)
	a.Equal(ErrInvalidSignature, err)
}

func TestPlainTransferExecution(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, nil)
	sender := chainTestAddress(0x11)
	receiver := chainTestAddress(0x22)
	require.NoError(t, ctl.SetBalance(sender, types.Coins(10)))

	tx := newTx(0, sender, receiver, types.Coins(1), nil)
	hash, err := ctl.PushTransaction(tx)
	a.NoError(err)

	pending, err := ctl.GetTxResult(hash)
	a.NoError(err)
	a.Equal(types.TxStatusPending, pending.Status)

	res, err := ctl.GenerateBlocksUntilTxProcessed(hash)
	a.NoError(err)
	a.Equal(types.TxStatusSuccess, res.Status)
	a.Equal(uint64(constants.MinGasLimit), res.GasUsed)

	fee := new(big.Int).Mul(
		big.NewInt(constants.MinGasPrice), big.NewInt(constants.MinGasLimit))
	a.Equal(fee, res.Fee)

	wantSender := new(big.Int).Sub(types.Coins(9), fee)
	a.Equal(wantSender, ctl.GetAccount(sender).Balance)
	a.Equal(types.Coins(1), ctl.GetAccount(receiver).Balance)
	a.Equal(uint64(1), ctl.GetAccount(sender).Nonce)

	stored, err := ctl.GetTransaction(hash)
	a.NoError(err)
	a.Equal(tx.Value, stored.Value)

	block, err := ctl.GetBlockByNonce(res.BlockNonce)
	a.NoError(err)
	a.Contains(block.TxHashes, hash)
	byHash, err := ctl.GetBlockByHash(block.Hash)
	a.NoError(err)
	a.Equal(block.Nonce, byHash.Nonce)

	// same tx again is a duplicate, a reused nonce is too low
	_, err = ctl.PushTransaction(tx)
	a.Contains(err.Error(), "already known")
	fresh := newTx(0, sender, receiver, types.Coins(2), nil)
	_, err = ctl.PushTransaction(fresh)
	a.Contains(err.Error(), "nonce too low")
}

func TestFutureNonceGoesInvalid(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, nil)
	sender := chainTestAddress(0x11)
	require.NoError(t, ctl.SetBalance(sender, types.Coins(10)))

	tx := newTx(5, sender, chainTestAddress(0x22), types.Coins(1), nil)
	hash, err := ctl.PushTransaction(tx)
	a.NoError(err)

	res, err := ctl.GenerateBlocksUntilTxProcessed(hash)
	a.NoError(err)
	a.Equal(types.TxStatusInvalid, res.Status)
	a.Equal("invalid transaction nonce", res.ReturnMessage)
	a.Zero(res.GasUsed)
	a.Equal(types.Coins(10), ctl.GetAccount(sender).Balance)
}

func TestGenerateBlocksUntilTxProcessedGivesUp(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, func(cfg *node.Config) {
		cfg.Simulator.MaxTxsPerBlock = 1
	})

	// a hash the pool never saw fails without producing a single block
	var unknown types.Hash
	unknown[0] = 0xde
	_, err := ctl.GenerateBlocksUntilTxProcessed(unknown)
	a.Equal(ErrTxNotFound, err)
	a.Zero(ctl.GetNetworkStatus().BlockNonce)

	sender := chainTestAddress(0x21)
	receiver := chainTestAddress(0x22)
	a.NoError(ctl.SetBalance(sender, types.Coins(9000)))

	var last types.Hash
	for nonce := uint64(0); nonce <= constants.MaxBlocksToGenerateWhenExecutingTx; nonce++ {
		hash, err := ctl.PushTransaction(newTx(nonce, sender, receiver, types.Coins(1), nil))
		require.NoError(t, err)
		last = hash
	}

	// one tx per block, the backlog cannot drain within the block budget
	_, err = ctl.GenerateBlocksUntilTxProcessed(last)
	a.Error(err)
	a.Contains(err.Error(), "not fully executed")
	a.EqualValues(constants.MaxBlocksToGenerateWhenExecutingTx, ctl.GetNetworkStatus().BlockNonce)
}

func TestRejectedDelegationCallBurnsFullGasAndRefundsValue(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, nil)
	wallet := chainTestAddress(0x11)
	require.NoError(t, ctl.SetBalance(wallet, types.Coins(6500)))
	require.NoError(t, ctl.GenerateBlocksUntilEpochReached(constants.DefaultDelegationEnableEpoch))

	data := BuildCallData("createNewDelegationContract",
		AmountArg(types.Coins(4900)), AmountArg(nil))
	tx := newTx(0, wallet, staking.DelegationManagerAddress, types.Coins(1249), data)
	hash, err := ctl.PushTransaction(tx)
	a.NoError(err)

	res, err := ctl.GenerateBlocksUntilTxProcessed(hash)
	a.NoError(err)
	a.Equal(types.TxStatusFail, res.Status)
	a.Contains(res.ReturnMessage, "not enough call value")
	a.Equal(tx.GasLimit, res.GasUsed)

	// the deposit came back, only the fee is gone
	fee := new(big.Int).Mul(
		big.NewInt(constants.MinGasPrice), new(big.Int).SetUint64(tx.GasLimit))
	a.Equal(fee, res.Fee)
	balance := ctl.GetAccount(wallet).Balance
	a.Equal(types.Coins(6500), new(big.Int).Add(balance, fee))

	// the refund shows up as a smart contract result
	a.Len(res.SCResults, 1)
	a.Equal(types.Coins(1249), res.SCResults[0].Value)
	a.Equal(wallet, res.SCResults[0].Receiver)
}

func TestDelegationCallBeforeEnableEpochFails(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, nil)
	wallet := chainTestAddress(0x11)
	require.NoError(t, ctl.SetBalance(wallet, types.Coins(6500)))

	data := BuildCallData("createNewDelegationContract", AmountArg(nil), AmountArg(nil))
	tx := newTx(0, wallet, staking.DelegationManagerAddress, types.Coins(1250), data)
	hash, err := ctl.PushTransaction(tx)
	a.NoError(err)

	res, err := ctl.GenerateBlocksUntilTxProcessed(hash)
	a.NoError(err)
	a.Equal(types.TxStatusFail, res.Status)
	a.Contains(res.ReturnMessage, "not enabled yet")
}

func TestDelegationContractDeployAndStake(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, nil)
	wallet := chainTestAddress(0x11)
	require.NoError(t, ctl.SetBalance(wallet, types.Coins(6500)))
	require.NoError(t, ctl.GenerateBlocksUntilEpochReached(constants.DefaultDelegationEnableEpoch))

	data := BuildCallData("createNewDelegationContract",
		AmountArg(types.Coins(4900)), AmountArg(nil))
	tx := newTx(0, wallet, staking.DelegationManagerAddress, types.Coins(1250), data)
	hash, err := ctl.PushTransaction(tx)
	a.NoError(err)
	res, err := ctl.GenerateBlocksUntilTxProcessed(hash)
	a.NoError(err)
	a.Equal(types.TxStatusSuccess, res.Status)

	// the deploy log names the new contract in its second topic
	require.Len(t, res.Logs, 1)
	a.Equal("SCDeploy", res.Logs[0].Identifier)
	contract, err := types.AddressFromBytes(res.Logs[0].Topics[1])
	require.NoError(t, err)

	out, err := ctl.QueryContract(contract, "getTotalActiveStake", nil)
	a.NoError(err)
	a.Equal(types.Coins(1250), new(big.Int).SetBytes(out[0]))

	// success consumes the operation cost, not the whole limit
	a.Equal(
		intrinsicGas(&ctl.chainCfg, len(data))+operationGasCost("createNewDelegationContract"),
		res.GasUsed)
	a.Less(res.GasUsed, tx.GasLimit)

	key := chainTestKey(0x01)
	addData := BuildCallData("addNodes", key, staking.RegistrationProof(contract, key))
	tx = newTx(1, wallet, contract, nil, addData)
	hash, err = ctl.PushTransaction(tx)
	a.NoError(err)
	res, err = ctl.GenerateBlocksUntilTxProcessed(hash)
	a.NoError(err)
	a.Equal(types.TxStatusSuccess, res.Status)

	// 1250 free funds cannot cover the 2500 per-node stake
	tx = newTx(2, wallet, contract, nil, BuildCallData("stakeNodes", key))
	hash, err = ctl.PushTransaction(tx)
	a.NoError(err)
	res, err = ctl.GenerateBlocksUntilTxProcessed(hash)
	a.NoError(err)
	a.Equal(types.TxStatusFail, res.Status)
	a.Contains(res.ReturnMessage, "not enough funds")

	tx = newTx(3, wallet, contract, types.Coins(1250), BuildCallData("delegate"))
	hash, err = ctl.PushTransaction(tx)
	a.NoError(err)
	res, err = ctl.GenerateBlocksUntilTxProcessed(hash)
	a.NoError(err)
	a.Equal(types.TxStatusSuccess, res.Status)

	tx = newTx(4, wallet, contract, nil, BuildCallData("stakeNodes", key))
	hash, err = ctl.PushTransaction(tx)
	a.NoError(err)
	res, err = ctl.GenerateBlocksUntilTxProcessed(hash)
	a.NoError(err)
	a.Equal(types.TxStatusSuccess, res.Status)

	out, err = ctl.QueryContract(contract, "getBLSKeyStatus", [][]byte{key})
	a.NoError(err)
	a.Equal("staked", string(out[0]))
}

func TestSetStateMultiple(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, nil)
	first := chainTestAddress(0x11)
	second := chainTestAddress(0x22)
	nonce := uint64(7)

	err := ctl.SetStateMultiple([]types.AddressState{
		{Address: first.String(), Balance: types.Coins(5).String()},
		{Address: second.Hex(), Balance: types.Coins(3).String(), Nonce: &nonce},
	})
	a.NoError(err)
	a.Equal(types.Coins(5), ctl.GetAccount(first).Balance)
	a.Equal(types.Coins(3), ctl.GetAccount(second).Balance)
	a.Equal(nonce, ctl.GetAccount(second).Nonce)

	err = ctl.SetStateMultiple([]types.AddressState{{Address: "not-an-address", Balance: "1"}})
	a.Contains(err.Error(), "cannot parse address")

	err = ctl.SetStateMultiple([]types.AddressState{{Address: first.String(), Balance: "12x"}})
	a.Contains(err.Error(), "cannot parse balance")

	err = ctl.SetStateMultiple([]types.AddressState{
		{Address: staking.DelegationManagerAddress.Hex(), Balance: "1"},
	})
	a.Equal(ErrSystemAccount, err)

	a.Equal(ErrSystemAccount, ctl.SetBalance(staking.DelegationManagerAddress, types.Coins(1)))
}

func TestAddValidatorKeysAndStatistics(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, nil)

	a.Error(ctl.AddValidatorKeys([][]byte{make([]byte, 10)}))
	a.NoError(ctl.AddValidatorKeys([][]byte{chainTestKey(0x01), chainTestKey(0x02)}))

	// hosted keys report notStaked until a contract stakes them
	stats := ctl.ValidatorStatistics()
	a.Len(stats, 2)
	a.Equal("notStaked", stats[hex.EncodeToString(chainTestKey(0x01))])
	a.Equal("notStaked", stats[hex.EncodeToString(chainTestKey(0x02))])
}

func TestBlockNotices(t *testing.T) {
	a := assert.New(t)
	ctl := newTestController(t, nil)
	sender := chainTestAddress(0x11)
	require.NoError(t, ctl.SetBalance(sender, types.Coins(10)))

	var blocks []*types.Block
	var applied []*types.TxResult
	bus := EventBus.New()
	require.NoError(t, bus.Subscribe(constants.NoticeBlockApplied, func(b *types.Block) {
		blocks = append(blocks, b)
	}))
	require.NoError(t, bus.Subscribe(constants.NoticeTrxApplied, func(r *types.TxResult) {
		applied = append(applied, r)
	}))
	ctl.SetNoticer(bus)

	tx := newTx(0, sender, chainTestAddress(0x22), types.Coins(1), nil)
	hash, err := ctl.PushTransaction(tx)
	a.NoError(err)
	_, err = ctl.ProduceBlock()
	a.NoError(err)

	require.Len(t, blocks, 1)
	a.Equal(uint64(1), blocks[0].Nonce)
	require.Len(t, applied, 1)
	a.Equal(hash, applied[0].TxHash)
}
