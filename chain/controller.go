package chain

import (
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/asaskevich/EventBus"
	"github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"

	"github.com/corvuschain/corvus-sim-go/common/constants"
	"github.com/corvuschain/corvus-sim-go/common/types"
	"github.com/corvuschain/corvus-sim-go/iservices"
	service_configs "github.com/corvuschain/corvus-sim-go/iservices/service-configs"
	"github.com/corvuschain/corvus-sim-go/node"
	"github.com/corvuschain/corvus-sim-go/staking"
)

const receiptCacheSize = 4096

var (
	blockKeyPrefix     = []byte("blk:")
	blockHashKeyPrefix = []byte("bhash:")
	txKeyPrefix        = []byte("tx:")
	txResultKeyPrefix  = []byte("txr:")
	metaTipKey         = []byte("meta:tip")
)

func blockKey(nonce uint64) []byte {
	key := make([]byte, len(blockKeyPrefix)+8)
	copy(key, blockKeyPrefix)
	binary.BigEndian.PutUint64(key[len(blockKeyPrefix):], nonce)
	return key
}

func hashKey(prefix []byte, hash types.Hash) []byte {
	return append(append([]byte{}, prefix...), hash.Bytes()...)
}

// chainCursor is the persisted tip of the simulated chain.
type chainCursor struct {
	Nonce             uint64     `json:"nonce"`
	Round             uint64     `json:"round"`
	Epoch             uint32     `json:"epoch"`
	EpochStartRound   uint64     `json:"epochStartRound"`
	NonceAtEpochStart uint64     `json:"nonceAtEpochStart"`
	PrevHash          types.Hash `json:"prevHash"`
}

// Controller drives the simulated chain: it admits transactions, produces
// blocks on demand and owns the account state and the staking engine.
type Controller struct {
	ctx     *node.ServiceContext
	log     *logrus.Logger
	db      iservices.IDatabaseService
	noticer EventBus.Bus

	simCfg   service_configs.SimulatorConfig
	chainCfg service_configs.ChainConfig
	chainId  string

	lock   deadlock.Mutex
	state  *State
	pool   *txPool
	engine *staking.Engine

	cursor     chainCursor
	forceEpoch bool

	receipts *lru.Cache
}

// service constructor
func NewController(ctx *node.ServiceContext) (*Controller, error) {
	return &Controller{ctx: ctx}, nil
}

// for tests running the controller outside a service container
func (c *Controller) SetDB(db iservices.IDatabaseService) {
	c.db = db
}

func (c *Controller) SetLogger(log *logrus.Logger) {
	c.log = log
}

func (c *Controller) SetNoticer(bus EventBus.Bus) {
	c.noticer = bus
}

func (c *Controller) Start(node *node.Node) error {
	s, err := c.ctx.Service(iservices.DbServerName)
	if err != nil {
		return err
	}
	c.db = s.(iservices.IDatabaseService)
	c.noticer = node.EvBus
	c.log = node.Log
	return c.Open(c.ctx.Config())
}

func (c *Controller) Stop() error {
	return nil
}

// Open wires the configuration in and either resumes from the stored tip
// or initializes genesis state.
func (c *Controller) Open(cfg *node.Config) error {
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	c.simCfg = cfg.Simulator
	c.chainCfg = cfg.Chain
	c.chainId = cfg.ChainId
	c.state = NewState()
	c.pool = newTxPool()

	rewards := new(big.Int)
	if s := cfg.Chain.RewardsPerEpochPerNode; s != "" {
		parsed, err := types.ParseAmount(s)
		if err != nil {
			return errors.Wrapf(err, "invalid rewards-per-epoch-per-node %q", s)
		}
		rewards = parsed
	}
	c.engine = staking.NewEngine(c.log, c.state, staking.Params{
		EnableEpoch:            cfg.Chain.DelegationEnableEpoch,
		UnBondPeriodInEpochs:   cfg.Chain.UnBondPeriodInEpochs,
		RewardsPerEpochPerNode: rewards,
	})

	cache, err := lru.New(receiptCacheSize)
	if err != nil {
		return err
	}
	c.receipts = cache

	if raw, err := c.db.Get(metaTipKey); err == nil {
		if err := json.Unmarshal(raw, &c.cursor); err != nil {
			return errors.Wrap(err, "corrupted chain tip record")
		}
		c.log.WithFields(logrus.Fields{
			"nonce": c.cursor.Nonce,
			"epoch": c.cursor.Epoch,
		}).Info("resuming from stored tip, account state starts fresh")
	} else {
		c.cursor = chainCursor{
			Nonce:             c.simCfg.InitialNonce,
			Round:             c.simCfg.InitialRound,
			Epoch:             c.simCfg.InitialEpoch,
			EpochStartRound:   c.simCfg.InitialRound,
			NonceAtEpochStart: c.simCfg.InitialNonce,
		}
	}
	return c.initGenesisBalances()
}

func (c *Controller) initGenesisBalances() error {
	for addrStr, balStr := range c.chainCfg.InitialBalances {
		addr, err := parseAddress(addrStr)
		if err != nil {
			return err
		}
		balance, err := types.ParseAmount(balStr)
		if err != nil {
			return ErrInvalidBalance.Format(balStr)
		}
		c.state.SetBalance(addr, balance)
	}
	return nil
}

func parseAddress(s string) (types.Address, error) {
	if addr, err := types.AddressFromBech32(s); err == nil {
		return addr, nil
	}
	if addr, err := types.AddressFromHex(s); err == nil {
		return addr, nil
	}
	return types.Address{}, ErrInvalidAddress.Format(s)
}

func (c *Controller) PushTransaction(tx *types.Transaction) (types.Hash, error) {
	if tx == nil {
		return types.Hash{}, ErrNilTransaction
	}
	value := types.CloneAmount(tx.Value)
	if value.Sign() < 0 {
		return types.Hash{}, ErrNegativeValue
	}
	if tx.ChainID != c.chainId {
		return types.Hash{}, ErrInvalidChainId.Format(tx.ChainID, c.chainId)
	}
	if tx.GasPrice < c.chainCfg.MinGasPrice {
		return types.Hash{}, ErrGasPriceTooLow
	}
	if tx.GasLimit < intrinsicGas(&c.chainCfg, len(tx.Data)) {
		return types.Hash{}, ErrInsufficientGas
	}
	raw := tx.SerializeForSigning()
	if len(raw) > constants.MaxTransactionSize {
		return types.Hash{}, ErrTxTooLarge
	}
	if !c.simCfg.BypassTxSignatureCheck {
		if len(tx.Signature) != ed25519.SignatureSize ||
			!ed25519.Verify(ed25519.PublicKey(tx.Sender.Bytes()), raw, tx.Signature) {
			return types.Hash{}, ErrInvalidSignature
		}
	}
	if accountNonce := c.state.NonceOf(tx.Sender); tx.Nonce < accountNonce {
		return types.Hash{}, ErrNonceTooLow.Format(tx.Nonce, accountNonce)
	}
	maxFee := new(big.Int).Mul(
		new(big.Int).SetUint64(tx.GasPrice), new(big.Int).SetUint64(tx.GasLimit))
	needed := new(big.Int).Add(value, maxFee)
	if c.state.BalanceOf(tx.Sender).Cmp(needed) < 0 {
		return types.Hash{}, ErrInsufficientFunds
	}

	hash := tx.ComputeHash()
	if c.pool.MaybeSeen(hash) {
		if c.pool.Contains(hash) {
			return types.Hash{}, ErrDuplicateTx.Format(hash.Hex())
		}
		if has, _ := c.db.Has(hashKey(txResultKeyPrefix, hash)); has {
			return types.Hash{}, ErrDuplicateTx.Format(hash.Hex())
		}
	}
	if err := c.pool.Add(hash, tx); err != nil {
		return types.Hash{}, err
	}

	c.log.WithFields(logrus.Fields{
		"tx":     hash.Hex(),
		"sender": tx.Sender.String(),
	}).Debug("transaction accepted")
	if c.noticer != nil {
		c.noticer.Publish(constants.NoticeTrxPending, tx)
	}
	return hash, nil
}

func (c *Controller) ProduceBlock() (*types.Block, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.produceBlock()
}

func (c *Controller) produceBlock() (*types.Block, error) {
	newRound := c.cursor.Round + 1
	newNonce := c.cursor.Nonce + 1

	if newRound-c.cursor.EpochStartRound >= uint64(c.simCfg.RoundsPerEpoch) || c.forceEpoch {
		c.cursor.Epoch++
		c.cursor.EpochStartRound = newRound
		c.cursor.NonceAtEpochStart = newNonce
		c.forceEpoch = false
		c.engine.OnEpochStart(c.cursor.Epoch)
		c.log.WithFields(logrus.Fields{
			"epoch": c.cursor.Epoch,
			"round": newRound,
		}).Info("epoch changed")
		if c.noticer != nil {
			c.noticer.Publish(constants.NoticeEpochChanged, c.cursor.Epoch)
		}
	}
	epoch := c.cursor.Epoch

	txs := c.pool.PopMax(c.simCfg.MaxTxsPerBlock)
	results := make([]*types.TxResult, 0, len(txs))
	txHashes := make([]types.Hash, 0, len(txs))
	for _, tx := range txs {
		res := c.executeTransaction(tx, newNonce, epoch)
		results = append(results, res)
		txHashes = append(txHashes, res.TxHash)
	}

	block := &types.Block{
		Nonce:       newNonce,
		Round:       newRound,
		Epoch:       epoch,
		TimestampMs: constants.GenesisTimestampMs + newRound*c.simCfg.BlockTimeInMillis,
		PrevHash:    c.cursor.PrevHash,
		TxHashes:    txHashes,
	}
	block.Hash = block.ComputeHash()

	c.cursor.Nonce = newNonce
	c.cursor.Round = newRound
	c.cursor.PrevHash = block.Hash

	if err := c.persistBlock(block, txs, results); err != nil {
		return nil, err
	}
	for _, res := range results {
		c.receipts.Add(res.TxHash, res)
		if c.noticer != nil {
			c.noticer.Publish(constants.NoticeTrxApplied, res)
		}
	}
	if c.noticer != nil {
		c.noticer.Publish(constants.NoticeBlockApplied, block)
	}
	c.log.WithFields(logrus.Fields{
		"nonce": block.Nonce,
		"round": block.Round,
		"epoch": block.Epoch,
		"txs":   len(txs),
	}).Info("block produced")
	return block, nil
}

func (c *Controller) persistBlock(block *types.Block, txs []*types.Transaction, results []*types.TxResult) error {
	batch := c.db.NewBatch()
	defer c.db.DeleteBatch(batch)

	blockRaw, err := json.Marshal(block)
	if err != nil {
		return err
	}
	if err := batch.Put(blockKey(block.Nonce), blockRaw); err != nil {
		return err
	}
	nonceRaw := make([]byte, 8)
	binary.BigEndian.PutUint64(nonceRaw, block.Nonce)
	if err := batch.Put(hashKey(blockHashKeyPrefix, block.Hash), nonceRaw); err != nil {
		return err
	}
	for i, tx := range txs {
		txRaw, err := json.Marshal(tx)
		if err != nil {
			return err
		}
		if err := batch.Put(hashKey(txKeyPrefix, results[i].TxHash), txRaw); err != nil {
			return err
		}
		resRaw, err := json.Marshal(results[i])
		if err != nil {
			return err
		}
		if err := batch.Put(hashKey(txResultKeyPrefix, results[i].TxHash), resRaw); err != nil {
			return err
		}
	}
	cursorRaw, err := json.Marshal(&c.cursor)
	if err != nil {
		return err
	}
	if err := batch.Put(metaTipKey, cursorRaw); err != nil {
		return err
	}
	return errors.Wrap(batch.Write(), "persist block")
}

func (c *Controller) executeTransaction(tx *types.Transaction, blockNonce uint64, epoch uint32) *types.TxResult {
	res := &types.TxResult{
		TxHash:     tx.ComputeHash(),
		Status:     types.TxStatusSuccess,
		Fee:        new(big.Int),
		BlockNonce: blockNonce,
		Epoch:      epoch,
	}
	value := types.CloneAmount(tx.Value)
	gasPrice := new(big.Int).SetUint64(tx.GasPrice)

	if accountNonce := c.state.NonceOf(tx.Sender); tx.Nonce != accountNonce {
		res.Status = types.TxStatusInvalid
		res.ReturnMessage = "invalid transaction nonce"
		return res
	}
	maxFee := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(tx.GasLimit))
	needed := new(big.Int).Add(value, maxFee)
	if c.state.BalanceOf(tx.Sender).Cmp(needed) < 0 {
		res.Status = types.TxStatusInvalid
		res.ReturnMessage = "insufficient balance"
		return res
	}

	c.state.SetNonce(tx.Sender, tx.Nonce+1)
	if err := c.state.SubBalance(tx.Sender, maxFee); err != nil {
		res.Status = types.TxStatusInvalid
		res.ReturnMessage = err.Error()
		return res
	}
	if value.Sign() > 0 {
		// balance was checked above, the transfer cannot fail
		_ = c.state.Transfer(tx.Sender, tx.Receiver, value)
	}

	gasUsed := intrinsicGas(&c.chainCfg, len(tx.Data))
	isSystemCall := tx.Receiver == staking.DelegationManagerAddress || c.engine.IsDelegationContract(tx.Receiver)
	if isSystemCall {
		gasUsed = c.executeSystemCall(tx, value, epoch, res, gasUsed)
	}

	if unused := tx.GasLimit - gasUsed; unused > 0 {
		refund := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(unused))
		c.state.AddBalance(tx.Sender, refund)
	}
	res.GasUsed = gasUsed
	res.Fee.Mul(gasPrice, new(big.Int).SetUint64(gasUsed))
	return res
}

// executeSystemCall runs a delegation call and returns the gas consumed.
// Rejected calls burn the whole gas limit and hand the value back.
func (c *Controller) executeSystemCall(tx *types.Transaction, value *big.Int, epoch uint32, res *types.TxResult, intrinsic uint64) uint64 {
	refundValue := func(message string) {
		res.Status = types.TxStatusFail
		res.ReturnMessage = message
		if value.Sign() > 0 {
			_ = c.state.Transfer(tx.Receiver, tx.Sender, value)
			res.SCResults = append(res.SCResults, types.SmartContractResult{
				Sender:   tx.Receiver,
				Receiver: tx.Sender,
				Value:    types.CloneAmount(value),
			})
		}
	}

	if len(tx.Data) == 0 {
		refundValue(ErrInvalidCallData.Error())
		return tx.GasLimit
	}
	function, args, err := ParseCallData(tx.Data)
	if err != nil {
		refundValue(err.Error())
		return tx.GasLimit
	}
	required := intrinsic + operationGasCost(function)
	if tx.GasLimit < required {
		refundValue(ErrInsufficientGas.Error())
		return tx.GasLimit
	}

	out, err := c.engine.Execute(&staking.Call{
		Caller:      tx.Sender,
		Recipient:   tx.Receiver,
		Value:       value,
		Function:    function,
		Args:        args,
		Epoch:       epoch,
		CallerNonce: tx.Nonce,
	})
	if err != nil {
		refundValue(err.Error())
		return tx.GasLimit
	}

	res.Logs = out.Logs
	res.SCResults = append(res.SCResults, types.SmartContractResult{
		Sender:   tx.Receiver,
		Receiver: tx.Sender,
		Value:    new(big.Int),
		Data:     callResultData(out.ReturnData),
	})
	return required
}

// callResultData renders the "@6f6b@arg..." success payload of a system
// call result.
func callResultData(returnData [][]byte) []byte {
	parts := []string{"", "6f6b"}
	for _, rd := range returnData {
		parts = append(parts, hex.EncodeToString(rd))
	}
	return []byte(strings.Join(parts, callDataSeparator))
}

func (c *Controller) GenerateBlocks(numOfBlocks int) error {
	if numOfBlocks <= 0 {
		return ErrInvalidBlockCount
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	for i := 0; i < numOfBlocks; i++ {
		if _, err := c.produceBlock(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) GenerateBlocksUntilEpochReached(targetEpoch uint32) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.cursor.Epoch >= targetEpoch {
		return nil
	}
	maxBlocks := uint64(targetEpoch-c.cursor.Epoch+1)*uint64(c.simCfg.RoundsPerEpoch) + 1
	for i := uint64(0); i < maxBlocks; i++ {
		if _, err := c.produceBlock(); err != nil {
			return err
		}
		if c.cursor.Epoch >= targetEpoch {
			return nil
		}
	}
	return ErrEpochNotReached.Format(targetEpoch)
}

func (c *Controller) GenerateBlocksUntilTxProcessed(hash types.Hash) (*types.TxResult, error) {
	if res, err := c.GetTxResult(hash); err == nil && res.Status.IsExecuted() {
		return res, nil
	}
	if !c.pool.Contains(hash) {
		return nil, ErrTxNotFound
	}
	for i := 0; i < constants.MaxBlocksToGenerateWhenExecutingTx; i++ {
		if res, err := c.GetTxResult(hash); err == nil && res.Status.IsExecuted() {
			return res, nil
		}
		if _, err := c.ProduceBlock(); err != nil {
			return nil, err
		}
	}
	if res, err := c.GetTxResult(hash); err == nil && res.Status.IsExecuted() {
		return res, nil
	}
	return nil, ErrTxNotProcessed.Format(hash.Hex(), constants.MaxBlocksToGenerateWhenExecutingTx)
}

func (c *Controller) ForceEpochChange() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.forceEpoch = true
	_, err := c.produceBlock()
	return err
}

func (c *Controller) GetAccount(addr types.Address) *types.AccountInfo {
	return c.state.Account(addr)
}

func (c *Controller) SetBalance(addr types.Address, balance *big.Int) error {
	if addr.IsSystem() {
		return ErrSystemAccount
	}
	c.state.SetBalance(addr, balance)
	return nil
}

func (c *Controller) SetNonce(addr types.Address, nonce uint64) error {
	if addr.IsSystem() {
		return ErrSystemAccount
	}
	c.state.SetNonce(addr, nonce)
	return nil
}

func (c *Controller) SetStateMultiple(states []types.AddressState) error {
	for _, st := range states {
		addr, err := parseAddress(st.Address)
		if err != nil {
			return err
		}
		if addr.IsSystem() {
			return ErrSystemAccount
		}
		if st.Balance != "" {
			balance, err := types.ParseAmount(st.Balance)
			if err != nil {
				return ErrInvalidBalance.Format(st.Balance)
			}
			c.state.SetBalance(addr, balance)
		}
		if st.Nonce != nil {
			c.state.SetNonce(addr, *st.Nonce)
		}
	}
	return nil
}

func (c *Controller) GetTransaction(hash types.Hash) (*types.Transaction, error) {
	if raw, err := c.db.Get(hashKey(txKeyPrefix, hash)); err == nil {
		tx := new(types.Transaction)
		if err := json.Unmarshal(raw, tx); err != nil {
			return nil, err
		}
		return tx, nil
	}
	if tx, ok := c.pool.Get(hash); ok {
		return tx, nil
	}
	return nil, ErrTxNotFound
}

func (c *Controller) GetTxResult(hash types.Hash) (*types.TxResult, error) {
	if cached, ok := c.receipts.Get(hash); ok {
		return cached.(*types.TxResult), nil
	}
	if raw, err := c.db.Get(hashKey(txResultKeyPrefix, hash)); err == nil {
		res := new(types.TxResult)
		if err := json.Unmarshal(raw, res); err != nil {
			return nil, err
		}
		c.receipts.Add(hash, res)
		return res, nil
	}
	if c.pool.Contains(hash) {
		return &types.TxResult{TxHash: hash, Status: types.TxStatusPending, Fee: new(big.Int)}, nil
	}
	return nil, ErrTxResultNotFound
}

func (c *Controller) GetBlockByNonce(nonce uint64) (*types.Block, error) {
	raw, err := c.db.Get(blockKey(nonce))
	if err != nil {
		return nil, ErrBlockNotFound
	}
	block := new(types.Block)
	if err := json.Unmarshal(raw, block); err != nil {
		return nil, err
	}
	return block, nil
}

func (c *Controller) GetBlockByHash(hash types.Hash) (*types.Block, error) {
	raw, err := c.db.Get(hashKey(blockHashKeyPrefix, hash))
	if err != nil || len(raw) != 8 {
		return nil, ErrBlockNotFound
	}
	return c.GetBlockByNonce(binary.BigEndian.Uint64(raw))
}

func (c *Controller) GetNetworkStatus() types.NetworkStatus {
	c.lock.Lock()
	defer c.lock.Unlock()
	return types.NetworkStatus{
		BlockNonce:          c.cursor.Nonce,
		Round:               c.cursor.Round,
		Epoch:               c.cursor.Epoch,
		RoundsPerEpoch:      c.simCfg.RoundsPerEpoch,
		RoundsPassedInEpoch: uint32(c.cursor.Round - c.cursor.EpochStartRound),
		NonceAtEpochStart:   c.cursor.NonceAtEpochStart,
	}
}

func (c *Controller) CurrentEpoch() uint32 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.cursor.Epoch
}

func (c *Controller) ChainId() string {
	return c.chainId
}

func (c *Controller) AddValidatorKeys(pubKeys [][]byte) error {
	hexKeys := make([]string, 0, len(pubKeys))
	for _, key := range pubKeys {
		if len(key) != staking.ValidatorPubKeyLength {
			return ErrInvalidKeyLength.Format(staking.ValidatorPubKeyLength)
		}
		hexKeys = append(hexKeys, hex.EncodeToString(key))
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.engine.Registry().Host(hexKeys)
	c.log.WithField("keys", len(hexKeys)).Info("validator keys added")
	return nil
}

func (c *Controller) ValidatorStatistics() map[string]string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.engine.Registry().Statistics()
}

func (c *Controller) QueryContract(contract types.Address, function string, args [][]byte) ([][]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.engine.Query(contract, function, args)
}
