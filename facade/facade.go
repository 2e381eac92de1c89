package facade

import (
	"encoding/hex"
	"encoding/json"
	"math/big"

	"github.com/coocood/freecache"
	"github.com/sirupsen/logrus"

	"github.com/corvuschain/corvus-sim-go/common/types"
	"github.com/corvuschain/corvus-sim-go/iservices"
	"github.com/corvuschain/corvus-sim-go/node"
)

const (
	statsCacheSize       = 256 * 1024
	statsCacheTTLSeconds = 2
)

var statsCacheKey = []byte("validatorstatistics")

// SimulatorFacade validates REST-shaped inputs and forwards them to the
// chain service. Handlers never touch the service directly.
type SimulatorFacade struct {
	chain iservices.IChainService
	cfg   *node.Config
	log   *logrus.Logger
	stats *freecache.Cache
}

func NewSimulatorFacade(chain iservices.IChainService, cfg *node.Config, log *logrus.Logger) (*SimulatorFacade, error) {
	if chain == nil {
		return nil, ErrNilChainService
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SimulatorFacade{
		chain: chain,
		cfg:   cfg,
		log:   log,
		stats: freecache.NewCache(statsCacheSize),
	}, nil
}

func (f *SimulatorFacade) GenerateBlocks(numOfBlocks int) error {
	if numOfBlocks <= 0 {
		return ErrInvalidNumOfBlocks.Format(numOfBlocks)
	}
	return f.chain.GenerateBlocks(numOfBlocks)
}

func (f *SimulatorFacade) GenerateBlocksUntilEpochReached(targetEpoch uint32) error {
	return f.chain.GenerateBlocksUntilEpochReached(targetEpoch)
}

func (f *SimulatorFacade) GenerateBlocksUntilTransactionProcessed(hashHex string) (*types.TxResult, error) {
	hash, err := types.HashFromHex(hashHex)
	if err != nil {
		return nil, ErrInvalidTxHash.Format(hashHex)
	}
	return f.chain.GenerateBlocksUntilTxProcessed(hash)
}

func (f *SimulatorFacade) ForceEpochChange() error {
	return f.chain.ForceEpochChange()
}

func (f *SimulatorFacade) SetBalance(address string, balance string) error {
	if _, err := f.parseAddress(address); err != nil {
		return err
	}
	return f.chain.SetStateMultiple([]types.AddressState{{Address: address, Balance: balance}})
}

func (f *SimulatorFacade) SetStateMultiple(states []types.AddressState) error {
	if len(states) == 0 {
		return ErrEmptyStateList
	}
	return f.chain.SetStateMultiple(states)
}

func (f *SimulatorFacade) AddValidatorKeys(hexKeys []string) error {
	if len(hexKeys) == 0 {
		return ErrNoValidatorKeys
	}
	pubKeys := make([][]byte, 0, len(hexKeys))
	for _, s := range hexKeys {
		raw, err := hex.DecodeString(s)
		if err != nil {
			return ErrInvalidValidatorKey.Format(s)
		}
		pubKeys = append(pubKeys, raw)
	}
	return f.chain.AddValidatorKeys(pubKeys)
}

func (f *SimulatorFacade) SendTransaction(tx *types.Transaction) (string, error) {
	if tx == nil {
		return "", ErrNilTransaction
	}
	hash, err := f.chain.PushTransaction(tx)
	if err != nil {
		return "", err
	}
	return hash.Hex(), nil
}

// TransactionOnNetwork pairs a transaction with its execution state.
type TransactionOnNetwork struct {
	Transaction *types.Transaction `json:"transaction"`
	Status      types.TxStatus     `json:"status"`
	Result      *types.TxResult    `json:"result,omitempty"`
}

func (f *SimulatorFacade) GetTransaction(hashHex string, withResults bool) (*TransactionOnNetwork, error) {
	hash, err := types.HashFromHex(hashHex)
	if err != nil {
		return nil, ErrInvalidTxHash.Format(hashHex)
	}
	tx, err := f.chain.GetTransaction(hash)
	if err != nil {
		return nil, err
	}
	out := &TransactionOnNetwork{Transaction: tx, Status: types.TxStatusPending}
	if result, err := f.chain.GetTxResult(hash); err == nil {
		out.Status = result.Status
		if withResults {
			out.Result = result
		}
	}
	return out, nil
}

func (f *SimulatorFacade) GetAccount(address string) (*types.AccountInfo, error) {
	addr, err := f.parseAddress(address)
	if err != nil {
		return nil, err
	}
	return f.chain.GetAccount(addr), nil
}

func (f *SimulatorFacade) GetBalance(address string) (*big.Int, error) {
	account, err := f.GetAccount(address)
	if err != nil {
		return nil, err
	}
	return account.Balance, nil
}

func (f *SimulatorFacade) NetworkStatus() types.NetworkStatus {
	return f.chain.GetNetworkStatus()
}

func (f *SimulatorFacade) NetworkConfig() map[string]interface{} {
	return map[string]interface{}{
		"chainId":               f.chain.ChainId(),
		"minGasPrice":           f.cfg.Chain.MinGasPrice,
		"minGasLimit":           f.cfg.Chain.MinGasLimit,
		"gasPerDataByte":        f.cfg.Chain.GasPerDataByte,
		"roundsPerEpoch":        f.cfg.Simulator.RoundsPerEpoch,
		"roundDuration":         f.cfg.Simulator.BlockTimeInMillis,
		"delegationEnableEpoch": f.cfg.Chain.DelegationEnableEpoch,
		"unBondPeriodInEpochs":  f.cfg.Chain.UnBondPeriodInEpochs,
	}
}

// ValidatorStatistics serves the per-key status map through a short-lived
// cache, the one endpoint monitoring tools poll aggressively.
func (f *SimulatorFacade) ValidatorStatistics() (map[string]string, error) {
	if raw, err := f.stats.Get(statsCacheKey); err == nil {
		var cached map[string]string
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}
	stats := f.chain.ValidatorStatistics()
	if raw, err := json.Marshal(stats); err == nil {
		_ = f.stats.Set(statsCacheKey, raw, statsCacheTTLSeconds)
	}
	return stats, nil
}

// ForceUpdateValidatorStatistics drops the cached statistics response so
// the next read reflects keys added since the last poll.
func (f *SimulatorFacade) ForceUpdateValidatorStatistics() {
	f.stats.Del(statsCacheKey)
}

func (f *SimulatorFacade) parseAddress(s string) (types.Address, error) {
	if addr, err := types.AddressFromBech32(s); err == nil {
		return addr, nil
	}
	if addr, err := types.AddressFromHex(s); err == nil {
		return addr, nil
	}
	return types.Address{}, ErrInvalidAddress.Format(s)
}
