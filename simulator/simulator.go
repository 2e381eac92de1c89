package simulator

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/sirupsen/logrus"

	"github.com/corvuschain/corvus-sim-go/chain"
	"github.com/corvuschain/corvus-sim-go/common/types"
	"github.com/corvuschain/corvus-sim-go/config"
	"github.com/corvuschain/corvus-sim-go/iservices"
	"github.com/corvuschain/corvus-sim-go/node"
	"github.com/corvuschain/corvus-sim-go/storage"
	"github.com/corvuschain/corvus-sim-go/wallet"
)

// Simulator is an embedded chain simulator: a service node wired with an
// in-memory database and a chain controller, plus a set of named wallets.
// It backs the staking test suites and the REST facade alike.
type Simulator struct {
	node    *node.Node
	cfg     node.Config
	wallets map[string]*wallet.Wallet
}

func NewSimulator(logger *logrus.Logger) *Simulator {
	return NewSimulatorWith(logger, nil)
}

// NewSimulatorWith builds a simulator over a tweaked default config, for
// suites that need non-default chain parameters such as epoch rewards.
func NewSimulatorWith(logger *logrus.Logger, tweak func(*node.Config)) *Simulator {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(ioutil.Discard)
	}

	cfg := config.DefaultNodeConfig
	cfg.Name = "simnode"
	buf := make([]byte, 8)
	_, _ = rand.Reader.Read(buf)
	cfg.DataDir = filepath.Join(os.TempDir(), hex.EncodeToString(buf))
	cfg.Database.InMemory = true
	if tweak != nil {
		tweak(&cfg)
	}

	n, _ := node.New(&cfg)
	n.Log = logger
	n.EvBus = EventBus.New()

	_ = n.Register(iservices.DbServerName, func(ctx *node.ServiceContext) (node.Service, error) {
		return storage.New(ctx)
	})
	_ = n.Register(iservices.ChainServerName, func(ctx *node.ServiceContext) (node.Service, error) {
		return chain.NewController(ctx)
	})

	return &Simulator{
		node:    n,
		cfg:     cfg,
		wallets: make(map[string]*wallet.Wallet),
	}
}

func (s *Simulator) cleanup() {
	_ = os.RemoveAll(s.cfg.DataDir)
}

func (s *Simulator) Start() (err error) {
	defer func() {
		if err != nil {
			s.cleanup()
		}
	}()
	_ = os.RemoveAll(s.cfg.DataDir)
	_ = os.Mkdir(s.cfg.DataDir, 0777)
	_ = os.Mkdir(filepath.Join(s.cfg.DataDir, s.cfg.Name), 0777)

	return s.node.Start()
}

func (s *Simulator) Stop() error {
	defer s.cleanup()
	return s.node.Stop()
}

func (s *Simulator) Database() iservices.IDatabaseService {
	if svc, err := s.node.Service(iservices.DbServerName); err != nil {
		return nil
	} else {
		return svc.(iservices.IDatabaseService)
	}
}

func (s *Simulator) Chain() iservices.IChainService {
	if svc, err := s.node.Service(iservices.ChainServerName); err != nil {
		return nil
	} else {
		return svc.(iservices.IChainService)
	}
}

func (s *Simulator) PutWallet(name string, w *wallet.Wallet) {
	s.wallets[name] = w
}

func (s *Simulator) Wallet(name string) *wallet.Wallet {
	return s.wallets[name]
}

// CreateAndFund registers n fresh wallets named prefix0..prefix(n-1), each
// credited with the given balance.
func (s *Simulator) CreateAndFund(prefix string, n int, balance *big.Int) error {
	for i := 0; i < n; i++ {
		w, err := wallet.NewRandom()
		if err != nil {
			return err
		}
		if err := s.Chain().SetBalance(w.Address(), balance); err != nil {
			return err
		}
		s.PutWallet(fmt.Sprintf("%s%d", prefix, i), w)
	}
	return nil
}

// SendTransaction fills in the nonce and the chain id, signs with the given
// wallet and pushes the transaction to the pending pool.
func (s *Simulator) SendTransaction(w *wallet.Wallet, receiver types.Address, value *big.Int, gasLimit uint64, data []byte) (types.Hash, error) {
	ch := s.Chain()
	account := ch.GetAccount(w.Address())
	tx := &types.Transaction{
		Nonce:    account.Nonce,
		Value:    types.CloneAmount(value),
		Sender:   w.Address(),
		Receiver: receiver,
		GasPrice: s.cfg.Chain.MinGasPrice,
		GasLimit: gasLimit,
		Data:     data,
		ChainID:  ch.ChainId(),
		Version:  1,
	}
	if err := w.Sign(tx); err != nil {
		return types.Hash{}, err
	}
	return ch.PushTransaction(tx)
}

// RunTransaction sends the transaction and produces blocks until it has been
// executed, returning its receipt.
func (s *Simulator) RunTransaction(w *wallet.Wallet, receiver types.Address, value *big.Int, gasLimit uint64, data []byte) (*types.TxResult, error) {
	hash, err := s.SendTransaction(w, receiver, value, gasLimit, data)
	if err != nil {
		return nil, err
	}
	return s.Chain().GenerateBlocksUntilTxProcessed(hash)
}

func (s *Simulator) SetBalance(addr types.Address, balance *big.Int) error {
	return s.Chain().SetBalance(addr, balance)
}

func (s *Simulator) Balance(addr types.Address) *big.Int {
	return s.Chain().GetAccount(addr).Balance
}

func (s *Simulator) GenerateBlocks(numOfBlocks int) error {
	return s.Chain().GenerateBlocks(numOfBlocks)
}

func (s *Simulator) GenerateBlocksUntilEpochReached(targetEpoch uint32) error {
	return s.Chain().GenerateBlocksUntilEpochReached(targetEpoch)
}

func (s *Simulator) GenerateBlocksUntilTxProcessed(hash types.Hash) (*types.TxResult, error) {
	return s.Chain().GenerateBlocksUntilTxProcessed(hash)
}

func (s *Simulator) ForceEpochChange() error {
	return s.Chain().ForceEpochChange()
}

func (s *Simulator) NetworkStatus() types.NetworkStatus {
	return s.Chain().GetNetworkStatus()
}

func (s *Simulator) SetStateMultiple(states []types.AddressState) error {
	return s.Chain().SetStateMultiple(states)
}

// AddValidatorKeys registers validator keys as hosted by the simulated node,
// so their status shows up in ValidatorStatistics.
func (s *Simulator) AddValidatorKeys(keys ...*wallet.ValidatorKey) error {
	pubKeys := make([][]byte, len(keys))
	for i, key := range keys {
		pubKeys[i] = key.PubKey()
	}
	return s.Chain().AddValidatorKeys(pubKeys)
}

func (s *Simulator) ValidatorStatistics() map[string]string {
	return s.Chain().ValidatorStatistics()
}

// ValidatorKeyStatus resolves one key's staking state through the contract's
// getBLSKeyStatus view.
func (s *Simulator) ValidatorKeyStatus(contract types.Address, key *wallet.ValidatorKey) (string, error) {
	out, err := s.Query(contract, "getBLSKeyStatus", [][]byte{key.PubKey()})
	if err != nil {
		return "", err
	}
	return string(out[0]), nil
}

func (s *Simulator) Query(contract types.Address, function string, args [][]byte) ([][]byte, error) {
	return s.Chain().QueryContract(contract, function, args)
}

type SimTestFunc func(*testing.T, *Simulator)

// NewSimTest wraps a test body with a full simulator life cycle and a set of
// funded wallets named actor0, actor1, ...
func NewSimTest(f SimTestFunc, actors int) func(*testing.T) {
	return NewSimTestWith(f, actors, nil)
}

func NewSimTestWith(f SimTestFunc, actors int, tweak func(*node.Config)) func(*testing.T) {
	return func(t *testing.T) {
		s := NewSimulatorWith(nil, tweak)
		if s == nil {
			t.Fatal("simulator creation failed")
		}
		err := s.Start()
		if err != nil {
			t.Fatalf("simulator start failed: %s", err.Error())
		}
		err = s.CreateAndFund("actor", actors, types.Coins(10000))
		if err != nil {
			t.Fatalf("simulator createAndFund failed: %s", err.Error())
		}
		defer func() {
			_ = s.Stop()
		}()
		f(t, s)
	}
}

func (s *Simulator) Test(f SimTestFunc) func(*testing.T) {
	return func(t *testing.T) {
		f(t, s)
	}
}

func (s *Simulator) Account(name string) *SimAccount {
	return NewSimAccount(name, s)
}
