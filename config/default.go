package config

import (
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/corvuschain/corvus-sim-go/common/constants"
	service_configs "github.com/corvuschain/corvus-sim-go/iservices/service-configs"
	"github.com/corvuschain/corvus-sim-go/node"
)

const (
	DefaultServerPort = 8085
	DefaultNodeName   = "corvussim"
	ConfigFileName    = "config.toml"
)

// DefaultNodeConfig contains reasonable default settings.
var DefaultNodeConfig = node.Config{
	Name:    DefaultNodeName,
	DataDir: DefaultDataDir(),
	ChainId: constants.CorvusChainId,
	Simulator: service_configs.SimulatorConfig{
		ServerPort:             DefaultServerPort,
		RoundsPerEpoch:         constants.DefaultRoundsPerEpoch,
		BlockTimeInMillis:      constants.DefaultBlockTimeInMillis,
		InitialRound:           0,
		InitialNonce:           0,
		InitialEpoch:           0,
		MaxTxsPerBlock:         constants.MaxTxsPerBlock,
		BypassTxSignatureCheck: false,
	},
	Chain: service_configs.ChainConfig{
		MinGasPrice:            constants.MinGasPrice,
		MinGasLimit:            constants.MinGasLimit,
		GasPerDataByte:         constants.GasPerDataByte,
		DelegationEnableEpoch:  constants.DefaultDelegationEnableEpoch,
		UnBondPeriodInEpochs:   constants.DefaultUnBondPeriodInEpochs,
		RewardsPerEpochPerNode: "0",
	},
	Database: service_configs.DatabaseConfig{
		InMemory: false,
		Dir:      "chaindata",
	},
	Logs: service_configs.LogConfig{
		Level:             "info",
		Dir:               "logs",
		LifeSpanInSeconds: 7 * 24 * 3600,
	},
}

func DefaultDataDir() string {
	home, err := homedir.Dir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".corvuschain")
}
