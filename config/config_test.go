package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvuschain/corvus-sim-go/node"
)

func TestWriteNodeConfigFileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultNodeConfig
	cfg.DataDir = dir
	cfg.Simulator.RoundsPerEpoch = 7
	cfg.Simulator.BypassTxSignatureCheck = true
	cfg.Chain.RewardsPerEpochPerNode = "1000000000000000000"
	cfg.Chain.InitialBalances = map[string]string{
		"corv1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq6gq4hu": "2500000000000000000000",
	}

	err := WriteNodeConfigFile(dir, ConfigFileName, cfg, 0600)
	require.NoError(t, err)

	data, err := ioutil.ReadFile(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)

	var loaded node.Config
	require.NoError(t, toml.Unmarshal(data, &loaded))

	assert.Equal(t, cfg.DataDir, loaded.DataDir)
	assert.Equal(t, cfg.ChainId, loaded.ChainId)
	assert.Equal(t, cfg.Simulator.ServerPort, loaded.Simulator.ServerPort)
	assert.Equal(t, uint32(7), loaded.Simulator.RoundsPerEpoch)
	assert.True(t, loaded.Simulator.BypassTxSignatureCheck)
	assert.Equal(t, cfg.Chain.MinGasPrice, loaded.Chain.MinGasPrice)
	assert.Equal(t, cfg.Chain.DelegationEnableEpoch, loaded.Chain.DelegationEnableEpoch)
	assert.Equal(t, "1000000000000000000", loaded.Chain.RewardsPerEpochPerNode)
	assert.Equal(t, cfg.Chain.InitialBalances, loaded.Chain.InitialBalances)
	assert.Equal(t, cfg.Logs.Level, loaded.Logs.Level)
	assert.Equal(t, cfg.Database.Dir, loaded.Database.Dir)
}

func TestDefaultNodeConfig(t *testing.T) {
	cfg := DefaultNodeConfig
	assert.Equal(t, DefaultNodeName, cfg.Name)
	assert.NotZero(t, cfg.Simulator.RoundsPerEpoch)
	assert.NotZero(t, cfg.Chain.MinGasPrice)
	assert.NotEmpty(t, cfg.ChainId)
}
