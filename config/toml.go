package config

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"text/template"

	"github.com/corvuschain/corvus-sim-go/node"
)

var configTemplate *template.Template

const DefaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

DataDir = "{{ .DataDir }}"
ChainId = "{{ .ChainId }}"

[simulator]

ServerPort = {{ .Simulator.ServerPort }}
RoundsPerEpoch = {{ .Simulator.RoundsPerEpoch }}
BlockTimeInMillis = {{ .Simulator.BlockTimeInMillis }}
InitialRound = {{ .Simulator.InitialRound }}
InitialNonce = {{ .Simulator.InitialNonce }}
InitialEpoch = {{ .Simulator.InitialEpoch }}
MaxTxsPerBlock = {{ .Simulator.MaxTxsPerBlock }}
BypassTxSignatureCheck = {{ .Simulator.BypassTxSignatureCheck }}

[chain]

MinGasPrice = {{ .Chain.MinGasPrice }}
MinGasLimit = {{ .Chain.MinGasLimit }}
GasPerDataByte = {{ .Chain.GasPerDataByte }}
DelegationEnableEpoch = {{ .Chain.DelegationEnableEpoch }}
UnBondPeriodInEpochs = {{ .Chain.UnBondPeriodInEpochs }}
RewardsPerEpochPerNode = "{{ .Chain.RewardsPerEpochPerNode }}"

[chain.InitialBalances]
{{ range $addr, $amount := .Chain.InitialBalances }}{{ $addr }} = "{{ $amount }}"
{{ end }}
[database]

InMemory = {{ .Database.InMemory }}
Dir = "{{ .Database.Dir }}"

[logs]

Level = "{{ .Logs.Level }}"
Dir = "{{ .Logs.Dir }}"
LifeSpanInSeconds = {{ .Logs.LifeSpanInSeconds }}
`

func WriteNodeConfigFile(configDirPath string, configName string, config node.Config, mode os.FileMode) error {
	var buffer bytes.Buffer
	var err error

	if configTemplate, err = template.New("configFileTemplate").Parse(DefaultConfigTemplate); err != nil {
		return err
	}

	if err = configTemplate.Execute(&buffer, config); err != nil {
		return err
	}
	configPath := filepath.Join(configDirPath, configName)
	return ioutil.WriteFile(configPath, buffer.Bytes(), mode)
}
