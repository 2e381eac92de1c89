package service_configs

type ChainConfig struct {
	MinGasPrice    uint64
	MinGasLimit    uint64
	GasPerDataByte uint64

	DelegationEnableEpoch uint32
	UnBondPeriodInEpochs  uint32

	// base units per staked node, accrued at every epoch start; "0" disables
	RewardsPerEpochPerNode string

	// bech32 address -> balance in base units, applied at genesis
	InitialBalances map[string]string
}
