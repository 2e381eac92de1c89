package service_configs

type SimulatorConfig struct {
	ServerPort uint32

	RoundsPerEpoch    uint32
	BlockTimeInMillis uint64

	InitialRound uint64
	InitialNonce uint64
	InitialEpoch uint32

	MaxTxsPerBlock int

	BypassTxSignatureCheck bool
}
