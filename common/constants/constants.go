package constants

const (
	CorvusChainName = "corvus"
	CorvusChainId   = "corvus-simulator"

	CoinSymbol   = "CORV"
	CoinDecimals = 18

	// whole-CORV protocol parameters, converted to base units where used
	MinDelegationDepositCORV = 1250
	NodeStakeCORV            = 2500
	MinDelegationCORV        = 1

	// service fee is expressed in basis points of PERCENT
	PERCENT       = 10000
	MaxServiceFee = PERCENT

	NoticeTrxPending   = "trxpending"
	NoticeTrxApplied   = "trxapplyresult"
	NoticeBlockApplied = "blockapply"
	NoticeEpochChanged = "epochchange"

	MinGasPrice    = 1000000000
	MinGasLimit    = 50000
	GasPerDataByte = 1500

	MaxTransactionSize = 1024 * 256

	MaxTxsPerBlock = 3000

	// virtual clock origin, block timestamps step from here
	GenesisTimestampMs = 1596117600000

	// bound for generate-blocks-until-transaction-processed
	MaxBlocksToGenerateWhenExecutingTx = 20

	// delegation manager calls are rejected before this epoch unless overridden
	DefaultDelegationEnableEpoch = 4

	DefaultUnBondPeriodInEpochs = 1

	DefaultRoundsPerEpoch    = 20
	DefaultBlockTimeInMillis = 6000
)
