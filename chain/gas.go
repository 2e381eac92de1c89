package chain

import (
	service_configs "github.com/corvuschain/corvus-sim-go/iservices/service-configs"
)

// processing cost of each delegation function, charged on top of the
// intrinsic gas when the call succeeds
var operationGasCosts = map[string]uint64{
	"createNewDelegationContract": 2000000,
	"addNodes":                    1000000,
	"stakeNodes":                  1000000,
	"unStakeNodes":                1000000,
	"unBondNodes":                 1000000,
	"removeNodes":                 1000000,
	"delegate":                    500000,
	"unDelegate":                  500000,
	"withdraw":                    500000,
	"claimRewards":                500000,
	"changeServiceFee":            500000,
}

const defaultOperationGasCost = 500000

func operationGasCost(function string) uint64 {
	if cost, ok := operationGasCosts[function]; ok {
		return cost
	}
	return defaultOperationGasCost
}

// intrinsicGas is the movement cost every transaction pays: the flat
// minimum plus the per-byte price of its data.
func intrinsicGas(cfg *service_configs.ChainConfig, dataLen int) uint64 {
	return cfg.MinGasLimit + uint64(dataLen)*cfg.GasPerDataByte
}
