package simulator

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/corvuschain/corvus-sim-go/common/types"
)

// TxInfo wraps the receipt of an executed transaction with the read helpers
// the test suites lean on.
type TxInfo struct {
	Result *types.TxResult
}

// TxInfo fetches the receipt of an executed transaction. It errors while the
// transaction is still pending or unknown.
func (s *Simulator) TxInfo(hash types.Hash) (*TxInfo, error) {
	result, err := s.Chain().GetTxResult(hash)
	if err != nil {
		return nil, err
	}
	if !result.Status.IsExecuted() {
		return nil, errors.Errorf("transaction %s is not executed yet", hash.Hex())
	}
	return &TxInfo{Result: result}, nil
}

func (i *TxInfo) GasUsed() uint64 {
	return i.Result.GasUsed
}

func (i *TxInfo) Fee() *big.Int {
	return types.CloneAmount(i.Result.Fee)
}

func (i *TxInfo) Status() types.TxStatus {
	return i.Result.Status
}

func (i *TxInfo) Succeeded() bool {
	return i.Result.Status == types.TxStatusSuccess
}

func (i *TxInfo) ReturnMessage() string {
	return i.Result.ReturnMessage
}

func (i *TxInfo) SmartContractResults() []types.SmartContractResult {
	return i.Result.SCResults
}

// DelegationContractAddress digs the deployed contract address out of the
// SCDeploy log of a createNewDelegationContract transaction.
func (i *TxInfo) DelegationContractAddress() (types.Address, error) {
	for _, event := range i.Result.Logs {
		if event.Identifier != "SCDeploy" || len(event.Topics) < 2 {
			continue
		}
		return types.AddressFromBytes(event.Topics[1])
	}
	return types.Address{}, errors.Errorf("transaction %s deployed no contract", i.Result.TxHash.Hex())
}
