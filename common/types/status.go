package types

// TxStatus is the lifecycle state of a submitted transaction.
type TxStatus string

const (
	TxStatusPending TxStatus = "pending"
	TxStatusSuccess TxStatus = "success"
	TxStatusFail    TxStatus = "fail"
	TxStatusInvalid TxStatus = "invalid"
)

func (s TxStatus) String() string {
	return string(s)
}

func (s TxStatus) IsExecuted() bool {
	return s == TxStatusSuccess || s == TxStatusFail || s == TxStatusInvalid
}

// NetworkStatus is a point-in-time snapshot of the simulated network.
type NetworkStatus struct {
	BlockNonce          uint64 `json:"blockNonce"`
	Round               uint64 `json:"round"`
	Epoch               uint32 `json:"epoch"`
	RoundsPerEpoch      uint32 `json:"roundsPerEpoch"`
	RoundsPassedInEpoch uint32 `json:"roundsPassedInEpoch"`
	NonceAtEpochStart   uint64 `json:"nonceAtEpochStart"`
}
