package types

import "math/big"

// LogEvent is a log entry emitted by a system contract while executing a
// transaction. Topics carry raw bytes, hex-encoded on the wire.
type LogEvent struct {
	Address    Address  `json:"address"`
	Identifier string   `json:"identifier"`
	Topics     [][]byte `json:"topics"`
}

// SmartContractResult is a follow-up transfer generated during execution,
// e.g. a value refund of a failed call.
type SmartContractResult struct {
	Sender   Address  `json:"sender"`
	Receiver Address  `json:"receiver"`
	Value    *big.Int `json:"value"`
	Data     string   `json:"data"`
}
