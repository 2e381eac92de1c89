package chain

import (
	"encoding/hex"
	"math/big"
	"strings"
)

const callDataSeparator = "@"

// BuildCallData renders a system-contract call in its wire form:
// the function name followed by hex-encoded arguments, "@" separated.
func BuildCallData(function string, args ...[]byte) []byte {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, function)
	for _, arg := range args {
		parts = append(parts, hex.EncodeToString(arg))
	}
	return []byte(strings.Join(parts, callDataSeparator))
}

// ParseCallData splits transaction data into the function name and its raw
// arguments. An empty argument decodes to an empty byte slice, which big
// integer consumers read as zero.
func ParseCallData(data []byte) (string, [][]byte, error) {
	parts := strings.Split(string(data), callDataSeparator)
	if parts[0] == "" {
		return "", nil, ErrInvalidCallData
	}
	args := make([][]byte, 0, len(parts)-1)
	for _, part := range parts[1:] {
		arg, err := hex.DecodeString(part)
		if err != nil {
			return "", nil, ErrInvalidCallData
		}
		args = append(args, arg)
	}
	return parts[0], args, nil
}

// AmountArg encodes a big integer argument. Zero encodes as a single zero
// byte so it stays visible on the wire as "00".
func AmountArg(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return []byte{0}
	}
	return v.Bytes()
}
