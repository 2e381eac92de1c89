package staking

import (
	"encoding/binary"
	"encoding/hex"
	"math/big"

	"github.com/corvuschain/corvus-sim-go/common/types"
)

// Query serves the read-only views of the delegation manager and its
// contracts. Views never charge gas and never mutate state.
func (e *Engine) Query(target types.Address, function string, args [][]byte) ([][]byte, error) {
	if target == DelegationManagerAddress {
		return e.queryManager(function)
	}
	contract, ok := e.contracts[target]
	if !ok {
		return nil, ErrUnknownContract
	}
	return e.queryContract(contract, function, args)
}

func (e *Engine) queryManager(function string) ([][]byte, error) {
	switch function {
	case "getAllContractAddresses":
		out := make([][]byte, 0, len(e.contractList))
		for _, addr := range e.contractList {
			out = append(out, addr.Bytes())
		}
		return out, nil
	default:
		return nil, ErrUnknownFunction.Format(function)
	}
}

func (e *Engine) queryContract(c *DelegationContract, function string, args [][]byte) ([][]byte, error) {
	switch function {
	case "getTotalActiveStake":
		return [][]byte{c.TotalActiveStake.Bytes()}, nil

	case "getTotalCumulatedRewards":
		return [][]byte{c.TotalCumulatedRewards.Bytes()}, nil

	case "getServiceFee":
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], c.ServiceFee)
		return [][]byte{buf[:]}, nil

	case "getNumNodes":
		return [][]byte{big.NewInt(int64(len(c.Nodes))).Bytes()}, nil

	case "getAllNodeStates":
		out := make([][]byte, 0, 2*len(c.Nodes))
		for _, keyHex := range c.Nodes {
			status, err := e.registry.StatusOf(keyHex)
			if err != nil {
				return nil, err
			}
			raw, _ := hex.DecodeString(keyHex)
			out = append(out, raw, []byte(status))
		}
		return out, nil

	case "getBLSKeyStatus":
		if len(args) != 1 || len(args[0]) != ValidatorPubKeyLength {
			return nil, ErrInvalidArguments.Format(function)
		}
		keyHex := hex.EncodeToString(args[0])
		if !c.hasNode(keyHex) {
			return nil, ErrKeyNotRegistered.Format(shortKey(keyHex))
		}
		status, err := e.registry.StatusOf(keyHex)
		if err != nil {
			return nil, err
		}
		return [][]byte{[]byte(status)}, nil

	case "getUserActiveStake":
		d, err := viewDelegator(c, args, function)
		if err != nil {
			return nil, err
		}
		return [][]byte{d.ActiveStake.Bytes()}, nil

	case "getUserUnStakedValue":
		d, err := viewDelegator(c, args, function)
		if err != nil {
			return nil, err
		}
		total := new(big.Int)
		for _, entry := range d.UnStaked {
			total.Add(total, entry.Amount)
		}
		return [][]byte{total.Bytes()}, nil

	case "getClaimableRewards":
		d, err := viewDelegator(c, args, function)
		if err != nil {
			return nil, err
		}
		return [][]byte{d.Claimable.Bytes()}, nil

	default:
		return nil, ErrUnknownFunction.Format(function)
	}
}

func viewDelegator(c *DelegationContract, args [][]byte, function string) (*Delegator, error) {
	if len(args) != 1 {
		return nil, ErrInvalidArguments.Format(function)
	}
	addr, err := types.AddressFromBytes(args[0])
	if err != nil {
		return nil, ErrInvalidArguments.Format(function)
	}
	d, ok := c.Delegators[addr]
	if !ok {
		return nil, ErrUnknownDelegator
	}
	return d, nil
}
