package types

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/pkg/errors"
)

const (
	// AddressLength is the byte length of a Corvus account address.
	// An address is the raw ed25519 public key of the account.
	AddressLength = 32

	// AddressHRP is the bech32 human readable part of encoded addresses.
	AddressHRP = "corv"

	// system addresses reserve this many leading zero bytes
	systemAddressPrefixLen = 16
)

type Address [AddressLength]byte

func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, errors.Errorf("invalid address length %d", len(b))
	}
	copy(a[:], b)
	return a, nil
}

func AddressFromHex(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, errors.Wrap(err, "invalid hex address")
	}
	return AddressFromBytes(b)
}

func AddressFromBech32(s string) (Address, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return Address{}, errors.Wrap(err, "invalid bech32 address")
	}
	if hrp != AddressHRP {
		return Address{}, errors.Errorf("invalid address prefix %q", hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, errors.Wrap(err, "invalid bech32 payload")
	}
	return AddressFromBytes(raw)
}

// NewSystemAddress builds the reserved address of a protocol-owned contract.
// System addresses start with 16 zero bytes followed by an ascii tag.
func NewSystemAddress(tag string) Address {
	var a Address
	copy(a[systemAddressPrefixLen:], tag)
	return a
}

func (a Address) IsSystem() bool {
	var zero [systemAddressPrefixLen]byte
	return bytes.Equal(a[:systemAddressPrefixLen], zero[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// String renders the bech32 form, corv1...
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return ""
	}
	enc, err := bech32.Encode(AddressHRP, conv)
	if err != nil {
		return ""
	}
	return enc
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	dec, err := AddressFromHex(string(text))
	if err != nil {
		return err
	}
	*a = dec
	return nil
}
