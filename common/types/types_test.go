package types

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressBech32RoundTrip(t *testing.T) {
	var raw [AddressLength]byte
	for i := range raw {
		raw[i] = byte(i * 7)
	}
	addr, err := AddressFromBytes(raw[:])
	require.NoError(t, err)

	enc := addr.String()
	require.True(t, strings.HasPrefix(enc, AddressHRP+"1"))

	dec, err := AddressFromBech32(enc)
	require.NoError(t, err)
	assert.Equal(t, addr, dec)
}

func TestAddressFromHex(t *testing.T) {
	addr := NewSystemAddress("delegation")
	dec, err := AddressFromHex(addr.Hex())
	require.NoError(t, err)
	assert.Equal(t, addr, dec)

	_, err = AddressFromHex("abcd")
	assert.Error(t, err)
}

func TestSystemAddress(t *testing.T) {
	sys := NewSystemAddress("delegation")
	assert.True(t, sys.IsSystem())

	var raw [AddressLength]byte
	raw[0] = 0xfe
	user, err := AddressFromBytes(raw[:])
	require.NoError(t, err)
	assert.False(t, user.IsSystem())
}

func TestTransactionHashIgnoresSignature(t *testing.T) {
	tx := &Transaction{
		Nonce:    3,
		Value:    big.NewInt(100),
		Sender:   NewSystemAddress("a"),
		Receiver: NewSystemAddress("b"),
		GasPrice: 1000000000,
		GasLimit: 50000,
		ChainID:  "corvus-unittest",
		Version:  1,
	}
	h1 := tx.ComputeHash()
	tx.Signature = []byte{1, 2, 3}
	h2 := tx.ComputeHash()
	assert.Equal(t, h1, h2)

	tx.Nonce++
	assert.NotEqual(t, h1, tx.ComputeHash())
}

func TestAmounts(t *testing.T) {
	one := Coins(1)
	assert.Equal(t, "1000000000000000000", one.String())

	v, err := ParseAmount("1250")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), v.Int64())

	_, err = ParseAmount("not-a-number")
	assert.Error(t, err)
	_, err = ParseAmount("-5")
	assert.Error(t, err)
}
