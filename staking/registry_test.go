package staking

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryRegisterAndTransitions(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry()
	contract := testAddress(0xa1)
	keyHex := hex.EncodeToString(testValidatorKey(0x01))

	_, err := r.StatusOf(keyHex)
	a.Error(err)

	a.NoError(r.Register(contract, keyHex))
	err = r.Register(testAddress(0xb2), keyHex)
	a.Error(err)
	a.Contains(err.Error(), "already registered")

	status, err := r.StatusOf(keyHex)
	a.NoError(err)
	a.Equal(StatusNotStaked, status)
	a.Zero(r.NumStaked())

	r.markStaked(keyHex)
	status, _ = r.StatusOf(keyHex)
	a.Equal(StatusStaked, status)
	a.Equal(1, r.NumStaked())

	r.markUnStaked(keyHex, 7)
	status, _ = r.StatusOf(keyHex)
	a.Equal(StatusUnStaked, status)
	a.Zero(r.NumStaked())
	rec, ok := r.record(keyHex)
	a.True(ok)
	a.Equal(uint32(7), rec.UnStakeEpoch)

	r.markNotStaked(keyHex)
	status, _ = r.StatusOf(keyHex)
	a.Equal(StatusNotStaked, status)
	a.Zero(rec.UnStakeEpoch)

	r.Remove(keyHex)
	_, err = r.StatusOf(keyHex)
	a.Error(err)

	// a removed key may register again, under any contract
	a.NoError(r.Register(testAddress(0xb2), keyHex))
}

func TestRegistryHostedKeys(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry()
	first := hex.EncodeToString(testValidatorKey(0x01))
	second := hex.EncodeToString(testValidatorKey(0x02))

	a.False(r.IsHosted(first))
	r.Host([]string{first, second})
	a.True(r.IsHosted(first))
	a.True(r.IsHosted(second))
	a.False(r.IsHosted(hex.EncodeToString(testValidatorKey(0x03))))
}

func TestRegistryStatistics(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry()
	contract := testAddress(0xa1)
	first := hex.EncodeToString(testValidatorKey(0x01))
	second := hex.EncodeToString(testValidatorKey(0x02))

	a.NoError(r.Register(contract, first))
	a.NoError(r.Register(contract, second))
	r.markStaked(first)

	stats := r.Statistics()
	a.Len(stats, 2)
	a.Equal(string(StatusStaked), stats[first])
	a.Equal(string(StatusNotStaked), stats[second])

	// hosted keys show up too, the contract status wins for registered ones
	third := hex.EncodeToString(testValidatorKey(0x03))
	r.Host([]string{first, third})
	stats = r.Statistics()
	a.Len(stats, 3)
	a.Equal(string(StatusStaked), stats[first])
	a.Equal(string(StatusNotStaked), stats[third])
}

func TestShortKey(t *testing.T) {
	a := assert.New(t)
	long := strings.Repeat("ab", ValidatorPubKeyLength)
	a.Equal(long[:16]+"...", shortKey(long))
	a.Equal("abcd", shortKey("abcd"))
}
