package wallet

import (
	"bytes"
	"crypto/ed25519"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tyler-smith/go-bip39"

	"github.com/corvuschain/corvus-sim-go/common/types"
)

func testSeed(fill byte) []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = fill
	}
	return seed
}

func TestWalletFromSeed(t *testing.T) {
	a := assert.New(t)

	w, err := FromSeed(testSeed(0x01))
	a.NoError(err)

	again, err := FromSeed(testSeed(0x01))
	a.NoError(err)
	a.Equal(w.Address(), again.Address())

	other, err := FromSeed(testSeed(0x02))
	a.NoError(err)
	a.NotEqual(w.Address(), other.Address())

	_, err = FromSeed(make([]byte, 16))
	a.Error(err)

	sig := w.SignBytes([]byte("payload"))
	a.True(ed25519.Verify(w.Address().Bytes(), []byte("payload"), sig))
}

func TestNewRandomWalletsDiffer(t *testing.T) {
	a := assert.New(t)

	first, err := NewRandom()
	a.NoError(err)
	second, err := NewRandom()
	a.NoError(err)
	a.NotEqual(first.Address(), second.Address())
}

func TestWalletSignsTransaction(t *testing.T) {
	a := assert.New(t)

	w, err := FromSeed(testSeed(0x01))
	a.NoError(err)

	a.Error(w.Sign(nil))

	tx := &types.Transaction{
		Nonce:    0,
		Value:    types.Coins(1),
		Receiver: types.Address{0x02},
		GasPrice: 1,
		GasLimit: 50000,
		ChainID:  "test-chain",
		Version:  1,
	}
	a.NoError(w.Sign(tx))
	a.Equal(w.Address(), tx.Sender)
	a.True(ed25519.Verify(tx.Sender.Bytes(), tx.SerializeForSigning(), tx.Signature))

	// signing must not cover the signature itself
	hashBefore := tx.ComputeHash()
	a.NoError(w.Sign(tx))
	a.Equal(hashBefore, tx.ComputeHash())

	foreign := &types.Transaction{Sender: types.Address{0xff}, ChainID: "test-chain"}
	a.Error(w.Sign(foreign))
}

func TestWalletPEMRoundTrip(t *testing.T) {
	a := assert.New(t)

	w, err := FromSeed(testSeed(0x07))
	a.NoError(err)

	// the block label names the owning address
	a.Contains(string(w.ToPEM()), "PRIVATE KEY for "+w.Address().String())

	restored, err := FromPEM(w.ToPEM())
	a.NoError(err)
	a.Equal(w.Address(), restored.Address())

	_, err = FromPEM([]byte("not a pem block"))
	a.Error(err)

	key, err := ValidatorKeyFromSeed(testSeed(0x07))
	a.NoError(err)
	_, err = FromPEM(key.ToPEM())
	a.Error(err)
}

func TestPEMFileRoundTrip(t *testing.T) {
	a := assert.New(t)
	dir := t.TempDir()

	w, err := FromSeed(testSeed(0x03))
	a.NoError(err)
	walletPath := filepath.Join(dir, "walletKey_1.pem")
	a.NoError(w.SavePEM(walletPath))
	restored, err := FromPEMFile(walletPath)
	a.NoError(err)
	a.Equal(w.Address(), restored.Address())

	key, err := ValidatorKeyFromSeed(testSeed(0x04))
	a.NoError(err)
	keyPath := filepath.Join(dir, "validatorKey_1.pem")
	a.NoError(key.SavePEM(keyPath))
	restoredKey, err := ValidatorKeyFromPEMFile(keyPath)
	a.NoError(err)
	a.True(bytes.Equal(key.PubKey(), restoredKey.PubKey()))

	_, err = FromPEMFile(filepath.Join(dir, "missing.pem"))
	a.Error(err)
}

func TestMnemonicDerivation(t *testing.T) {
	a := assert.New(t)

	mnemonic, err := NewMnemonic()
	a.NoError(err)
	a.True(bip39.IsMnemonicValid(mnemonic))

	first, err := FromMnemonic(mnemonic, 0)
	a.NoError(err)
	same, err := FromMnemonic(mnemonic, 0)
	a.NoError(err)
	a.Equal(first.Address(), same.Address())

	second, err := FromMnemonic(mnemonic, 1)
	a.NoError(err)
	a.NotEqual(first.Address(), second.Address())

	_, err = FromMnemonic("definitely not twenty four valid words", 0)
	a.Error(err)
}

func TestValidatorKey(t *testing.T) {
	a := assert.New(t)

	key, err := ValidatorKeyFromSeed(testSeed(0x01))
	a.NoError(err)
	a.Len(key.PubKey(), 96)
	a.Len(key.PubKeyHex(), 192)

	again, err := ValidatorKeyFromSeed(testSeed(0x01))
	a.NoError(err)
	a.True(bytes.Equal(key.PubKey(), again.PubKey()))

	other, err := ValidatorKeyFromSeed(testSeed(0x02))
	a.NoError(err)
	a.False(bytes.Equal(key.PubKey(), other.PubKey()))

	_, err = ValidatorKeyFromSeed(make([]byte, 16))
	a.Error(err)

	random, err := NewValidatorKey()
	a.NoError(err)
	a.Len(random.PubKey(), 96)
	a.False(bytes.Equal(key.PubKey(), random.PubKey()))
}

func TestValidatorKeyPEMRoundTrip(t *testing.T) {
	a := assert.New(t)

	key, err := ValidatorKeyFromSeed(testSeed(0x05))
	a.NoError(err)

	restored, err := ValidatorKeyFromPEM(key.ToPEM())
	a.NoError(err)
	a.True(bytes.Equal(key.PubKey(), restored.PubKey()))

	w, err := FromSeed(testSeed(0x05))
	a.NoError(err)
	_, err = ValidatorKeyFromPEM(w.ToPEM())
	a.Error(err)
}

func TestValidatorRegistrationProof(t *testing.T) {
	a := assert.New(t)

	key, err := ValidatorKeyFromSeed(testSeed(0x09))
	a.NoError(err)

	contract := types.Address{0x11}
	proof := key.RegistrationProof(contract)
	a.Len(proof, 48)
	a.NotEqual(proof, key.RegistrationProof(types.Address{0x12}))
}
