package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	slip10 "github.com/vegaprotocol/go-slip10"

	"github.com/corvuschain/corvus-sim-go/common/types"
)

// hardened derivation path of account N
const derivationPathFormat = "m/44'/7789'/0'/0'/%d'"

const pemBlockPrefix = "PRIVATE KEY for"

// Wallet holds one ed25519 keypair. The public key doubles as the account
// address.
type Wallet struct {
	priv ed25519.PrivateKey
}

func NewRandom() (*Wallet, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generate wallet key")
	}
	return &Wallet{priv: priv}, nil
}

func FromSeed(seed []byte) (*Wallet, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Errorf("wallet seed must be %d bytes", ed25519.SeedSize)
	}
	return &Wallet{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// NewMnemonic produces a fresh 24-word recovery phrase.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// FromMnemonic derives the index-th account of the recovery phrase.
func FromMnemonic(mnemonic string, index uint32) (*Wallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")
	node, err := slip10.DeriveForPath(fmt.Sprintf(derivationPathFormat, index), seed)
	if err != nil {
		return nil, errors.Wrap(err, "derive wallet key")
	}
	_, priv := node.Keypair()
	return &Wallet{priv: priv}, nil
}

func (w *Wallet) Address() types.Address {
	pub := w.priv.Public().(ed25519.PublicKey)
	addr, _ := types.AddressFromBytes(pub)
	return addr
}

func (w *Wallet) SignBytes(data []byte) []byte {
	return ed25519.Sign(w.priv, data)
}

// Sign fills in the sender when it is unset and signs the canonical form.
func (w *Wallet) Sign(tx *types.Transaction) error {
	if tx == nil {
		return errors.New("nil transaction")
	}
	var zero types.Address
	if tx.Sender == zero {
		tx.Sender = w.Address()
	} else if tx.Sender != w.Address() {
		return errors.New("transaction sender does not match the wallet")
	}
	tx.Signature = ed25519.Sign(w.priv, tx.SerializeForSigning())
	return nil
}

// ToPEM renders the key as a PEM block labeled with the bech32 address and
// carrying the hex-encoded seed, the on-disk wallet format.
func (w *Wallet) ToPEM() []byte {
	label := fmt.Sprintf("%s %s", pemBlockPrefix, w.Address().String())
	return pemEncode(label, w.priv.Seed())
}

func FromPEM(data []byte) (*Wallet, error) {
	seed, err := pemDecode(pemBlockPrefix, data)
	if err != nil {
		return nil, err
	}
	return FromSeed(seed)
}

func (w *Wallet) SavePEM(path string) error {
	return ioutil.WriteFile(path, w.ToPEM(), 0600)
}

func FromPEMFile(path string) (*Wallet, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read wallet pem %s", path)
	}
	return FromPEM(data)
}

func pemEncode(label string, seed []byte) []byte {
	body := []byte(hex.EncodeToString(seed))
	return pem.EncodeToMemory(&pem.Block{Type: label, Bytes: body})
}

func pemDecode(labelPrefix string, data []byte) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil || !strings.HasPrefix(block.Type, labelPrefix) {
		return nil, errors.Errorf("no %q block found in pem data", labelPrefix)
	}
	seed, err := hex.DecodeString(string(block.Bytes))
	if err != nil {
		return nil, errors.Wrap(err, "malformed pem key body")
	}
	return seed, nil
}
