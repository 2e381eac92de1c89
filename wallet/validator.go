package wallet

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/corvuschain/corvus-sim-go/common/types"
	"github.com/corvuschain/corvus-sim-go/staking"
)

const validatorSeedSize = 32

const validatorPEMBlockPrefix = "VALIDATOR KEY for"

// ValidatorKey is the node key a staking provider registers with a
// delegation contract. The simulator does not run a BLS suite, the
// 96-byte public key is expanded deterministically from the seed.
type ValidatorKey struct {
	seed []byte
	pub  []byte
}

func NewValidatorKey() (*ValidatorKey, error) {
	seed := make([]byte, validatorSeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, errors.Wrap(err, "generate validator seed")
	}
	return ValidatorKeyFromSeed(seed)
}

func ValidatorKeyFromSeed(seed []byte) (*ValidatorKey, error) {
	if len(seed) != validatorSeedSize {
		return nil, errors.Errorf("validator seed must be %d bytes", validatorSeedSize)
	}
	key := &ValidatorKey{seed: append([]byte(nil), seed...)}
	key.pub = expandValidatorPubKey(key.seed)
	return key, nil
}

// expandValidatorPubKey stretches the seed to the BLS public key size with
// three domain-separated hash rounds.
func expandValidatorPubKey(seed []byte) []byte {
	pub := make([]byte, 0, staking.ValidatorPubKeyLength)
	for round := byte(0); round < 3; round++ {
		sum := blake2b.Sum256(append(append([]byte(nil), seed...), round))
		pub = append(pub, sum[:]...)
	}
	return pub
}

func (k *ValidatorKey) PubKey() []byte {
	return append([]byte(nil), k.pub...)
}

func (k *ValidatorKey) PubKeyHex() string {
	return hex.EncodeToString(k.pub)
}

// RegistrationProof signs the contract address with the node key, the
// proof addNodes verifies.
func (k *ValidatorKey) RegistrationProof(contract types.Address) []byte {
	return staking.RegistrationProof(contract, k.pub)
}

func (k *ValidatorKey) ToPEM() []byte {
	label := fmt.Sprintf("%s %s", validatorPEMBlockPrefix, k.PubKeyHex())
	return pemEncode(label, k.seed)
}

func ValidatorKeyFromPEM(data []byte) (*ValidatorKey, error) {
	seed, err := pemDecode(validatorPEMBlockPrefix, data)
	if err != nil {
		return nil, err
	}
	return ValidatorKeyFromSeed(seed)
}

func (k *ValidatorKey) SavePEM(path string) error {
	return ioutil.WriteFile(path, k.ToPEM(), 0600)
}

func ValidatorKeyFromPEMFile(path string) (*ValidatorKey, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read validator pem %s", path)
	}
	return ValidatorKeyFromPEM(data)
}
