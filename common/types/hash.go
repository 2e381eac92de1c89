package types

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

const HashLength = 32

type Hash [HashLength]byte

func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLength {
		return h, errors.Errorf("invalid hash length %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, errors.Wrap(err, "invalid hex hash")
	}
	return HashFromBytes(b)
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	dec, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = dec
	return nil
}
