package types

import (
	"math/big"

	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
)

// base units per whole CORV
var oneCorv = big.NewInt(1_000_000_000_000_000_000)

// Coins returns n whole CORV in base units.
func Coins(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), oneCorv)
}

// ParseAmount parses a base-unit amount from decimal or 0x-prefixed hex.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := ethmath.ParseBig256(s)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, errors.Errorf("negative amount %q", s)
	}
	return v, nil
}

func MustAmount(s string) *big.Int {
	v, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return v
}

// CloneAmount copies b, mapping nil to zero.
func CloneAmount(b *big.Int) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b)
}
