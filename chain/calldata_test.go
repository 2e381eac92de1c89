package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvuschain/corvus-sim-go/common/types"
)

func TestBuildCallData(t *testing.T) {
	a := assert.New(t)

	a.Equal([]byte("delegate"), BuildCallData("delegate"))
	a.Equal([]byte("createNewDelegationContract@00@0a"),
		BuildCallData("createNewDelegationContract", []byte{0}, []byte{10}))
	a.Equal([]byte("stakeNodes@0102"), BuildCallData("stakeNodes", []byte{1, 2}))
}

func TestParseCallData(t *testing.T) {
	a := assert.New(t)

	function, args, err := ParseCallData([]byte("addNodes@0102@ff"))
	a.NoError(err)
	a.Equal("addNodes", function)
	a.Equal([][]byte{{1, 2}, {0xff}}, args)

	function, args, err = ParseCallData([]byte("withdraw"))
	a.NoError(err)
	a.Equal("withdraw", function)
	a.Empty(args)

	// an empty argument reads as an empty slice, zero for amounts
	_, args, err = ParseCallData([]byte("unDelegate@"))
	a.NoError(err)
	a.Len(args, 1)
	a.Zero(new(big.Int).SetBytes(args[0]).Sign())

	_, _, err = ParseCallData([]byte("@00"))
	a.Equal(ErrInvalidCallData, err)

	_, _, err = ParseCallData([]byte("delegate@zz"))
	a.Equal(ErrInvalidCallData, err)
}

func TestAmountArg(t *testing.T) {
	a := assert.New(t)

	a.Equal([]byte{0}, AmountArg(nil))
	a.Equal([]byte{0}, AmountArg(new(big.Int)))
	a.Equal(types.Coins(4900).Bytes(), AmountArg(types.Coins(4900)))

	// zero must stay visible on the wire as "00"
	a.Equal([]byte("changeServiceFee@00"), BuildCallData("changeServiceFee", AmountArg(nil)))
}

func TestOperationGasCost(t *testing.T) {
	a := assert.New(t)

	a.Equal(operationGasCosts["createNewDelegationContract"], operationGasCost("createNewDelegationContract"))
	a.Equal(uint64(defaultOperationGasCost), operationGasCost("someUnknownFunction"))
}
