package staking

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvuschain/corvus-sim-go/common/types"
	"github.com/corvuschain/corvus-sim-go/simulator"
)

// execute drives a freshly sent transaction to completion and hands back its
// receipt. Send errors and execution timeouts abort the test.
func execute(t *testing.T, s *simulator.Simulator, hash types.Hash, err error) *types.TxResult {
	require.NoError(t, err)
	result, err := s.GenerateBlocksUntilTxProcessed(hash)
	require.NoError(t, err)
	return result
}
