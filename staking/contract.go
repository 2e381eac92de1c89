package staking

import (
	"math/big"

	"github.com/corvuschain/corvus-sim-go/common/types"
)

// UnStakedEntry is a pending undelegation, withdrawable once the unbond
// period has passed.
type UnStakedEntry struct {
	Amount *big.Int
	Epoch  uint32
}

// Delegator is the per-account position inside a delegation contract.
type Delegator struct {
	ActiveStake *big.Int
	UnStaked    []UnStakedEntry
	Claimable   *big.Int
}

func newDelegator() *Delegator {
	return &Delegator{
		ActiveStake: new(big.Int),
		Claimable:   new(big.Int),
	}
}

// DelegationContract is one staking provider: pooled delegator funds plus
// the validator keys it operates.
type DelegationContract struct {
	Address      types.Address
	Owner        types.Address
	CreatedEpoch uint32

	// 0 means uncapped
	MaxDelegationCap *big.Int

	// basis points of constants.PERCENT, taken from rewards for the owner
	ServiceFee uint64

	// sum of all delegators' active stake
	TotalActiveStake *big.Int

	// portion of TotalActiveStake locked behind staked nodes
	StakedAmount *big.Int

	// hex pubkeys in registration order
	Nodes []string

	Delegators map[types.Address]*Delegator

	TotalCumulatedRewards *big.Int
}

// FreeFunds is the active stake not locked behind staked nodes.
func (c *DelegationContract) FreeFunds() *big.Int {
	return new(big.Int).Sub(c.TotalActiveStake, c.StakedAmount)
}

func (c *DelegationContract) delegator(addr types.Address) *Delegator {
	d, ok := c.Delegators[addr]
	if !ok {
		d = newDelegator()
		c.Delegators[addr] = d
	}
	return d
}

func (c *DelegationContract) hasNode(pubKeyHex string) bool {
	for _, k := range c.Nodes {
		if k == pubKeyHex {
			return true
		}
	}
	return false
}

func (c *DelegationContract) dropNode(pubKeyHex string) {
	for i, k := range c.Nodes {
		if k == pubKeyHex {
			c.Nodes = append(c.Nodes[:i], c.Nodes[i+1:]...)
			return
		}
	}
}
