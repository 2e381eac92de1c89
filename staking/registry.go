package staking

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/corvuschain/corvus-sim-go/common/types"
)

// KeyStatus is the staking state of a validator key.
type KeyStatus string

const (
	StatusNotStaked KeyStatus = "notStaked"
	StatusStaked    KeyStatus = "staked"
	StatusUnStaked  KeyStatus = "unStaked"
	StatusJailed    KeyStatus = "jailed"
)

const (
	// BLS public key and registration proof sizes, hex-encoded on the wire
	ValidatorPubKeyLength   = 96
	RegistrationProofLength = 48
)

type keyRecord struct {
	Contract     types.Address
	Status       KeyStatus
	UnStakeEpoch uint32
}

// Registry tracks every validator key known to the network: which
// delegation contract registered it, its staking status, and which keys the
// simulated node hosts (injected via add-keys).
type Registry struct {
	keys       map[string]*keyRecord
	stakedKeys mapset.Set
	hostedKeys mapset.Set
}

func NewRegistry() *Registry {
	return &Registry{
		keys:       make(map[string]*keyRecord),
		stakedKeys: mapset.NewSet(),
		hostedKeys: mapset.NewSet(),
	}
}

// Register binds a key to a contract. Keys are unique across the whole
// network, a second registration is rejected wherever it comes from.
func (r *Registry) Register(contract types.Address, pubKeyHex string) error {
	if _, exists := r.keys[pubKeyHex]; exists {
		return ErrKeyAlreadyExists.Format(shortKey(pubKeyHex))
	}
	r.keys[pubKeyHex] = &keyRecord{Contract: contract, Status: StatusNotStaked}
	return nil
}

func (r *Registry) Remove(pubKeyHex string) {
	delete(r.keys, pubKeyHex)
	r.stakedKeys.Remove(pubKeyHex)
}

func (r *Registry) StatusOf(pubKeyHex string) (KeyStatus, error) {
	rec, ok := r.keys[pubKeyHex]
	if !ok {
		return "", ErrKeyNotRegistered.Format(shortKey(pubKeyHex))
	}
	return rec.Status, nil
}

func (r *Registry) record(pubKeyHex string) (*keyRecord, bool) {
	rec, ok := r.keys[pubKeyHex]
	return rec, ok
}

func (r *Registry) markStaked(pubKeyHex string) {
	if rec, ok := r.keys[pubKeyHex]; ok {
		rec.Status = StatusStaked
		rec.UnStakeEpoch = 0
		r.stakedKeys.Add(pubKeyHex)
	}
}

func (r *Registry) markUnStaked(pubKeyHex string, epoch uint32) {
	if rec, ok := r.keys[pubKeyHex]; ok {
		rec.Status = StatusUnStaked
		rec.UnStakeEpoch = epoch
		r.stakedKeys.Remove(pubKeyHex)
	}
}

func (r *Registry) markNotStaked(pubKeyHex string) {
	if rec, ok := r.keys[pubKeyHex]; ok {
		rec.Status = StatusNotStaked
		rec.UnStakeEpoch = 0
		r.stakedKeys.Remove(pubKeyHex)
	}
}

func (r *Registry) NumStaked() int {
	return r.stakedKeys.Cardinality()
}

// Host records keys whose private halves the simulated node carries.
func (r *Registry) Host(pubKeysHex []string) {
	for _, k := range pubKeysHex {
		r.hostedKeys.Add(k)
	}
}

func (r *Registry) IsHosted(pubKeyHex string) bool {
	return r.hostedKeys.Contains(pubKeyHex)
}

// Statistics snapshots the status of every key the node knows about.
// Hosted keys that never registered with a contract report notStaked.
func (r *Registry) Statistics() map[string]string {
	out := make(map[string]string, len(r.keys))
	for _, item := range r.hostedKeys.ToSlice() {
		out[item.(string)] = string(StatusNotStaked)
	}
	for k, rec := range r.keys {
		out[k] = string(rec.Status)
	}
	return out
}

func shortKey(pubKeyHex string) string {
	if len(pubKeyHex) > 16 {
		return pubKeyHex[:16] + "..."
	}
	return pubKeyHex
}
