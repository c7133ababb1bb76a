package rng

import (
	"context"
	"fmt"
	"math/rand"
)

// Adapter implements ports.RNGPort backed by math/rand sources
type Adapter struct{}

// NewAdapter creates an RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed)), nil
}

// ChildSeeds expands a master seed into n independent per-replicate seeds.
// The operation name is hashed into the master source so distinct
// operations sharing a base seed still draw unrelated streams.
func (a *Adapter) ChildSeeds(ctx context.Context, name string, seed int64, n int) ([]int64, error) {
	if n < 1 {
		return nil, fmt.Errorf("child seed count must be positive, got %d", n)
	}

	master := rand.New(rand.NewSource(seed + int64(hashString(name))))
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = master.Int63()
	}
	return seeds, nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
