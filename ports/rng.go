package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// ChildSeeds expands a master seed into n independent per-replicate
	// seeds. Surrogate columns each consume their own child stream so
	// generation stays reproducible whether or not columns run in
	// parallel. Identical inputs always yield the identical seed vector.
	ChildSeeds(ctx context.Context, name string, seed int64, n int) ([]int64, error)
}
