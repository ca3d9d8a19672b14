package ports

import (
	"math/rand"
)

// RNG provides seeded random number generation for deterministic operations
type RNG interface {
	// Stream creates a deterministic generator for a named operation. The same
	// name and seed always yield the same sequence.
	Stream(name string, seed int64) *rand.Rand
}
