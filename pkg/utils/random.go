package utils

import (
	"math/rand"
	"time"
)

// NewRand builds the injectable random source used for selection
// tie-breaks and sleep jitter. Seed 0 means "seed from the clock".
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
