package game

import (
	"hash/fnv"
	"math/rand"
)

// Rand returns a deterministic source for a room seed. Every client holding
// the same seed derives identical game content (obstacle layout, spawn order),
// so the server only has to distribute the seed once at match start.
func Rand(seed string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// SeededInt returns a value in [min, max] derived from seed. Same seed, same
// value.
func SeededInt(seed string, min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + Rand(seed).Intn(max-min+1)
}
