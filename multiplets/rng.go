package multiplets

import "math/rand"

// Deterministic random streams for the greedy search.
//
// Every attempt owns an independent *rand.Rand derived from the base seed
// and the attempt number, so the outcome of attempt i never depends on how
// many attempts run before it or on which goroutine runs it.
// math/rand.Rand is not goroutine-safe; never share one across attempts.

// defaultRNGSeed is used when callers pass seed == 0.
const defaultRNGSeed int64 = 1

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed with a SplitMix64 finalizer.
//
// Complexity: O(1).
func deriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// attemptRNG returns the stream of one greedy attempt.
func attemptRNG(seed int64, attempt int) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}
	return rand.New(rand.NewSource(deriveSeed(seed, uint64(attempt))))
}

// permRange returns a permutation of 0..n-1 drawn from rng by an in-place
// Fisher–Yates shuffle.
//
// Complexity: O(n) time, O(n) space.
func permRange(n int, rng *rand.Rand) []int {
	p := make([]int, n)
	var i, j int
	for i = range p {
		p[i] = i
	}
	for i = n - 1; i > 0; i-- {
		j = rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}
