package slot

import "math/rand/v2"

// NewRoundRand returns the pseudorandom stream of one simulation index. The same
// (seed, sim) pair always yields the same stream, independent of which worker runs it.
func NewRoundRand(seed uint64, sim int) *rand.Rand {
	x := seed ^ 0x9e3779b97f4a7c15 ^ uint64(sim)*0xd1b54a32d192ed03
	hi := splitmix64(x)
	lo := splitmix64(x ^ 0xda942042e4dd58b5)
	return rand.New(rand.NewPCG(hi, lo))
}

// splitmix64 spreads a seed over 64 bits.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
