package config

import "math/rand/v2"

// RandomPoolSelector draws uniformly from the pool using math/rand/v2. The
// exact distribution is not part of the contract (§5): any reviewer with
// model_binding=pool accepts whichever entry lands.
type RandomPoolSelector struct{}

func (RandomPoolSelector) Select(pool []string) string {
	return pool[rand.IntN(len(pool))]
}

// FixedPoolSelector always returns Index into the pool, or the first entry
// when Index is out of range. Used by tests that need to pin the draw
// deterministically.
type FixedPoolSelector struct {
	Index int
}

func (f FixedPoolSelector) Select(pool []string) string {
	i := f.Index
	if i < 0 || i >= len(pool) {
		i = 0
	}
	return pool[i]
}
