package engine

import (
	"fmt"
	"math/rand/v2"
)

// SelectRows shuffles the indices 0..n-1 and keeps the first k, giving a
// random subset in random order.
func SelectRows(rng *rand.Rand, n, k int) []int {
	idx := rng.Perm(n)
	if k < n {
		idx = idx[:k]
	}
	return idx
}

// Subset returns the trials at the given table positions, in that order.
func Subset(trials []Trial, rows []int) ([]Trial, error) {
	out := make([]Trial, 0, len(rows))
	for _, i := range rows {
		if i < 0 || i >= len(trials) {
			return nil, fmt.Errorf("row %d out of range: table has %d rows", i, len(trials))
		}
		out = append(out, trials[i])
	}
	return out, nil
}
