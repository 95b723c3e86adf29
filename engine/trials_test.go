package engine

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(h *TrialHandler) []int {
	var idx []int
	for {
		if _, ok := h.Next(); !ok {
			return idx
		}
		idx = append(idx, h.ThisIndex)
	}
}

func TestTrialHandlerSequential(t *testing.T) {
	h, err := NewTrialHandler("trials", trialsOf("k", "a", "b", "c"), 2, Sequential, nil)
	require.NoError(t, err)
	assert.Equal(t, -1, h.ThisN)
	assert.Equal(t, Trial{}, h.Current())

	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, drain(h))
	assert.Equal(t, 1, h.ThisRepN)
	assert.Equal(t, 2, h.ThisTrialN)
	assert.Equal(t, 5, h.ThisN)
	assert.True(t, h.IsLast())
	assert.Equal(t, "c", h.Current().Get("k"))
}

func TestTrialHandlerRandomShufflesEachRep(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	h, err := NewTrialHandler("trials", trialsOf("k", "a", "b", "c", "d"), 3, Random, rng)
	require.NoError(t, err)

	seq := drain(h)
	require.Len(t, seq, 12)
	for rep := range 3 {
		got := slices.Clone(seq[rep*4 : rep*4+4])
		slices.Sort(got)
		assert.Equal(t, []int{0, 1, 2, 3}, got, "rep %d", rep)
	}
}

func TestTrialHandlerFullRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	h, err := NewTrialHandler("trials", trialsOf("k", "a", "b"), 3, FullRandom, rng)
	require.NoError(t, err)

	counts := map[int]int{}
	for _, i := range drain(h) {
		counts[i]++
	}
	assert.Equal(t, map[int]int{0: 3, 1: 3}, counts)
}

func TestTrialHandlerEmptyListRepeats(t *testing.T) {
	h, err := NewTrialHandler("bips", nil, 10, Sequential, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, h.NTotal)
	assert.Len(t, drain(h), 10)
	assert.Equal(t, 9, h.ThisRepN)
	assert.Equal(t, 0, h.ThisTrialN)
}

func TestTrialHandlerStop(t *testing.T) {
	h, err := NewTrialHandler("trials", nil, 5, Sequential, nil)
	require.NoError(t, err)
	h.Next()
	h.Stop()
	_, ok := h.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, h.ThisN)
}

func TestTrialHandlerColumns(t *testing.T) {
	h, err := NewTrialHandler("loop", trialsOf("k", "a"), 1, Sequential, nil)
	require.NoError(t, err)
	h.Next()
	assert.Equal(t, []Field{
		{"loop.thisRepN", 0},
		{"loop.thisTrialN", 0},
		{"loop.thisN", 0},
		{"loop.thisIndex", 0},
	}, h.Columns())
}

func TestTrialHandlerRejectsBadInput(t *testing.T) {
	_, err := NewTrialHandler("loop", nil, -1, Sequential, nil)
	assert.Error(t, err)
	_, err = NewTrialHandler("loop", nil, 1, FullRandom, nil)
	assert.Error(t, err)
}

func TestSelectRowsIsSubset(t *testing.T) {
	for seed := range uint64(200) {
		rng := rand.New(rand.NewPCG(seed, seed))
		rows := SelectRows(rng, 8, 7)
		require.Len(t, rows, 7)

		seen := map[int]bool{}
		for _, r := range rows {
			assert.GreaterOrEqual(t, r, 0)
			assert.Less(t, r, 8)
			assert.False(t, seen[r], "duplicate row %d (seed %d)", r, seed)
			seen[r] = true
		}
	}
}

func TestSubset(t *testing.T) {
	trials := trialsOf("k", "a", "b", "c")
	got, err := Subset(trials, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, "c", got[0].Get("k"))
	assert.Equal(t, "a", got[1].Get("k"))

	_, err = Subset(trials, []int{3})
	assert.Error(t, err)
}
