package ensemble

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EPCCed/ffs-sub000/internal/rng"
)

func TestAddRespectsCapacity(t *testing.T) {
	e := New(2)
	require.True(t, e.Add(1, 1.0))
	require.True(t, e.Add(2, 1.0))
	require.False(t, e.Add(3, 1.0))
	require.Equal(t, 2, e.NSuccess)
}

func TestSumWeights(t *testing.T) {
	e := New(3)
	e.Add(1, 2.0)
	e.Add(2, 3.0)
	require.Equal(t, 5.0, e.SumWeights())
}

func TestSampleWeightedEmpty(t *testing.T) {
	e := New(3)
	r, err := rng.New(1)
	require.NoError(t, err)
	_, err = e.SampleWeighted(r)
	require.ErrorIs(t, err, ErrEmpty)
}

// TestSampleWeightedConvergesToWeights checks invariant 5 from the
// testable properties: the empirical draw frequency of member i
// converges to weight[i] / sum(weights).
func TestSampleWeightedConvergesToWeights(t *testing.T) {
	e := New(3)
	e.Add(0, 1.0)
	e.Add(1, 2.0)
	e.Add(2, 7.0)

	r, err := rng.New(12345)
	require.NoError(t, err)

	const trials = 200000
	counts := make([]int, 3)
	for i := 0; i < trials; i++ {
		idx, err := e.SampleWeighted(r)
		require.NoError(t, err)
		counts[idx]++
	}

	total := e.SumWeights()
	for i, w := range e.Weight[:e.NSuccess] {
		expected := w / total
		observed := float64(counts[i]) / float64(trials)
		require.InDelta(t, expected, observed, 0.01)
	}
}
