package proxygroup

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalIsIdentity(t *testing.T) {
	var l Local
	sum, err := l.SumInt(7)
	require.NoError(t, err)
	require.Equal(t, 7, sum)

	mx, err := l.MaxFloat64(3.5)
	require.NoError(t, err)
	require.Equal(t, 3.5, mx)
}

func TestGroupSumAllreduce(t *testing.T) {
	const size = 4
	g := NewGroup(size)

	var wg sync.WaitGroup
	results := make([]int, size)

	for rank := 0; rank < size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			m := g.Member(rank)
			sum, err := m.SumInt(rank + 1)
			require.NoError(t, err)
			results[rank] = sum
		}(rank)
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, 10, r) // 1+2+3+4
	}
}

func TestGroupMaxAllreduce(t *testing.T) {
	const size = 3
	g := NewGroup(size)

	var wg sync.WaitGroup
	results := make([]float64, size)
	inputs := []float64{2.0, 9.0, 4.0}

	for rank := 0; rank < size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			m := g.Member(rank)
			mx, err := m.MaxFloat64(inputs[rank])
			require.NoError(t, err)
			results[rank] = mx
		}(rank)
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, 9.0, r)
	}
}

func TestGroupBarrierSynchronises(t *testing.T) {
	const size = 3
	g := NewGroup(size)

	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			m := g.Member(rank)
			require.NoError(t, m.Barrier())
		}(rank)
	}
	wg.Wait()
}

func TestGroupSuccessiveRounds(t *testing.T) {
	const size = 2
	g := NewGroup(size)

	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			m := g.Member(rank)
			first, err := m.SumInt(1)
			require.NoError(t, err)
			require.Equal(t, 2, first)

			second, err := m.SumInt(10)
			require.NoError(t, err)
			require.Equal(t, 20, second)
		}(rank)
	}
	wg.Wait()
}
