package rng

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReproducibility(t *testing.T) {
	a, err := New(42)
	require.NoError(t, err)
	b, err := New(42)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestFloat64Range(t *testing.T) {
	l, err := New(1)
	require.NoError(t, err)
	for i := 0; i < 10000; i++ {
		v := l.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestReseedChangesStream(t *testing.T) {
	l, err := New(7)
	require.NoError(t, err)
	first := l.Float64()

	require.NoError(t, l.Reseed(7))
	require.Equal(t, first, l.Float64())

	require.NoError(t, l.Reseed(8))
	require.NotEqual(t, first, l.Float64())
}

func TestReseedRejectsOutOfRange(t *testing.T) {
	l, err := New(1)
	require.NoError(t, err)
	require.Error(t, l.Reseed(0))
	require.Error(t, l.Reseed(-5))
	require.Error(t, l.Reseed(DefaultM))
}
