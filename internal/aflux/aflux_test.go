package aflux

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EPCCed/ffs-sub000/internal/proxygroup"
	"github.com/EPCCed/ffs-sub000/internal/trial"
)

func TestReduceLocal(t *testing.T) {
	a := New(3)
	require.NoError(t, a.SetStatus(0, trial.StatusSucceeded))
	require.NoError(t, a.SetStatus(1, trial.StatusTimedOut))
	require.NoError(t, a.SetStatus(2, trial.StatusSucceeded))
	require.NoError(t, a.SetTime(0, 1.5))
	require.NoError(t, a.SetTime(1, 2.0))
	require.NoError(t, a.SetTime(2, 4.5))
	a.RecordCrossing()
	a.RecordCrossing()
	a.RecordEquilibration()

	require.NoError(t, a.Reduce(proxygroup.Local{}))

	require.Equal(t, 3, a.NTrial)
	require.Equal(t, 2, a.NSuccess)
	require.Equal(t, 1, a.NTimeout)
	require.Equal(t, 1, a.NEq)
	require.Equal(t, 2, a.NCross)
	require.InDelta(t, 8.0, a.TSum, 1e-9)
	require.InDelta(t, 4.5, a.TMax, 1e-9)
}

func TestSetStatusOutOfRange(t *testing.T) {
	a := New(2)
	require.ErrorIs(t, a.SetStatus(5, trial.StatusSucceeded), ErrIndexRange)
	require.ErrorIs(t, a.SetTime(-1, 1.0), ErrIndexRange)
}

func TestLocalCrossingsTracksRecordCrossing(t *testing.T) {
	a := New(1)
	require.Equal(t, 0, a.LocalCrossings())
	a.RecordCrossing()
	a.RecordCrossing()
	require.Equal(t, 2, a.LocalCrossings())
}
