package trial

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EPCCed/ffs-sub000/internal/simfacade/testsim"
)

func TestAdvanceToTimeSucceeds(t *testing.T) {
	sim, err := testsim.NewRandomWalk(1)
	require.NoError(t, err)

	tr := New(sim, 1)
	status, err := tr.AdvanceToTime(5, 1000)
	require.NoError(t, err)
	require.Equal(t, StatusSucceeded, status)

	tm, _ := sim.Time()
	require.GreaterOrEqual(t, tm, 5.0)
}

func TestAdvanceToTimeTimesOut(t *testing.T) {
	sim, err := testsim.NewRandomWalk(1)
	require.NoError(t, err)

	tr := New(sim, 1)
	status, err := tr.AdvanceToTime(1e9, 10)
	require.NoError(t, err)
	require.Equal(t, StatusTimedOut, status)
}

func TestAdvanceToLambdaSucceedsOrBacktracks(t *testing.T) {
	sim, err := testsim.NewRandomWalk(7)
	require.NoError(t, err)

	tr := New(sim, 1)
	status, err := tr.AdvanceToLambda(-5, 5, 100000)
	require.NoError(t, err)
	require.Contains(t, []Status{StatusSucceeded, StatusWentBackwards, StatusTimedOut}, status)
}

func TestAdvanceToLambdaTimesOut(t *testing.T) {
	sim, err := testsim.NewRandomWalk(3)
	require.NoError(t, err)

	tr := New(sim, 1)
	status, err := tr.AdvanceToLambda(-1000, 1000, 5)
	require.NoError(t, err)
	require.Equal(t, StatusTimedOut, status)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "succeeded", StatusSucceeded.String())
	require.Equal(t, "was_pruned", StatusWasPruned.String())
}
