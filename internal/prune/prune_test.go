package prune

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EPCCed/ffs-sub000/internal/interfaceset"
	"github.com/EPCCed/ffs-sub000/internal/rng"
	"github.com/EPCCed/ffs-sub000/internal/simfacade/testsim"
	"github.com/EPCCed/ffs-sub000/internal/trial"
)

func fourInterfaceTable(t *testing.T) *interfaceset.Table {
	t.Helper()
	tbl, err := interfaceset.New([]interfaceset.Interface{
		{Lambda: 0, PPrune: 1.0},
		{Lambda: 1, PPrune: 0.5},
		{Lambda: 2, PPrune: 0.5},
		{Lambda: 3, PPrune: 0.0},
	})
	require.NoError(t, err)
	return tbl
}

func TestRunAlwaysPrunesAtOrBelowInterfaceTwo(t *testing.T) {
	tbl := fourInterfaceTable(t)
	sim, err := testsim.NewRandomWalk(5)
	require.NoError(t, err)
	r, err := rng.New(5)
	require.NoError(t, err)

	tr := trial.New(sim, 1)
	out, err := Run(tr, tbl, 2, r, 1.0, 10000)
	require.NoError(t, err)
	require.Equal(t, trial.StatusWasPruned, out.Status)
	require.Equal(t, 1, out.IPrune)
}

func TestRunNeverReportsWentBackwards(t *testing.T) {
	tbl := fourInterfaceTable(t)
	sim, err := testsim.NewRandomWalk(99)
	require.NoError(t, err)
	r, err := rng.New(99)
	require.NoError(t, err)

	tr := trial.New(sim, 1)
	out, err := Run(tr, tbl, 3, r, 1.0, 10000)
	require.NoError(t, err)
	require.NotEqual(t, trial.StatusWentBackwards, out.Status)
}

func TestRunAmplifiesWeightOnSurvival(t *testing.T) {
	tbl := fourInterfaceTable(t)
	sim, err := testsim.NewRandomWalk(1)
	require.NoError(t, err)

	// Seed 2 makes the first coin flip survive (random >= pprune 0.5).
	// Starting at interface 3 there is exactly one flip, so the weight
	// ends at exactly 1/(1-pprune) = 2 whatever the re-run's outcome.
	r, err := rng.New(2)
	require.NoError(t, err)
	first := r.Float64()
	require.NoError(t, r.Reseed(2))

	out, err := Run(trial.New(sim, 1), tbl, 3, r, 1.0, 10000)
	require.NoError(t, err)

	require.GreaterOrEqual(t, first, 0.5)
	require.Equal(t, 2.0, out.Weight)
}
