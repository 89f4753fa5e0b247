package aflux

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EPCCed/ffs-sub000/internal/proxygroup"
	"github.com/EPCCed/ffs-sub000/internal/rng"
	"github.com/EPCCed/ffs-sub000/internal/simfacade"
	"github.com/EPCCed/ffs-sub000/internal/simfacade/testsim"
)

// TestRunAgainstPeriodicDrift exercises the full per-trial loop against
// a deterministic drift that crosses lambda_A exactly once per period.
// With prob_accept=1.0 and nskip=1, every trial harvests on its first
// countable crossing, one period after the clock starts, so ntrialLocal
// trials give exactly ntrialLocal crossings and ntrialLocal*period of
// elapsed time.
func TestRunAgainstPeriodicDrift(t *testing.T) {
	const (
		floor       = 0.0
		epsilon     = 10.0
		period      = 20.0
		lambdaA     = 5.0 // midpoint of the oscillation: crossed once per period
		lambdaB     = 1000.0
		ntrialLocal = 5
	)

	sim := testsim.NewPeriodicDrift(floor, epsilon, period)
	acc := New(ntrialLocal)
	ran, err := rng.New(1)
	require.NoError(t, err)

	params := Params{Teq: 0, NStepMax: 100, ProbAccept: 1.0, NSkip: 1}
	ens, err := Run(sim, acc, params, lambdaA, lambdaB, ran, 1, 0, func(trialID int) simfacade.StateRef {
		return simfacade.StateRef{Instance: 1, Proxy: 0, Trial: trialID}
	})
	require.NoError(t, err)
	require.Equal(t, ntrialLocal, ens.NSuccess)

	require.NoError(t, acc.Reduce(proxygroup.Local{}))
	require.Equal(t, ntrialLocal, acc.NTrial)
	require.Equal(t, ntrialLocal, acc.NSuccess)
	require.Equal(t, 0, acc.NTimeout)
	require.Equal(t, ntrialLocal, acc.NCross)
	require.InDelta(t, float64(ntrialLocal)*period, acc.TSum, 1e-9)
}

// TestRunTimesOutWithoutHarvest checks that a trial which never meets
// the skip-rule/prob_accept gate is recorded as timed out rather than
// succeeded, and contributes nothing to the harvested ensemble.
func TestRunTimesOutWithoutHarvest(t *testing.T) {
	sim := testsim.NewPeriodicDrift(0, 10, 20)
	acc := New(1)
	ran, err := rng.New(1)
	require.NoError(t, err)

	params := Params{Teq: 0, NStepMax: 30, ProbAccept: 0.0, NSkip: 1}
	ens, err := Run(sim, acc, params, 5.0, 1000.0, ran, 1, 0, func(trialID int) simfacade.StateRef {
		return simfacade.StateRef{Instance: 1, Proxy: 0, Trial: trialID}
	})
	require.NoError(t, err)
	require.Equal(t, 0, ens.NSuccess)

	require.NoError(t, acc.Reduce(proxygroup.Local{}))
	require.Equal(t, 1, acc.NTimeout)
	require.Equal(t, 0, acc.NSuccess)
}
