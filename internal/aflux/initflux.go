package aflux

import (
	"github.com/EPCCed/ffs-sub000/internal/ensemble"
	"github.com/EPCCed/ffs-sub000/internal/rng"
	"github.com/EPCCed/ffs-sub000/internal/simfacade"
	"github.com/EPCCed/ffs-sub000/internal/trial"
)

// Params bundles the initial-flux estimator's tunables, read off
// config.InitParameters: how long to equilibrate, the per-trial step
// budget, the harvest acceptance probability, and the skip rule that
// thins how often a crossing is even offered to that probability.
type Params struct {
	Teq        float64
	NStepMax   int
	ProbAccept float64
	NSkip      int
}

// StateRefFor names the checkpoint a harvested trial's interface-1
// state should be written under.
type StateRefFor func(trialID int) simfacade.StateRef

// Run drives acc's local trials (one per slot acc was allocated with):
// restore the basin-A reference, equilibrate to p.Teq, then advance
// step by step watching for lambda_A crossings. An overshoot past
// lambda_B is treated as a trip into B: the trial restarts from the
// reference and re-equilibrates, its elapsed time preserved. The first
// upward crossing of lambda_A only starts the clock; every crossing
// after that increments the running local crossing count, and every
// nskip-th of those is offered to prob_accept — accepted, the trial's
// current state is harvested as an interface-1 member. A trial that
// exhausts NStepMax steps without being accepted is recorded as timed
// out. Mirrors ffs_trial_init's per-trial loop.
func Run(sim simfacade.Facade, acc *Accumulator, p Params, lambdaA, lambdaB float64, ran *rng.LCG, baseSeed int64, startOffset int, ref StateRefFor) (*ensemble.Ensemble, error) {
	ntrialLocal := len(acc.status)
	nskip := p.NSkip
	if nskip < 1 {
		nskip = 1
	}

	ens := ensemble.New(ntrialLocal)
	eq := trial.New(sim, 1)

	for i := 0; i < ntrialLocal; i++ {
		trialID := startOffset + i + 1

		if err := ran.Reseed(baseSeed + int64(startOffset+i)); err != nil {
			return nil, err
		}
		if err := sim.InitState(); err != nil {
			return nil, err
		}
		if err := sim.SeedPut(ran.Int32Seed()); err != nil {
			return nil, err
		}
		if _, err := eq.AdvanceToTime(p.Teq, p.NStepMax); err != nil {
			return nil, err
		}
		acc.RecordEquilibration()

		lambdaOld, err := sim.Lambda()
		if err != nil {
			return nil, err
		}

		started := false
		var t0, tElapsed float64
		status := trial.StatusTimedOut

		for step := 0; step < p.NStepMax; step++ {
			if err := sim.Execute(); err != nil {
				return nil, err
			}
			lambdaNew, err := sim.Lambda()
			if err != nil {
				return nil, err
			}
			tNew, err := sim.Time()
			if err != nil {
				return nil, err
			}

			if lambdaNew >= lambdaB {
				if err := sim.InitState(); err != nil {
					return nil, err
				}
				if _, err := eq.AdvanceToTime(p.Teq, p.NStepMax); err != nil {
					return nil, err
				}
				acc.RecordEquilibration()
				if lambdaOld, err = sim.Lambda(); err != nil {
					return nil, err
				}
				continue
			}

			if lambdaOld < lambdaA && lambdaNew >= lambdaA && tNew >= p.Teq {
				if !started {
					started = true
					t0 = tNew
				} else {
					acc.RecordCrossing()
					tElapsed += tNew - t0
					t0 = tNew
					if acc.LocalCrossings()%nskip == 0 && ran.Float64() < p.ProbAccept {
						status = trial.StatusSucceeded
						lambdaOld = lambdaNew
						break
					}
				}
			}

			lambdaOld = lambdaNew
		}

		if err := acc.SetStatus(i, status); err != nil {
			return nil, err
		}
		if err := acc.SetTime(i, tElapsed); err != nil {
			return nil, err
		}

		if status == trial.StatusSucceeded {
			ens.Add(trialID, 1.0)
			if err := sim.WriteState(ref(trialID)); err != nil {
				return nil, err
			}
		}
	}

	return ens, nil
}
