// Package algorithm implements the FFS driver variants — direct,
// branched, Rosenbluth, and a brute-force validation driver — that
// advance ensembles of trials from interface to interface and report
// the resulting rate estimate.
package algorithm

import (
	"fmt"

	"github.com/EPCCed/ffs-sub000/internal/aflux"
	"github.com/EPCCed/ffs-sub000/internal/ensemble"
	"github.com/EPCCed/ffs-sub000/internal/interfaceset"
	"github.com/EPCCed/ffs-sub000/internal/prune"
	"github.com/EPCCed/ffs-sub000/internal/result"
	"github.com/EPCCed/ffs-sub000/internal/rng"
	"github.com/EPCCed/ffs-sub000/internal/simfacade"
	"github.com/EPCCed/ffs-sub000/internal/trial"
)

// Runner is what an algorithm driver needs from its caller: a
// per-trial simulation backend, the interface ladder, a result store
// to record into, a base seed and step budget, and a way to allocate
// StateRefs for a given interface/trial pair.
type Runner struct {
	Sim         simfacade.Facade
	Table       *interfaceset.Table
	Store       *result.Store
	Flux        *aflux.Accumulator
	BaseSeed    int64
	NStepMax    int
	NStepLambda int
	Instance    int
	Proxy       int
}

func (r *Runner) trial() *trial.Trial {
	return trial.New(r.Sim, r.NStepLambda)
}

func (r *Runner) stateRef(interfaceIdx, trajID int) simfacade.StateRef {
	return simfacade.StateRef{Instance: r.Instance, Proxy: r.Proxy, Trial: trajID}
}

// Direct runs the direct FFS algorithm (ffs_direct_run): starting from
// init, the interface-1 ensemble the initial-flux estimator harvested,
// repeatedly fire ntrial trials at each interface from a weighted draw
// of the previous ensemble's survivors, decimating down to
// nstate_target when an interface overflows its quota.
func Direct(r *Runner, init *ensemble.Ensemble, ntrial []int, nstateTarget []int) (*ensemble.Ensemble, error) {
	n := r.Table.N()
	if len(ntrial) != n+1 || len(nstateTarget) != n+1 {
		return nil, fmt.Errorf("algorithm: ntrial/nstateTarget must be indexed 0..%d", n)
	}

	old := ensemble.New(nstateTarget[1])
	ran, err := rng.New(r.BaseSeed)
	if err != nil {
		return nil, err
	}

	for i := 0; i < init.NSuccess; i++ {
		r.Store.AddTrialSuccess(1)
		if !old.Add(init.TrialID[i], init.Weight[i]) {
			// nstate_target[1] is smaller than the harvested ensemble:
			// drop the excess states the same way later interfaces do.
			if err := r.Sim.DeleteState(r.stateRef(1, init.TrialID[i])); err != nil {
				return nil, err
			}
		}
	}
	r.Store.SetNStateKeep(1, old.NSuccess)

	tr := r.trial()
	ncumTrial := 0

	for iface := 1; iface < n; iface++ {
		if old.NSuccess == 0 {
			break
		}

		lambdaMin, err := r.Table.Lambda(iface - 1)
		if err != nil {
			return nil, err
		}
		lambdaMax, err := r.Table.Lambda(iface + 1)
		if err != nil {
			return nil, err
		}

		next := ensemble.New(nstateTarget[iface+1])

		for i := 0; i < ntrial[iface]; i++ {
			trajID := 1 + i + ncumTrial

			if err := ran.Reseed(r.BaseSeed + int64(trajID) - 1); err != nil {
				return nil, err
			}

			parent, err := old.SampleWeighted(ran)
			if err != nil {
				return nil, err
			}
			if err := r.Sim.ReadState(r.stateRef(iface, old.TrialID[parent])); err != nil {
				return nil, err
			}
			if err := r.Sim.SeedPut(ran.Int32Seed()); err != nil {
				return nil, err
			}

			weight := 1.0
			status, err := tr.AdvanceToLambda(lambdaMin, lambdaMax, r.NStepMax)
			if err != nil {
				return nil, err
			}

			if status == trial.StatusWentBackwards || status == trial.StatusTimedOut {
				out, err := prune.Run(tr, r.Table, iface, ran, weight, r.NStepMax)
				if err != nil {
					return nil, err
				}
				status, weight = out.Status, out.Weight
				if status == trial.StatusWasPruned {
					r.Store.AddPrune(out.IPrune)
				}
				if status == trial.StatusTimedOut {
					r.Store.AddTimeout(out.IPrune, 1)
				}
			}

			if status != trial.StatusSucceeded {
				continue
			}

			if next.Add(trajID, weight) {
				if err := r.Sim.WriteState(r.stateRef(iface+1, trajID)); err != nil {
					return nil, err
				}
			}
			r.Store.AddTrialSuccess(iface + 1)
			r.Store.AccumulateWeight(iface+1, weight)
		}

		r.Store.SetNStateKeep(iface+1, next.NSuccess)
		ncumTrial += ntrial[iface]
		old = next
	}

	return old, nil
}
