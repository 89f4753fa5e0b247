package algorithm

import (
	"github.com/EPCCed/ffs-sub000/internal/ensemble"
	"github.com/EPCCed/ffs-sub000/internal/prune"
	"github.com/EPCCed/ffs-sub000/internal/rng"
	"github.com/EPCCed/ffs-sub000/internal/trial"
)

// Branched runs the branched FFS algorithm (ffs_branched_run): from
// each member of init, the interface-1 ensemble the initial-flux
// estimator harvested, spawn a full recursive tree of ntrial[i]
// sub-trials at every interface, each carrying weight/ntrial[i] of its
// parent's weight, depth-first, restoring the parent state after each
// child returns.
func Branched(r *Runner, init *ensemble.Ensemble, ntrial []int) error {
	n := r.Table.N()
	ran, err := rng.New(r.BaseSeed)
	if err != nil {
		return err
	}

	nextID := 1
	tr := r.trial()

	for i := 0; i < init.NSuccess; i++ {
		harvested := r.stateRef(1, init.TrialID[i])
		if err := r.Sim.ReadState(harvested); err != nil {
			return err
		}
		if err := ran.Reseed(r.BaseSeed + int64(i)); err != nil {
			return err
		}
		if err := r.Sim.SeedPut(ran.Int32Seed()); err != nil {
			return err
		}

		id := nextID
		nextID++
		if err := branchedRecurse(r, tr, ran, 1, id, &nextID, init.Weight[i], n, ntrial); err != nil {
			return err
		}

		if err := r.Sim.DeleteState(harvested); err != nil {
			return err
		}
	}

	return nil
}

func branchedRecurse(r *Runner, tr *trial.Trial, ran *rng.LCG, iface, id int, nextID *int, weight float64, n int, ntrial []int) error {
	r.Store.AccumulateWeight(iface, weight)

	if iface == n {
		return nil
	}

	lambdaMin, err := r.Table.Lambda(iface - 1)
	if err != nil {
		return err
	}
	lambdaMax, err := r.Table.Lambda(iface + 1)
	if err != nil {
		return err
	}

	keep := r.stateRef(iface, id)
	if err := r.Sim.WriteState(keep); err != nil {
		return err
	}

	for i := 0; i < ntrial[iface]; i++ {
		wtnow := weight / float64(ntrial[iface])

		status, err := tr.AdvanceToLambda(lambdaMin, lambdaMax, r.NStepMax)
		if err != nil {
			return err
		}

		if status == trial.StatusWentBackwards || status == trial.StatusTimedOut {
			out, err := prune.Run(tr, r.Table, iface, ran, wtnow, r.NStepMax)
			if err != nil {
				return err
			}
			status, wtnow = out.Status, out.Weight
			if status == trial.StatusWasPruned {
				r.Store.AddPrune(out.IPrune)
			}
			if status == trial.StatusTimedOut {
				r.Store.AddTimeout(out.IPrune, 1)
			}
		}

		if status == trial.StatusSucceeded {
			childID := *nextID
			*nextID++
			r.Store.AddTrialSuccess(iface + 1)
			if err := branchedRecurse(r, tr, ran, iface+1, childID, nextID, wtnow, n, ntrial); err != nil {
				return err
			}
		}

		if err := r.Sim.ReadState(keep); err != nil {
			return err
		}
	}

	return r.Sim.DeleteState(keep)
}
