package algorithm

import (
	"github.com/EPCCed/ffs-sub000/internal/ensemble"
	"github.com/EPCCed/ffs-sub000/internal/prune"
	"github.com/EPCCed/ffs-sub000/internal/rng"
	"github.com/EPCCed/ffs-sub000/internal/simfacade"
	"github.com/EPCCed/ffs-sub000/internal/trial"
)

// Rosenbluth runs the Rosenbluth FFS algorithm: from each member of
// init, the interface-1 ensemble the initial-flux estimator harvested,
// fire ntrial[i] independent branches at each interface, keep every
// successful end state, then choose exactly one at random (weighted
// uniformly, per the reference algorithm) to continue the recursion,
// discarding the rest. The recorded weight at an interface is the
// parent weight scaled by the fraction of branches that succeeded.
func Rosenbluth(r *Runner, init *ensemble.Ensemble, ntrial []int) error {
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
		start := r.stateRef(1, id)
		if err := r.Sim.WriteState(start); err != nil {
			return err
		}

		if err := rosenbluthRecurse(r, tr, ran, 1, id, &nextID, init.Weight[i], n, ntrial); err != nil {
			return err
		}

		if err := r.Sim.DeleteState(start); err != nil {
			return err
		}
		if err := r.Sim.DeleteState(harvested); err != nil {
			return err
		}
	}

	return nil
}

func rosenbluthRecurse(r *Runner, tr *trial.Trial, ran *rng.LCG, iface, id int, nextID *int, weight float64, n int, ntrial []int) error {
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

	var successRefs []simfacade.StateRef
	var successIDs []int

	for i := 0; i < ntrial[iface]; i++ {
		r.Store.AddStart(iface)

		if err := r.Sim.SeedPut(ran.Int32Seed()); err != nil {
			return err
		}

		status, err := tr.AdvanceToLambda(lambdaMin, lambdaMax, r.NStepMax)
		if err != nil {
			return err
		}

		weightNow := weight
		if status == trial.StatusWentBackwards || status == trial.StatusTimedOut {
			out, perr := prune.Run(tr, r.Table, iface, ran, weightNow, r.NStepMax)
			if perr != nil {
				return perr
			}
			status, weightNow = out.Status, out.Weight
			if status == trial.StatusWasPruned {
				r.Store.AddPrune(out.IPrune)
			}
			if status == trial.StatusTimedOut {
				r.Store.AddTimeout(out.IPrune, 1)
			}
		}

		if status != trial.StatusSucceeded {
			r.Store.AddBack(iface)
		} else {
			childID := *nextID
			*nextID++
			ref := r.stateRef(iface+1, childID)
			if err := r.Sim.WriteState(ref); err != nil {
				return err
			}
			r.Store.AddTrialSuccess(iface)
			successRefs = append(successRefs, ref)
			successIDs = append(successIDs, childID)
		}

		if i < ntrial[iface]-1 {
			if err := r.Sim.ReadState(keep); err != nil {
				return err
			}
		}
	}

	nsuccess := len(successRefs)
	weightNow := weight * float64(nsuccess) / float64(ntrial[iface])
	r.Store.AccumulateSuccessWeight(iface, weightNow)

	if nsuccess == 0 {
		return nil
	}

	chosen := int(ran.Int32Seed()) % nsuccess
	if chosen < 0 {
		chosen += nsuccess
	}

	for i, ref := range successRefs {
		if i == chosen {
			continue
		}
		if err := r.Sim.DeleteState(ref); err != nil {
			return err
		}
		r.Store.AddDrop(iface)
	}

	if err := r.Sim.ReadState(successRefs[chosen]); err != nil {
		return err
	}

	if err := rosenbluthRecurse(r, tr, ran, iface+1, successIDs[chosen], nextID, weightNow, n, ntrial); err != nil {
		return err
	}

	return r.Sim.DeleteState(successRefs[chosen])
}
