// Package prune implements the FFS pruning protocol: when a trial falls
// back below an earlier interface, a biased coin decides whether to
// abandon it outright or relaunch it from that earlier interface with
// its weight boosted by 1/(1-pprune) to keep the overall estimator
// unbiased.
package prune

import (
	"fmt"

	"github.com/EPCCed/ffs-sub000/internal/interfaceset"
	"github.com/EPCCed/ffs-sub000/internal/rng"
	"github.com/EPCCed/ffs-sub000/internal/trial"
)

// Outcome reports how a pruning pass resolved: the final trial status,
// the interface index at which the trial was pruned (clamped to at
// least 1, matching ffs_trial_prune's "not before first interface"
// rule), and the weight after amplification.
type Outcome struct {
	Status trial.Status
	IPrune int
	Weight float64
}

// Run implements ffs_trial_prune: starting from interface, repeatedly
// offer the trial a biased coin to survive back to interface-1's
// window; on survival, amplify weight by 1/(1-pprune) and re-run to
// the [lambda(n-2), lambda(interface+1)) window. The loop stops at
// interface 2 (interfaces below 2 are pruned automatically), on a
// pruned coin flip, or as soon as the trial succeeds forward again.
func Run(tr *trial.Trial, table *interfaceset.Table, startInterface int, r *rng.LCG, weight float64, nStepMax int) (Outcome, error) {
	lambdaMax, err := table.Lambda(startInterface + 1)
	if err != nil {
		return Outcome{}, fmt.Errorf("prune: %w", err)
	}

	status := trial.StatusWasPruned
	n := startInterface

	for ; n > 2; n-- {
		random := r.Float64()
		iface, err := table.At(n - 1)
		if err != nil {
			return Outcome{}, fmt.Errorf("prune: %w", err)
		}
		probPrune := iface.PPrune

		status = trial.StatusWasPruned
		if random < probPrune {
			break
		}

		weight *= 1.0 / (1.0 - probPrune)

		lambdaMin, err := table.Lambda(n - 2)
		if err != nil {
			return Outcome{}, fmt.Errorf("prune: %w", err)
		}

		status, err = tr.AdvanceToLambda(lambdaMin, lambdaMax, nStepMax)
		if err != nil {
			return Outcome{}, err
		}

		if status == trial.StatusSucceeded {
			break
		}
	}

	if status == trial.StatusWentBackwards {
		status = trial.StatusWasPruned
	}

	iprune := n - 1
	if iprune < 1 {
		iprune = 1
	}

	return Outcome{Status: status, IPrune: iprune, Weight: weight}, nil
}
