package algorithm

// region classifies where the order parameter sits relative to the
// two basin boundaries.
type region int

const (
	regionA region = iota
	regionB
	regionTransition
)

func classify(lambda, lambdaA, lambdaB float64) region {
	switch {
	case lambda < lambdaA:
		return regionA
	case lambda > lambdaB:
		return regionB
	default:
		return regionTransition
	}
}

// BruteForceSummary is the outcome of an unbiased brute-force run: how
// many A-to-B transitions were observed, the total simulated time, the
// total time spent in basin A, and the resulting rate estimate
// (transitions per unit time spent in A).
type BruteForceSummary struct {
	NAtoB   int
	TimeInA float64
	TimeRun float64
	Rate    float64
}

// BruteForce runs the unbiased reference simulation forward for
// runTime (in nStepLambda-sized batches) and counts A-to-B
// transitions directly, with no interfaces or pruning, as the
// validation baseline the FFS estimators are checked against. It
// mirrors ffs_brute_force_run's was_a/was_b/now_a/now_b event
// classification.
func BruteForce(r *Runner, lambdaA, lambdaB, runTime float64) (BruteForceSummary, error) {
	if err := r.Sim.InitState(); err != nil {
		return BruteForceSummary{}, err
	}

	lambda, err := r.Sim.Lambda()
	if err != nil {
		return BruteForceSummary{}, err
	}
	was := classify(lambda, lambdaA, lambdaB)

	var summary BruteForceSummary
	var tInA float64
	var lastA float64
	lastBasin := was

	for {
		tm, err := r.Sim.Time()
		if err != nil {
			return BruteForceSummary{}, err
		}
		if tm >= runTime {
			break
		}

		for n := 0; n < r.NStepLambda; n++ {
			if err := r.Sim.Execute(); err != nil {
				return BruteForceSummary{}, err
			}
		}

		lambda, err = r.Sim.Lambda()
		if err != nil {
			return BruteForceSummary{}, err
		}
		tm, err = r.Sim.Time()
		if err != nil {
			return BruteForceSummary{}, err
		}
		now := classify(lambda, lambdaA, lambdaB)

		if was != regionA && now == regionA {
			lastA = tm
		}
		if was == regionA && now != regionA {
			tInA += tm - lastA
		}
		if was != regionB && now == regionB && lastBasin == regionA {
			summary.NAtoB++
		}
		if now != regionTransition {
			lastBasin = now
		}

		was = now
		summary.TimeRun = tm
	}

	if was == regionA {
		tInA += summary.TimeRun - lastA
	}
	summary.TimeInA = tInA
	if tInA > 0 {
		summary.Rate = float64(summary.NAtoB) / tInA
	}

	return summary, nil
}
