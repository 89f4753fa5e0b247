// Package ensemble implements the finite bag of state references that
// the algorithm drivers carry between interfaces, together with
// weight-biased sampling used to pick a parent state for a new trial.
package ensemble

import (
	"errors"

	"github.com/EPCCed/ffs-sub000/internal/rng"
)

// ErrEmpty is returned by SampleWeighted when there are no successful
// members, or their weights sum to zero, to draw from.
var ErrEmpty = errors.New("ensemble: no positive-weight members to sample")

// Ensemble is a parallel-array bag of (trial id, weight) pairs. Only the
// first NSuccess entries are populated; NMax bounds the capacity
// allocated up front, mirroring ffs_ensemble_t's fixed-size traj/wt
// arrays.
type Ensemble struct {
	TrialID  []int
	Weight   []float64
	NSuccess int
	NMax     int
}

// New allocates an ensemble with capacity for nmax members.
func New(nmax int) *Ensemble {
	return &Ensemble{
		TrialID: make([]int, nmax),
		Weight:  make([]float64, nmax),
		NMax:    nmax,
	}
}

// Add appends a successful member, provided capacity remains.
func (e *Ensemble) Add(trialID int, weight float64) bool {
	if e.NSuccess >= e.NMax {
		return false
	}
	e.TrialID[e.NSuccess] = trialID
	e.Weight[e.NSuccess] = weight
	e.NSuccess++
	return true
}

// SumWeights returns the sum of weights over the successful members.
func (e *Ensemble) SumWeights() float64 {
	var sum float64
	for i := 0; i < e.NSuccess; i++ {
		sum += e.Weight[i]
	}
	return sum
}

// SampleWeighted draws a uniform deviate from r and walks the prefix sum
// of weights to find the member it falls under, so that each member i is
// drawn with probability Weight[i] / SumWeights().
func (e *Ensemble) SampleWeighted(r *rng.LCG) (int, error) {
	if e.NSuccess == 0 {
		return 0, ErrEmpty
	}

	sum := e.SumWeights()
	if sum <= 0 {
		return 0, ErrEmpty
	}

	target := sum * r.Float64()

	running := e.Weight[0]
	idx := 0
	for running < target && idx < e.NSuccess-1 {
		idx++
		running += e.Weight[idx]
	}
	return idx, nil
}
