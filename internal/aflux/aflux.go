// Package aflux implements the initial-flux estimator: it records, for
// each local initialisation trial, whether the trial succeeded or timed
// out before reaching the first interface, the time it took, and how
// many times the order parameter re-crossed lambda_A along the way.
// Reduced across proxies, these give the Phi_A flux estimate that
// anchors an FFS rate calculation.
package aflux

import (
	"errors"
	"fmt"

	"github.com/EPCCed/ffs-sub000/internal/trial"
)

// ErrIndexRange is returned by SetStatus/SetTime for an out-of-range
// local trial index.
var ErrIndexRange = errors.New("aflux: trial index out of range")

// Reducer performs the cross-proxy combination an Accumulator needs:
// sum of counts, sum of times, and max of times. internal/proxygroup
// provides implementations; a single-proxy run can use an identity
// Reducer.
type Reducer interface {
	SumInt(v int) (int, error)
	SumFloat64(v float64) (float64, error)
	MaxFloat64(v float64) (float64, error)
}

// Accumulator is the per-instance initial-flux estimator, mirroring
// ffs_result_aflux_t: local per-trial bookkeeping plus, after Reduce,
// the totals combined across every proxy in the instance.
type Accumulator struct {
	status []trial.Status
	t0     []float64

	ncrossLocal int
	neqLocal    int

	// Populated by Reduce.
	NTrial   int
	NTimeout int
	NEq      int
	NSuccess int
	NCross   int
	TSum     float64
	TMax     float64
}

// New allocates an Accumulator for ntrialLocal local initial trials.
func New(ntrialLocal int) *Accumulator {
	return &Accumulator{
		status: make([]trial.Status, ntrialLocal),
		t0:     make([]float64, ntrialLocal),
	}
}

// RecordCrossing notes one crossing of lambda_A (ffs_result_aflux_ncross_add).
func (a *Accumulator) RecordCrossing() { a.ncrossLocal++ }

// LocalCrossings returns the running local crossing count
// (ffs_result_aflux_ncross_local), used by ffs_trial_init to derive the
// skip-rule harvest decision.
func (a *Accumulator) LocalCrossings() int { return a.ncrossLocal }

// RecordEquilibration notes one equilibration run (ffs_result_aflux_neq_add).
func (a *Accumulator) RecordEquilibration() { a.neqLocal++ }

// SetStatus records the final status of local initial trial n.
func (a *Accumulator) SetStatus(n int, status trial.Status) error {
	if n < 0 || n >= len(a.status) {
		return fmt.Errorf("%w: %d", ErrIndexRange, n)
	}
	a.status[n] = status
	return nil
}

// SetTime records the elapsed duration of local initial trial n.
func (a *Accumulator) SetTime(n int, t float64) error {
	if n < 0 || n >= len(a.t0) {
		return fmt.Errorf("%w: %d", ErrIndexRange, n)
	}
	a.t0[n] = t
	return nil
}

// Reduce combines the local per-trial records into totals, using r to
// perform the cross-proxy sums/max (ffs_result_aflux_reduce).
func (a *Accumulator) Reduce(r Reducer) error {
	var nsuccessLocal, ntoLocal int
	var tsumLocal, tmaxLocal float64

	for i, s := range a.status {
		tsumLocal += a.t0[i]
		if a.t0[i] > tmaxLocal {
			tmaxLocal = a.t0[i]
		}
		if s == trial.StatusSucceeded {
			nsuccessLocal++
		}
		if s == trial.StatusTimedOut {
			ntoLocal++
		}
	}

	var err error
	if a.NSuccess, err = r.SumInt(nsuccessLocal); err != nil {
		return err
	}
	if a.NTimeout, err = r.SumInt(ntoLocal); err != nil {
		return err
	}
	if a.TSum, err = r.SumFloat64(tsumLocal); err != nil {
		return err
	}
	if a.TMax, err = r.MaxFloat64(tmaxLocal); err != nil {
		return err
	}
	if a.NTrial, err = r.SumInt(len(a.status)); err != nil {
		return err
	}
	if a.NEq, err = r.SumInt(a.neqLocal); err != nil {
		return err
	}
	if a.NCross, err = r.SumInt(a.ncrossLocal); err != nil {
		return err
	}

	return nil
}
