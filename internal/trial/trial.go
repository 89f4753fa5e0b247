// Package trial implements the primitive moves shared by every FFS
// algorithm driver: running a simulation forward to a target time, and
// running it forward until the order parameter leaves a [lambda_min,
// lambda_max) window.
package trial

import (
	"fmt"

	"github.com/EPCCed/ffs-sub000/internal/simfacade"
)

// Status is the outcome of a trial advance, mirroring the
// FFS_TRIAL_* status codes of original_source/src/ffs/ffs_trial.h.
type Status int

const (
	StatusInProgress Status = iota
	StatusSucceeded
	StatusTimedOut
	StatusWentBackwards
	StatusWasPruned
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusSucceeded:
		return "succeeded"
	case StatusTimedOut:
		return "timed_out"
	case StatusWentBackwards:
		return "went_backwards"
	case StatusWasPruned:
		return "was_pruned"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Trial wraps a simulation backend with the step-batching parameters
// the advance primitives need: how many native steps to run between
// lambda checks.
type Trial struct {
	Sim         simfacade.Facade
	NStepLambda int
}

// New builds a Trial driving sim, checking lambda every nStepLambda
// native steps (ffs_trial_run_to_lambda's trial->nsteplambda).
func New(sim simfacade.Facade, nStepLambda int) *Trial {
	if nStepLambda < 1 {
		nStepLambda = 1
	}
	return &Trial{Sim: sim, NStepLambda: nStepLambda}
}

// AdvanceToTime runs the simulation forward, at most nStepMax native
// steps, until its clock reaches teq. It mirrors
// ffs_trial_run_to_time: falling out of the loop without reaching teq
// is a timeout, not an error.
func (t *Trial) AdvanceToTime(teq float64, nStepMax int) (Status, error) {
	status := StatusTimedOut

	for n := 0; n < nStepMax; n++ {
		if err := t.Sim.Execute(); err != nil {
			return StatusInProgress, err
		}
		tm, err := t.Sim.Time()
		if err != nil {
			return StatusInProgress, err
		}
		if tm >= teq {
			status = StatusSucceeded
			break
		}
	}

	return status, nil
}

// AdvanceToLambda runs the simulation forward in batches of
// NStepLambda native steps, checking lambda after each batch, until
// one of three things happens: lambda falls below lambdaMin (went
// backwards), lambda reaches or exceeds lambdaMax (succeeded), or
// nStepMax native steps have elapsed (timed out). It mirrors
// ffs_trial_run_to_lambda.
func (t *Trial) AdvanceToLambda(lambdaMin, lambdaMax float64, nStepMax int) (Status, error) {
	status := StatusInProgress
	nstep := 0

	for status == StatusInProgress {
		lambda, err := t.Sim.Lambda()
		if err != nil {
			return StatusInProgress, err
		}

		switch {
		case nstep >= nStepMax:
			status = StatusTimedOut
		case lambda < lambdaMin:
			status = StatusWentBackwards
		case lambda >= lambdaMax:
			status = StatusSucceeded
		}

		if status != StatusInProgress {
			break
		}

		for n := 0; n < t.NStepLambda; n++ {
			if err := t.Sim.Execute(); err != nil {
				return StatusInProgress, err
			}
			nstep++
		}
	}

	return status, nil
}
