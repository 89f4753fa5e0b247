// Package instance drives one FFS instance through its lifecycle:
// created, started, configured, running, reduced, stopped. It is the
// Go analogue of ffs_inst_t plus the driver dispatch that originally
// lived in ffs_run/ffs_control.c, wiring together the interface table,
// the chosen algorithm, the result store and the initial-flux
// estimator.
package instance

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"

	"github.com/EPCCed/ffs-sub000/internal/aflux"
	"github.com/EPCCed/ffs-sub000/internal/algorithm"
	"github.com/EPCCed/ffs-sub000/internal/applog"
	"github.com/EPCCed/ffs-sub000/internal/config"
	"github.com/EPCCed/ffs-sub000/internal/ensemble"
	"github.com/EPCCed/ffs-sub000/internal/interfaceset"
	"github.com/EPCCed/ffs-sub000/internal/proxygroup"
	"github.com/EPCCed/ffs-sub000/internal/result"
	"github.com/EPCCed/ffs-sub000/internal/rng"
	"github.com/EPCCed/ffs-sub000/internal/simfacade"
	"github.com/EPCCed/ffs-sub000/internal/telemetry"
)

// State is one point in the instance lifecycle.
type State int

const (
	StateCreated State = iota
	StateStarted
	StateConfigured
	StateRunning
	StateReduced
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateConfigured:
		return "configured"
	case StateRunning:
		return "running"
	case StateReduced:
		return "reduced"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrWrongState is returned when a lifecycle method is called out of
// order (e.g. Run before Configure).
var ErrWrongState = errors.New("instance: operation not valid in current state")

// Factory builds a fresh simulation backend for one proxy of an
// instance, playing the role of original_source's factory_make.
type Factory func(proxyRank int) (simfacade.Facade, error)

// Reducer performs the cross-proxy combination the result store and
// the initial-flux accumulator need. proxygroup.Local satisfies it
// trivially for a single-proxy run; a *proxygroup.Member, one per
// goroutine in a proxygroup.Group, satisfies it for a real multi-proxy
// run.
type Reducer interface {
	SumInt(v int) (int, error)
	SumFloat64(v float64) (float64, error)
	MaxFloat64(v float64) (float64, error)
}

// Instance is a single FFS rate-calculation run, bound to an id, an
// interface table, a result store and a simulation factory, stepping
// through the created->started->configured->running->reduced->stopped
// states in order.
type Instance struct {
	ID  int
	Log applog.Logger

	state State

	params  config.Parameters
	table   *interfaceset.Table
	store   *result.Store
	flux    *aflux.Accumulator
	sim     simfacade.Facade
	factory Factory
	reducer Reducer
	metrics *telemetry.Metrics

	Summary result.Summary
}

// SetMetrics attaches a telemetry collector set that Stop populates with
// the final per-interface and flux/P(B|A) figures. Optional; a nil
// collector (the default) means no metrics are published.
func (inst *Instance) SetMetrics(m *telemetry.Metrics) { inst.metrics = m }

// New creates an instance in StateCreated.
func New(id int, log applog.Logger) *Instance {
	if log == nil {
		log = applog.NoOp{}
	}
	return &Instance{ID: id, Log: log, state: StateCreated, reducer: proxygroup.Local{}}
}

// State returns the current lifecycle state.
func (inst *Instance) State() State { return inst.state }

// Start transitions created -> started, recording nothing beyond the
// lifecycle move itself (ffs_inst_start's role once MPI proxy setup is
// removed: in a single-process Go run there is no proxy handshake to
// perform here).
func (inst *Instance) Start() error {
	if inst.state != StateCreated {
		return fmt.Errorf("%w: Start requires %s, have %s", ErrWrongState, StateCreated, inst.state)
	}
	inst.state = StateStarted
	return nil
}

// Configure transitions started -> configured: parses the interface
// ladder out of params and builds proxy 0's simulation backend via fac.
// fac is retained so Run can spin up the remaining NProxy-1 proxies for
// the initial-flux estimator's parallel phase.
func (inst *Instance) Configure(params config.Parameters, fac Factory) error {
	if inst.state != StateStarted {
		return fmt.Errorf("%w: Configure requires %s, have %s", ErrWrongState, StateStarted, inst.state)
	}

	defs := make([]interfaceset.Interface, len(params.Interfaces))
	for i, d := range params.Interfaces {
		defs[i] = interfaceset.Interface{
			Lambda:       d.Lambda,
			NTrial:       d.NTrial,
			NStateTarget: d.NStateTarget,
			PPrune:       d.PPrune,
		}
	}

	table, err := interfaceset.New(defs)
	if err != nil {
		return err
	}

	sim, err := fac(0)
	if err != nil {
		return err
	}

	nproxy := params.NProxy
	if nproxy < 1 {
		nproxy = 1
	}

	inst.params = params
	inst.table = table
	inst.store = result.New(table.N())
	inst.flux = aflux.New(params.Init.NTrials / nproxy)
	inst.sim = sim
	inst.factory = fac
	inst.state = StateConfigured

	return nil
}

// Run transitions configured -> running: it first drives the
// initial-flux estimator (in parallel across NProxy proxies when
// configured for more than one) to harvest the interface-1 ensemble,
// then dispatches that ensemble to the configured algorithm driver.
func (inst *Instance) Run() error {
	if inst.state != StateConfigured {
		return fmt.Errorf("%w: Run requires %s, have %s", ErrWrongState, StateConfigured, inst.state)
	}
	inst.state = StateRunning

	n := inst.table.N()
	ntrial := make([]int, n+1)
	nstateTarget := make([]int, n+1)
	for i, d := range inst.params.Interfaces {
		ntrial[i+1] = d.NTrial
		nstateTarget[i+1] = d.NStateTarget
	}

	if inst.params.Algorithm == config.AlgorithmBruteForce {
		lambdaA, err := inst.table.Lambda(1)
		if err != nil {
			return err
		}
		lambdaB, err := inst.table.Lambda(n)
		if err != nil {
			return err
		}
		runner := inst.runner()
		summary, err := algorithm.BruteForce(runner, lambdaA, lambdaB, float64(inst.params.NStepMax))
		if err != nil {
			return err
		}
		inst.Summary = result.Summary{Rate: summary.Rate}
		return nil
	}

	init, err := inst.runInitialFlux()
	if err != nil {
		return err
	}

	runner := inst.runner()

	switch inst.params.Algorithm {
	case config.AlgorithmDirect:
		_, err := algorithm.Direct(runner, init, ntrial, nstateTarget)
		return err
	case config.AlgorithmBranched:
		return algorithm.Branched(runner, init, ntrial)
	case config.AlgorithmRosenbluth:
		return algorithm.Rosenbluth(runner, init, ntrial)
	default:
		return fmt.Errorf("instance: %w: %q", config.ErrInvalidAlgorithm, inst.params.Algorithm)
	}
}

func (inst *Instance) runner() *algorithm.Runner {
	return &algorithm.Runner{
		Sim:         inst.sim,
		Table:       inst.table,
		Store:       inst.store,
		Flux:        inst.flux,
		BaseSeed:    inst.params.BaseSeed,
		NStepMax:    inst.params.NStepMax,
		NStepLambda: inst.params.NStepLambda,
		Instance:    inst.ID,
		Proxy:       0,
	}
}

// runInitialFlux drives the C8 estimator (aflux.Run) to harvest the
// interface-1 ensemble, reducing the resulting counters across proxies
// before returning. Unlike the interface-advance algorithms, the
// initial-flux stage needs no cross-proxy ensemble gather: every proxy
// equilibrates and crosses lambda_A independently, so it is the one
// stage that genuinely runs NProxy-wide.
func (inst *Instance) runInitialFlux() (*ensemble.Ensemble, error) {
	lambdaA, err := inst.table.Lambda(1)
	if err != nil {
		return nil, err
	}
	lambdaB := math.Inf(1)
	if inst.params.LambdaB != nil {
		lambdaB = *inst.params.LambdaB
	}

	p := aflux.Params{
		Teq:        inst.params.Init.Teq,
		NStepMax:   inst.params.Init.NStepMax,
		ProbAccept: inst.params.Init.ProbAccept,
		NSkip:      inst.params.Init.NSkip,
	}

	nproxy := inst.params.NProxy
	if nproxy < 1 {
		nproxy = 1
	}
	ntrialLocal := inst.params.Init.NTrials / nproxy

	if nproxy == 1 {
		ran, err := rng.New(inst.params.BaseSeed)
		if err != nil {
			return nil, err
		}
		ens, err := aflux.Run(inst.sim, inst.flux, p, lambdaA, lambdaB, ran, inst.params.BaseSeed, 0, inst.stateRefFor(0))
		if err != nil {
			return nil, err
		}
		if err := inst.flux.Reduce(inst.reducer); err != nil {
			return nil, err
		}
		return ens, nil
	}

	return inst.runInitialFluxFanOut(lambdaA, lambdaB, p, ntrialLocal, nproxy)
}

func (inst *Instance) stateRefFor(proxy int) aflux.StateRefFor {
	return func(trialID int) simfacade.StateRef {
		return simfacade.StateRef{Instance: inst.ID, Proxy: proxy, Trial: trialID}
	}
}

// runInitialFluxFanOut spins up one goroutine per proxy, proxy 0 reusing
// the simulation built in Configure and the rest built fresh from the
// factory, each running its own local share of the initial trials and
// then all-reducing their accumulators through a proxygroup.Group.
func (inst *Instance) runInitialFluxFanOut(lambdaA, lambdaB float64, p aflux.Params, ntrialLocal, nproxy int) (*ensemble.Ensemble, error) {
	group := proxygroup.NewGroup(nproxy)
	ensembles := make([]*ensemble.Ensemble, nproxy)
	errs := make([]error, nproxy)

	var wg sync.WaitGroup
	wg.Add(nproxy)
	for rank := 0; rank < nproxy; rank++ {
		rank := rank
		go func() {
			defer wg.Done()

			sim := inst.sim
			acc := inst.flux
			if rank != 0 {
				s, err := inst.factory(rank)
				if err != nil {
					errs[rank] = err
					return
				}
				sim = s
				acc = aflux.New(ntrialLocal)
			}

			ran, err := rng.New(inst.params.BaseSeed + int64(rank) + 1)
			if err != nil {
				errs[rank] = err
				return
			}

			ens, err := aflux.Run(sim, acc, p, lambdaA, lambdaB, ran, inst.params.BaseSeed, rank*ntrialLocal, inst.stateRefFor(rank))
			if err != nil {
				errs[rank] = err
				return
			}
			ensembles[rank] = ens
			errs[rank] = acc.Reduce(group.Member(rank))
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return ensembles[0], nil
}

// Reduce transitions running -> reduced, combining the single-proxy
// interface-advance counters into totals. The initial-flux accumulator
// is already reduced by Run, across every configured proxy.
func (inst *Instance) Reduce() error {
	if inst.state != StateRunning {
		return fmt.Errorf("%w: Reduce requires %s, have %s", ErrWrongState, StateRunning, inst.state)
	}

	if err := inst.store.Reduce(inst.reducer); err != nil {
		return err
	}

	inst.state = StateReduced
	return nil
}

// Stop renders the final report to w, publishes telemetry if a
// collector set was attached, and transitions reduced -> stopped.
func (inst *Instance) Stop(w io.Writer) error {
	if inst.state != StateReduced {
		return fmt.Errorf("%w: Stop requires %s, have %s", ErrWrongState, StateReduced, inst.state)
	}

	ntrial := make([]int, inst.table.N()+1)
	for i, d := range inst.params.Interfaces {
		ntrial[i+1] = d.NTrial
	}

	var summary result.Summary
	var err error
	if inst.params.Algorithm == config.AlgorithmRosenbluth {
		summary, err = result.RenderRosenbluth(w, inst.table, inst.store, inst.flux)
	} else if inst.params.Algorithm != config.AlgorithmBruteForce {
		summary, err = result.Render(w, inst.table, ntrial, inst.store, inst.flux)
	} else {
		summary = inst.Summary
		fmt.Fprintf(w, "\nBrute-force rate estimate: %12.6e\n", summary.Rate)
	}
	if err != nil {
		return err
	}

	inst.publishMetrics(summary, ntrial)

	inst.Summary = summary
	inst.state = StateStopped
	return nil
}

func (inst *Instance) publishMetrics(summary result.Summary, ntrial []int) {
	if inst.metrics == nil {
		return
	}

	inst.metrics.Flux.Set(summary.Flux)
	inst.metrics.ProbBGivenA.Set(summary.PBA)

	if inst.params.Algorithm == config.AlgorithmBruteForce {
		return
	}

	n := inst.table.N()
	for i := 1; i <= n; i++ {
		label := strconv.Itoa(i)
		inst.metrics.TrialsTotal.WithLabelValues(label).Add(float64(ntrial[i]))
		inst.metrics.SuccessTotal.WithLabelValues(label).Add(float64(inst.store.TrialSuccess(i)))
		inst.metrics.PrunesTotal.WithLabelValues(label).Add(float64(inst.store.Prune(i)))
		inst.metrics.TimeoutsTotal.WithLabelValues(label).Add(float64(inst.store.Timeout(i)))
	}

	if lambda, err := inst.table.Lambda(n); err == nil {
		inst.metrics.CurrentLambda.Set(lambda)
	}
}
