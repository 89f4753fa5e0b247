// Package testsim provides an in-memory Facade implementation used by
// the package tests and by the end-to-end scenarios from the testable
// properties (symmetric random walk and periodic-drift flux source). It
// plays the same role as original_source/src/sim/sim_test.c: a minimal,
// fully deterministic-given-its-seed stand-in a driver can be pointed at
// without linking a real physical model.
package testsim

import (
	"errors"

	"github.com/EPCCed/ffs-sub000/internal/rng"
	"github.com/EPCCed/ffs-sub000/internal/simfacade"
)

// ErrNoSuchState is returned by ReadState for a StateRef that was never
// written.
var ErrNoSuchState = errors.New("testsim: no state recorded for ref")

type checkpoint struct {
	lambda float64
	time   float64
	rng    int64
}

// RandomWalk is a symmetric ±1 random walk in the order parameter,
// advancing time by 1 per step, as used in scenarios S1/S2/S4.
type RandomWalk struct {
	lambda float64
	time   float64
	r      *rng.LCG

	store map[string]checkpoint
}

// NewRandomWalk builds a walk seeded at lambda 0, time 0.
func NewRandomWalk(seed int64) (*RandomWalk, error) {
	r, err := rng.New(seed)
	if err != nil {
		return nil, err
	}
	return &RandomWalk{r: r, store: make(map[string]checkpoint)}, nil
}

func (s *RandomWalk) Execute() error {
	if s.r.Float64() < 0.5 {
		s.lambda++
	} else {
		s.lambda--
	}
	s.time++
	return nil
}

func (s *RandomWalk) Lambda() (float64, error) { return s.lambda, nil }
func (s *RandomWalk) Time() (float64, error)   { return s.time, nil }

func (s *RandomWalk) InitState() error {
	s.lambda = 0
	s.time = 0
	return nil
}

func (s *RandomWalk) ReadState(ref simfacade.StateRef) error {
	cp, ok := s.store[ref.Stub()]
	if !ok {
		return ErrNoSuchState
	}
	s.lambda = cp.lambda
	s.time = cp.time
	return s.r.Reseed(cp.rng)
}

func (s *RandomWalk) WriteState(ref simfacade.StateRef) error {
	s.store[ref.Stub()] = checkpoint{lambda: s.lambda, time: s.time, rng: s.r.State()}
	return nil
}

func (s *RandomWalk) DeleteState(ref simfacade.StateRef) error {
	delete(s.store, ref.Stub())
	return nil
}

func (s *RandomWalk) SeedPut(seed int32) error {
	return s.r.Reseed(int64(seed))
}

var _ simfacade.Facade = (*RandomWalk)(nil)

// PeriodicDrift deterministically oscillates lambda between lambdaA and
// lambdaA+epsilon with period T, one unit of time per Execute, as used
// by scenario S3 to exercise the initial-flux estimator against a known
// crossing count.
type PeriodicDrift struct {
	lambdaA float64
	epsilon float64
	period  float64

	time   float64
	lambda float64

	store map[string]checkpoint
}

// NewPeriodicDrift builds a drift source starting at lambdaA.
func NewPeriodicDrift(lambdaA, epsilon, period float64) *PeriodicDrift {
	return &PeriodicDrift{
		lambdaA: lambdaA,
		epsilon: epsilon,
		period:  period,
		lambda:  lambdaA,
		store:   make(map[string]checkpoint),
	}
}

func (s *PeriodicDrift) Execute() error {
	s.time++
	phase := s.time - s.period*float64(int(s.time/s.period))
	half := s.period / 2
	if phase < half {
		s.lambda = s.lambdaA + s.epsilon*(phase/half)
	} else {
		s.lambda = s.lambdaA + s.epsilon*(1-(phase-half)/half)
	}
	return nil
}

func (s *PeriodicDrift) Lambda() (float64, error) { return s.lambda, nil }
func (s *PeriodicDrift) Time() (float64, error)   { return s.time, nil }

func (s *PeriodicDrift) InitState() error {
	s.time = 0
	s.lambda = s.lambdaA
	return nil
}

func (s *PeriodicDrift) ReadState(ref simfacade.StateRef) error {
	cp, ok := s.store[ref.Stub()]
	if !ok {
		return ErrNoSuchState
	}
	s.lambda = cp.lambda
	s.time = cp.time
	return nil
}

func (s *PeriodicDrift) WriteState(ref simfacade.StateRef) error {
	s.store[ref.Stub()] = checkpoint{lambda: s.lambda, time: s.time}
	return nil
}

func (s *PeriodicDrift) DeleteState(ref simfacade.StateRef) error {
	delete(s.store, ref.Stub())
	return nil
}

func (s *PeriodicDrift) SeedPut(seed int32) error { return nil }

var _ simfacade.Facade = (*PeriodicDrift)(nil)
