// Package config loads and validates the YAML description of an FFS
// run: the interface ladder (or the lambda_a/lambda_b auto-spacing
// shorthand for it), trial counts, the initial-flux estimator
// parameters, and the driver/algorithm selection.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/EPCCed/ffs-sub000/internal/rng"
)

// Sentinel validation errors, following the teacher's typed
// package-level error pattern so callers can errors.Is against a
// specific failure rather than parsing a message string.
var (
	ErrInvalidAlgorithm   = errors.New("config: unknown algorithm")
	ErrMissingInterfaces  = errors.New("config: must specify either interfaces or lambda_a/lambda_b/n_lambda")
	ErrInvalidNTrial      = errors.New("config: ntrial must be positive for every interface")
	ErrNTrialNotDivisible = errors.New("config: ntrial must be evenly divisible by nproxy")
	ErrInvalidNProxy      = errors.New("config: nproxy must be >= 1")
	ErrInvalidBaseSeed    = errors.New("config: base_seed must be in (0, m)")
)

// Algorithm names the driver an instance runs.
type Algorithm string

const (
	AlgorithmDirect     Algorithm = "direct"
	AlgorithmBranched   Algorithm = "branched"
	AlgorithmRosenbluth Algorithm = "rosenbluth"
	AlgorithmBruteForce Algorithm = "bruteforce"
)

func (a Algorithm) valid() bool {
	switch a {
	case AlgorithmDirect, AlgorithmBranched, AlgorithmRosenbluth, AlgorithmBruteForce:
		return true
	default:
		return false
	}
}

// InterfaceSpec is one line of the YAML interfaces: list, or one
// synthesized step of the lambda_a/lambda_b auto-spacing shorthand.
type InterfaceSpec struct {
	Lambda       float64 `yaml:"lambda"`
	NTrial       int     `yaml:"ntrial"`
	NStateTarget int     `yaml:"nstate_target"`
	PPrune       float64 `yaml:"pprune"`
}

// InitParameters configures the initial-flux estimator (ffs_init_t).
type InitParameters struct {
	NTrials     int     `yaml:"ntrials"`
	NStepMax    int     `yaml:"nstepmax"`
	ProbAccept  float64 `yaml:"prob_accept"`
	NSkip       int     `yaml:"nskip"`
	Teq         float64 `yaml:"teq"`
	Independent bool    `yaml:"independent"`
}

// Parameters is the full, validated configuration for one FFS
// instance run.
type Parameters struct {
	Algorithm Algorithm `yaml:"algorithm"`

	LambdaA *float64 `yaml:"lambda_a,omitempty"`
	LambdaB *float64 `yaml:"lambda_b,omitempty"`
	NLambda int       `yaml:"n_lambda,omitempty"`

	Interfaces []InterfaceSpec `yaml:"interfaces,omitempty"`

	Init InitParameters `yaml:"init"`

	BaseSeed    int64 `yaml:"base_seed"`
	NStepMax    int   `yaml:"nstepmax"`
	NStepLambda int   `yaml:"nsteplambda"`
	NProxy      int   `yaml:"nproxy"`
}

// Default returns a small, fast-running configuration suitable for the
// toy 3-interface symmetric-chain scenarios (ntrial=100 per interface,
// base_seed=1), mirroring the teacher's Local()-style "small but
// functional" preset.
func Default() Parameters {
	return Parameters{
		Algorithm:   AlgorithmDirect,
		NLambda:     3,
		Init:        InitParameters{NTrials: 100, NStepMax: 1_000_000, ProbAccept: 1.0, NSkip: 1, Teq: 0},
		BaseSeed:    1,
		NStepMax:    1_000_000,
		NStepLambda: 1,
		NProxy:      1,
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Parameters{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := p.expandAutoSpacing(); err != nil {
		return Parameters{}, err
	}

	if err := p.Valid(); err != nil {
		return Parameters{}, err
	}

	return p, nil
}

// expandAutoSpacing synthesizes an evenly spaced interface ladder from
// lambda_a/lambda_b/n_lambda when an explicit interfaces: block isn't
// given — the supplemented auto-spacing feature from original_source's
// parameter file convention of giving only the basin boundaries for a
// simple run.
func (p *Parameters) expandAutoSpacing() error {
	if len(p.Interfaces) > 0 {
		return nil
	}
	if p.LambdaA == nil || p.LambdaB == nil || p.NLambda < 2 {
		return ErrMissingInterfaces
	}

	a, b, n := *p.LambdaA, *p.LambdaB, p.NLambda
	step := (b - a) / float64(n-1)

	p.Interfaces = make([]InterfaceSpec, n)
	for i := 0; i < n; i++ {
		pprune := 0.5
		if i == 0 {
			pprune = 1.0
		}
		if i == n-1 {
			pprune = 0.0
		}
		p.Interfaces[i] = InterfaceSpec{
			Lambda:       a + step*float64(i),
			NTrial:       p.Init.NTrials,
			NStateTarget: p.Init.NTrials,
			PPrune:       pprune,
		}
	}

	return nil
}

// Valid checks the parameters for internal consistency.
func (p Parameters) Valid() error {
	if !p.Algorithm.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAlgorithm, p.Algorithm)
	}
	if len(p.Interfaces) < 2 {
		return ErrMissingInterfaces
	}
	if p.NProxy < 1 {
		return ErrInvalidNProxy
	}
	for _, iface := range p.Interfaces {
		if iface.NTrial <= 0 {
			return ErrInvalidNTrial
		}
		if iface.NTrial%p.NProxy != 0 {
			return fmt.Errorf("%w: ntrial %d, nproxy %d", ErrNTrialNotDivisible, iface.NTrial, p.NProxy)
		}
	}
	if p.Init.NTrials > 0 && p.Init.NTrials%p.NProxy != 0 {
		return fmt.Errorf("%w: init.ntrials %d, nproxy %d", ErrNTrialNotDivisible, p.Init.NTrials, p.NProxy)
	}
	if p.BaseSeed <= 0 || p.BaseSeed >= rng.DefaultM {
		return ErrInvalidBaseSeed
	}
	return nil
}
