// Package result accumulates the per-interface counters an FFS run
// produces — trial successes, accumulated weight, prunes, timeouts and
// retained state counts — and renders them into the conditional
// probability P(B|A) and the human-readable summary table.
package result

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/EPCCed/ffs-sub000/internal/aflux"
	"github.com/EPCCed/ffs-sub000/internal/interfaceset"
)

// Store holds the per-interface counters for one instance, indexed
// 1..N the same way interfaceset.Table is. It mirrors the bookkeeping
// original_source spreads across ffs_result_t's trial_success,
// weight_sum, nprune and nto arrays.
type Store struct {
	n                int
	nStateKeep       []int
	trialSuccess     []int
	weightSum        []float64
	successWeightSum []float64
	nPrune           []int
	nTimeout         []int
	nStart           []int
	nDrop            []int
	nBack            []int
}

// New allocates a Store for n interfaces (indices 1..n; index 0 is an
// unused sentinel slot kept for symmetry with interfaceset.Table).
func New(n int) *Store {
	return &Store{
		n:                n,
		nStateKeep:       make([]int, n+1),
		trialSuccess:     make([]int, n+1),
		weightSum:        make([]float64, n+1),
		successWeightSum: make([]float64, n+1),
		nPrune:           make([]int, n+1),
		nTimeout:         make([]int, n+1),
		nStart:           make([]int, n+1),
		nDrop:            make([]int, n+1),
		nBack:            make([]int, n+1),
	}
}

// AddTrialSuccess records one more trial reaching interface idx
// (ffs_result_trial_success_add). The Rosenbluth driver instead records
// each success against the interface the trial was launched from, the
// same index as its AddStart/AddBack counts.
func (s *Store) AddTrialSuccess(idx int) { s.trialSuccess[idx]++ }

// AccumulateWeight adds w to the weight accumulated at interface idx
// (ffs_result_weight_accum).
func (s *Store) AccumulateWeight(idx int, w float64) { s.weightSum[idx] += w }

// AccumulateSuccessWeight adds w to the Rosenbluth success-weight
// accumulator at interface idx (ffs_result_success_weight_accum): the
// weight contributed by trials that actually succeeded forward, as
// opposed to AccumulateWeight's running total over every surviving
// trial.
func (s *Store) AccumulateSuccessWeight(idx int, w float64) { s.successWeightSum[idx] += w }

// SuccessWeight returns the Rosenbluth success-weight accumulator at
// interface idx.
func (s *Store) SuccessWeight(idx int) float64 { return s.successWeightSum[idx] }

// AddPrune records one more trial pruned at interface idx
// (ffs_result_prune_add).
func (s *Store) AddPrune(idx int) { s.nPrune[idx]++ }

// AddTimeout records n more timeouts at interface idx (ffs_result_nto_add).
func (s *Store) AddTimeout(idx, n int) { s.nTimeout[idx] += n }

// AddStart records one more trial attempt started at interface idx
// (ffs_result_nstart_add), used by the Rosenbluth driver where every
// one of the k branches per state counts as a start.
func (s *Store) AddStart(idx int) { s.nStart[idx]++ }

// AddBack records one more trial launched from interface idx that failed
// to reach interface idx+1 (ffs_result_nback_add).
func (s *Store) AddBack(idx int) { s.nBack[idx]++ }

// AddDrop records one more surviving-but-unselected Rosenbluth branch
// discarded at interface idx (ffs_result_ndrop_add).
func (s *Store) AddDrop(idx int) { s.nDrop[idx]++ }

func (s *Store) Start(idx int) int { return s.nStart[idx] }
func (s *Store) Back(idx int) int  { return s.nBack[idx] }
func (s *Store) Drop(idx int) int  { return s.nDrop[idx] }

// SetNStateKeep records how many states were retained at interface idx
// after decimation (ffs_result_nkeep_set).
func (s *Store) SetNStateKeep(idx, n int) { s.nStateKeep[idx] = n }

func (s *Store) NStateKeep(idx int) int   { return s.nStateKeep[idx] }
func (s *Store) TrialSuccess(idx int) int { return s.trialSuccess[idx] }
func (s *Store) Weight(idx int) float64   { return s.weightSum[idx] }
func (s *Store) Prune(idx int) int        { return s.nPrune[idx] }
func (s *Store) Timeout(idx int) int      { return s.nTimeout[idx] }

// Reducer performs the cross-proxy sums a Store needs when combining
// local counters into instance totals.
type Reducer interface {
	SumInt(v int) (int, error)
	SumFloat64(v float64) (float64, error)
}

// Reduce combines every local counter across proxies in place, via r.
func (s *Store) Reduce(r Reducer) error {
	for i := 0; i <= s.n; i++ {
		var err error
		if s.nStateKeep[i], err = r.SumInt(s.nStateKeep[i]); err != nil {
			return err
		}
		if s.trialSuccess[i], err = r.SumInt(s.trialSuccess[i]); err != nil {
			return err
		}
		if s.weightSum[i], err = r.SumFloat64(s.weightSum[i]); err != nil {
			return err
		}
		if s.successWeightSum[i], err = r.SumFloat64(s.successWeightSum[i]); err != nil {
			return err
		}
		if s.nPrune[i], err = r.SumInt(s.nPrune[i]); err != nil {
			return err
		}
		if s.nTimeout[i], err = r.SumInt(s.nTimeout[i]); err != nil {
			return err
		}
		if s.nStart[i], err = r.SumInt(s.nStart[i]); err != nil {
			return err
		}
		if s.nBack[i], err = r.SumInt(s.nBack[i]); err != nil {
			return err
		}
		if s.nDrop[i], err = r.SumInt(s.nDrop[i]); err != nil {
			return err
		}
	}
	return nil
}

// Summary is the final outcome of rendering a run: the conditional
// success probability, the initial flux, and their product (the rate).
type Summary struct {
	PBA  float64
	Flux float64
	Rate float64
}

// Render writes the per-interface table (ffs_direct_results' "index
// lambda states-kept trials success pruned timeout prod.of.weights"
// layout) to w, and returns the final P(B|A)/flux/rate summary.
func Render(w io.Writer, table *interfaceset.Table, ntrialPerInterface []int, store *Store, flux *aflux.Accumulator) (Summary, error) {
	n := table.N()

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "\nConditional probabilities")
	fmt.Fprintln(tw, strings.Repeat("-", 25))
	fmt.Fprintln(tw, "index\tlambda\tstates kept\ttrials\tsuccess\tpruned\ttimeout\tprod.weights")

	plambda := 1.0
	var nsumTrial, nsumSuccess, nsumPrune, nsumTimeout int

	for i := 1; i <= n; i++ {
		lambda, err := table.Lambda(i)
		if err != nil {
			return Summary{}, err
		}

		wt := store.Weight(i)
		nstates := store.NStateKeep(i)
		nprune := store.Prune(i)
		nto := store.Timeout(i)
		ntry := ntrialPerInterface[i]

		if i > 1 {
			prevNtry := ntrialPerInterface[i-1]
			if wt > float64(prevNtry) {
				wt = float64(prevNtry) // can happen with pruning amplification
			}
			if prevNtry > 0 {
				plambda *= wt / float64(prevNtry)
			}
		}

		nsuccess := 0
		if i < n {
			nsuccess = store.TrialSuccess(i + 1)
			if nsuccess == 0 {
				plambda = 0.0
			}
		}

		fmt.Fprintf(tw, "%d\t%.4e\t%d\t%d\t%d\t%d\t%d\t%.4e\n",
			i, lambda, nstates, ntry, nsuccess, nprune, nto, plambda)

		nsumTrial += ntry
		nsumSuccess += nsuccess
		nsumPrune += nprune
		nsumTimeout += nto
	}

	fmt.Fprintln(tw, strings.Repeat("-", 25))
	fmt.Fprintf(tw, "(totals)\t\t\t%d\t%d\t%d\t%d\t\n", nsumTrial, nsumSuccess, nsumPrune, nsumTimeout)

	if err := tw.Flush(); err != nil {
		return Summary{}, err
	}

	fluxEstimate := 0.0
	if flux.TSum > 0 {
		fluxEstimate = float64(flux.NCross) / flux.TSum
	}

	summary := Summary{PBA: plambda, Flux: fluxEstimate, Rate: fluxEstimate * plambda}

	fmt.Fprintf(w, "\nProbability P(B|A):     %12.6e\n", summary.PBA)
	fmt.Fprintf(w, "Flux * P(B|A):          %12.6e\n", summary.Rate)

	return summary, nil
}

// RenderRosenbluth writes the Rosenbluth-specific table
// (ffs_rosenbluth_results' "trials success pruned to dropped
// prod.of.weights" layout, keyed off the per-interface start/success
// counts rather than the direct driver's ensemble sizes) and returns
// the P(B|A)/flux/rate summary. The reporting formula differs from
// Render: P(B|A) accumulates as a running product of
// SuccessWeight(n-1)/Weight(n-1), since each interface's Rosenbluth
// weight already folds in the branching factor.
func RenderRosenbluth(w io.Writer, table *interfaceset.Table, store *Store, flux *aflux.Accumulator) (Summary, error) {
	n := table.N()

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "\nInstance results (Rosenbluth)")
	fmt.Fprintln(tw, strings.Repeat("-", 25))
	fmt.Fprintln(tw, "index\tlambda\ttrials\tsuccess\tback\tpruned\ttimeout\tdropped\tprod.weights")

	plambda := 1.0
	var nsumTrial, nsumSuccess, nsumBack, nsumTimeout int

	for i := 1; i <= n; i++ {
		lambda, err := table.Lambda(i)
		if err != nil {
			return Summary{}, err
		}

		if i > 1 {
			wt := store.Weight(i - 1)
			swt := store.SuccessWeight(i - 1)
			if wt > 0 {
				plambda *= swt / wt
			}
		}

		ntry := store.Start(i)
		nsuccess := store.TrialSuccess(i)
		nback := store.Back(i)
		nto := store.Timeout(i)
		ndrop := store.Drop(i)

		fmt.Fprintf(tw, "%d\t%.4e\t%d\t%d\t%d\t%d\t%d\t%d\t%.4e\n",
			i, lambda, ntry, nsuccess, nback, store.Prune(i), nto, ndrop, plambda)

		nsumTrial += ntry
		nsumSuccess += nsuccess
		nsumBack += nback
		nsumTimeout += nto
	}

	fmt.Fprintln(tw, strings.Repeat("-", 25))
	fmt.Fprintf(tw, "(totals)\t\t%d\t%d\t%d\t\t%d\t\t\n", nsumTrial, nsumSuccess, nsumBack, nsumTimeout)

	if err := tw.Flush(); err != nil {
		return Summary{}, err
	}

	fluxEstimate := 0.0
	if flux.TSum > 0 {
		fluxEstimate = float64(flux.NCross) / flux.TSum
	}

	summary := Summary{PBA: plambda, Flux: fluxEstimate, Rate: fluxEstimate * plambda}

	fmt.Fprintf(w, "\nProbability P(B|A):     %12.6e\n", summary.PBA)
	fmt.Fprintf(w, "Flux * P(B|A):          %12.6e\n", summary.Rate)

	return summary, nil
}
