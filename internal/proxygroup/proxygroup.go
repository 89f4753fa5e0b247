// Package proxygroup is the Go-native replacement for the MPI
// communicator original_source leans on for every cross-proxy
// collective (original_source/src/missing/mpi.h documents the same
// "does nothing useful in serial, broadcasts/reduces in parallel"
// contract this package gives a concrete implementation of). A proxy
// group is a fixed-size set of goroutines, each standing in for one
// simulation proxy, synchronised with a barrier: every member blocks on
// a reduction call until all members have arrived, then all see the
// combined result.
package proxygroup

import (
	"sync"
)

// Local is the trivial single-proxy Reducer: every collective is the
// identity, matching a serial (size-1) MPI communicator.
type Local struct{}

func (Local) SumInt(v int) (int, error)             { return v, nil }
func (Local) SumFloat64(v float64) (float64, error) { return v, nil }
func (Local) MaxFloat64(v float64) (float64, error) { return v, nil }

// Group coordinates size members through successive all-reduce
// rounds. Members call SumInt/SumFloat64/MaxFloat64 with their local
// contribution and block until every member has contributed; all then
// receive the same combined result, exactly like MPI_Allreduce.
type Group struct {
	size int

	mu      sync.Mutex
	cond    *sync.Cond
	round   int
	arrived int
	values  []float64
	result  float64
}

// NewGroup builds a Group of the given size. Member must be called
// once per participating goroutine to obtain its handle.
func NewGroup(size int) *Group {
	g := &Group{size: size, values: make([]float64, size)}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Member returns the handle a single proxy goroutine uses to
// participate in the group's collectives, identified by its rank in
// [0, size).
func (g *Group) Member(rank int) *Member {
	return &Member{g: g, rank: rank}
}

// Member is one proxy's view into its Group.
type Member struct {
	g    *Group
	rank int
}

func (m *Member) allreduce(value float64, combine func([]float64) float64) float64 {
	g := m.g

	g.mu.Lock()
	defer g.mu.Unlock()

	myRound := g.round
	g.values[m.rank] = value
	g.arrived++

	if g.arrived == g.size {
		g.result = combine(g.values)
		g.arrived = 0
		g.round++
		g.cond.Broadcast()
	} else {
		for g.round == myRound {
			g.cond.Wait()
		}
	}

	return g.result
}

// SumFloat64 all-reduces v by summation across the group.
func (m *Member) SumFloat64(v float64) (float64, error) {
	return m.allreduce(v, sumCombine), nil
}

// MaxFloat64 all-reduces v by maximum across the group.
func (m *Member) MaxFloat64(v float64) (float64, error) {
	return m.allreduce(v, maxCombine), nil
}

// SumInt all-reduces v by summation across the group. Values round-trip
// exactly through float64 for any group small enough to run as
// goroutines in one process.
func (m *Member) SumInt(v int) (int, error) {
	return int(m.allreduce(float64(v), sumCombine)), nil
}

// Barrier blocks until every member of the group has called it,
// mirroring MPI_Barrier: no value is exchanged, only synchronisation.
func (m *Member) Barrier() error {
	m.allreduce(0, sumCombine)
	return nil
}

func sumCombine(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}

func maxCombine(vs []float64) float64 {
	mx := vs[0]
	for _, v := range vs[1:] {
		if v > mx {
			mx = v
		}
	}
	return mx
}
