// Package simfacade defines the black-box contract that every simulation
// backend must satisfy to be driven by the FFS algorithms, together with
// the StateRef handle used to name a persisted checkpoint.
//
// The shape follows the abstract_sim_t operation table in
// original_source/src/sim/interface.h: a simulation is asked to execute
// one step, to save/load/discard its state under a caller-chosen handle,
// and to report its order parameter and clock. Where the C table
// dispatches generic (action, stub) pairs through function pointers, the
// Go interface gives each operation its own method: that is the one
// deliberate generalisation over the original table, made so callers get
// compile-time checked signatures instead of an untyped action code.
package simfacade

import "fmt"

// StateRef names one persisted trajectory checkpoint. A simulation
// backend is free to interpret the triple however it likes (a file path,
// a row in a table, an in-memory map key) as long as the same StateRef
// always resolves to the same checkpoint for the lifetime of the run.
type StateRef struct {
	Instance int
	Proxy    int
	Trial    int
}

// Stub renders the triple as the human-readable label the original
// implementation writes into its checkpoint file names.
func (s StateRef) Stub() string {
	return fmt.Sprintf("inst%d-proxy%d-traj%d", s.Instance, s.Proxy, s.Trial)
}

// Facade is the capability surface an FFS simulation backend exposes.
// Everything the trial, pruning and algorithm layers need from "the
// simulation" goes through this interface, so none of them ever assume a
// concrete physical model.
type Facade interface {
	// Execute advances the simulation by one native step (e.g. one MD
	// step, one kMC event, one Monte Carlo sweep).
	Execute() error

	// Lambda returns the current value of the order parameter.
	Lambda() (float64, error)

	// Time returns the current simulation clock.
	Time() (float64, error)

	// InitState resets the live state to the backend's reference initial
	// condition, discarding whatever state the backend currently holds.
	InitState() error

	// ReadState loads the checkpoint named by ref into the live state,
	// replacing whatever was there.
	ReadState(ref StateRef) error

	// WriteState persists the live state under ref.
	WriteState(ref StateRef) error

	// DeleteState discards a previously written checkpoint. Backends
	// that keep state in memory should free the entry; backends backed
	// by a filesystem should remove the file. It is not an error to
	// delete a ref that was never written.
	DeleteState(ref StateRef) error

	// SeedPut reseeds the backend's own random number stream, giving
	// each trial reproducible-but-distinct stochastic dynamics.
	SeedPut(seed int32) error
}

// Info is the read-only topic query original_source's abstract_sim_t
// exposes under sim_info(); Go backends that have nothing interesting to
// report may implement InfoProvider returning an empty map.
type InfoProvider interface {
	Info() map[string]string
}
