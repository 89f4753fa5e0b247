// Package telemetry wraps a prometheus registry with the counters and
// gauges an FFS run publishes: trials fired, prunes, timeouts, successes,
// the lambda of the last interface, the flux and P(B|A), one instance at
// a time.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the collectors an instance sets once, from its final
// counters, when it stops.
type Metrics struct {
	registry prometheus.Registerer

	TrialsTotal   *prometheus.CounterVec
	PrunesTotal   *prometheus.CounterVec
	TimeoutsTotal *prometheus.CounterVec
	SuccessTotal  *prometheus.CounterVec
	CurrentLambda prometheus.Gauge
	Flux          prometheus.Gauge
	ProbBGivenA   prometheus.Gauge
}

// New builds and registers the FFS collector set against reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		registry: reg,
		TrialsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ffs",
			Name:      "trials_total",
			Help:      "Number of trials fired, by interface.",
		}, []string{"interface"}),
		PrunesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ffs",
			Name:      "prunes_total",
			Help:      "Number of trials pruned, by interface.",
		}, []string{"interface"}),
		TimeoutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ffs",
			Name:      "timeouts_total",
			Help:      "Number of trials timed out, by interface.",
		}, []string{"interface"}),
		SuccessTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ffs",
			Name:      "success_total",
			Help:      "Number of trials reaching an interface, by interface.",
		}, []string{"interface"}),
		CurrentLambda: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ffs",
			Name:      "current_lambda",
			Help:      "Order parameter value of the last interface of the completed run.",
		}),
		Flux: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ffs",
			Name:      "flux_phi_a",
			Help:      "Estimated initial flux Phi_A out of basin A.",
		}),
		ProbBGivenA: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ffs",
			Name:      "prob_b_given_a",
			Help:      "Estimated conditional probability P(B|A) of reaching basin B.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.TrialsTotal, m.PrunesTotal, m.TimeoutsTotal, m.SuccessTotal,
		m.CurrentLambda, m.Flux, m.ProbBGivenA,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}
