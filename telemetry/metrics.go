// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package telemetry

import (
	"sort"

	"github.com/cpmech/gosl/io"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of one run on a private registry
//  A nil *Metrics is valid and records nothing.
type Metrics struct {
	Recomputes *prometheus.CounterVec // evaluator recomputations by field key
	Steps      *prometheus.CounterVec // attempted steps by outcome ("accepted", "rejected")
	Iterations prometheus.Histogram   // nonlinear iterations per accepted step
	Fallbacks  *prometheus.CounterVec // coupling delegate fallbacks by delegate name
	Clips      *prometheus.CounterVec // correction values limited by process kernels
	registry   *prometheus.Registry   // private registry
}

// NewMetrics returns a new set of metrics registered on a private registry
func NewMetrics(namespace string) (o *Metrics) {
	o = &Metrics{
		Recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluator_recomputes_total",
			Help:      "Number of times a field was recomputed by its evaluator",
		}, []string{"key"}),
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Number of attempted time steps by outcome",
		}, []string{"outcome"}),
		Iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nonlinear_iterations",
			Help:      "Nonlinear iterations per accepted step",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
		}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegate_fallbacks_total",
			Help:      "Number of entities whose delegate solve failed and used the fallback correction",
		}, []string{"delegate"}),
		Clips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clipped_corrections_total",
			Help:      "Number of correction values limited by process kernels",
		}, []string{"pk"}),
		registry: prometheus.NewRegistry(),
	}
	o.registry.MustRegister(o.Recomputes, o.Steps, o.Iterations, o.Fallbacks, o.Clips)
	return
}

// Registry returns the private registry; e.g. to be served by an HTTP handler
func (o *Metrics) Registry() *prometheus.Registry {
	if o == nil {
		return nil
	}
	return o.registry
}

// Recompute records a recomputation of key
func (o *Metrics) Recompute(key string) {
	if o == nil {
		return
	}
	o.Recomputes.WithLabelValues(key).Inc()
}

// Step records the outcome of an attempted step
func (o *Metrics) Step(accepted bool, iterations int) {
	if o == nil {
		return
	}
	if accepted {
		o.Steps.WithLabelValues("accepted").Inc()
		o.Iterations.Observe(float64(iterations))
		return
	}
	o.Steps.WithLabelValues("rejected").Inc()
}

// Fallback records n delegate fallbacks
func (o *Metrics) Fallback(delegate string, n int) {
	if o == nil || n == 0 {
		return
	}
	o.Fallbacks.WithLabelValues(delegate).Add(float64(n))
}

// Clipped records n limited correction values
func (o *Metrics) Clipped(pk string, n int) {
	if o == nil || n == 0 {
		return
	}
	o.Clips.WithLabelValues(pk).Add(float64(n))
}

// Summary returns the counters as "name{labels} value" lines sorted by name
func (o *Metrics) Summary() (lines []string, err error) {
	if o == nil {
		return
	}
	families, err := o.registry.Gather()
	if err != nil {
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += io.Sf("%s=%q", lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, io.Sf("%s{%s} %g", mf.GetName(), labels, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, io.Sf("%s{%s} count=%d sum=%g", mf.GetName(), labels, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	return
}
