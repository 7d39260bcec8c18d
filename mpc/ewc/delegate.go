// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ewc implements the coupling delegate preconditioning energy and water content together
//
//  Given the picard corrections (dT, dp) of a cell, the delegate computes the conserved quantities
//  predicted by the linearisation at (T, p),
//
//   e* = e(T, p) - ∂e/∂T dT - ∂e/∂p dp
//   w* = w(T, p) - ∂w/∂T dT - ∂w/∂p dp
//
//  and finds by Newton's method the primary variables (T', p') with e(T', p') = e* and w(T', p') = w*.
//  The corrections become (T - T', p - p'). Cells where Newton's method fails keep the picard corrections.
package ewc

import (
	"math"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/linalg"
	mdlewc "github.com/a-hamm/ats/mdl/ewc"
	"github.com/a-hamm/ats/telemetry"
	"github.com/rs/zerolog"
)

// Delegate implements the cell-wise nonlinear correction in conserved space
type Delegate struct {
	Name    string             // name used in logs and metrics
	Model   mdlewc.Model       // map (T, p) → (e, wc)
	MaxIt   int                // maximum number of Newton iterations per cell
	Tol     float64            // relative tolerance on conserved quantities
	Log     zerolog.Logger     // logger
	Metrics *telemetry.Metrics // metrics; may be nil

	// results of the last call to Apply
	Fallbacks int   // number of cells that kept the picard correction
	Iters     int   // largest number of Newton iterations
	LastErr   error // error of the last cell that failed
}

// New returns a new delegate configured by plist
//  "model" names the mdl/ewc model (default permafrost) configured by the sublist "model parameters"
func New(name string, plist *inp.ParameterList, log zerolog.Logger, metrics *telemetry.Metrics) (o *Delegate, err error) {
	o = &Delegate{Name: name, Log: telemetry.Component(log, name), Metrics: metrics}
	o.MaxIt = plist.Int("max iterations", 10)
	o.Tol = plist.Float("tolerance", 1e-10)
	if o.MaxIt < 1 || o.Tol <= 0 {
		return nil, errs.Configf(name, "max iterations must be ≥ 1 and tolerance positive; got %d and %g", o.MaxIt, o.Tol)
	}
	if o.Model, err = mdlewc.New(plist.String("model", "permafrost"), plist.Sublist("model parameters")); err != nil {
		return nil, err
	}
	return o, plist.Err()
}

// Refresh sets the cell properties of the model
func (o *Delegate) Refresh(basePorosity, volume []float64) {
	o.Model.Refresh(basePorosity, volume)
}

// Apply replaces the picard corrections dT and dp of every cell by the corrections in conserved space
//  T and p are the current iterates. Cells that fail keep their corrections; failures are counted,
//  logged and never returned.
func (o *Delegate) Apply(T, p, dT, dp []float64) {
	o.Fallbacks, o.Iters, o.LastErr = 0, 0, nil
	for c := range T {
		dTn, dpn, it, err := o.Solve(c, T[c], p[c], dT[c], dp[c])
		if it > o.Iters {
			o.Iters = it
		}
		if err != nil {
			o.Fallbacks++
			o.LastErr = err
			o.Log.Debug().Int("cell", c).Err(err).Msg("keeping picard correction")
			continue
		}
		dT[c], dp[c] = dTn, dpn
	}
	if o.Fallbacks > 0 {
		o.Log.Info().Int("cells", o.Fallbacks).Err(o.LastErr).Msg("delegate fell back to picard")
		o.Metrics.Fallback(o.Name, o.Fallbacks)
	}
}

// Solve computes the corrections of cell c in conserved space
//  The error is a LocalConvergenceFailure or a NumericalSingularity.
func (o *Delegate) Solve(c int, T, p, dT, dp float64) (dTn, dpn float64, it int, err error) {
	J := o.Model.Jacobian(c, T, p)
	e0, w0 := o.Model.Conserved(c, T, p)
	et := e0 - J[0][0]*dT - J[0][1]*dp
	wt := w0 - J[1][0]*dT - J[1][1]*dp
	se, sw := math.Max(math.Abs(et), 1), math.Max(math.Abs(wt), 1)
	if !finite(et, wt) {
		return dT, dp, 0, errs.Convergencef(o.Name, "cell %d: linearised conserved quantities are not finite", c)
	}
	Tn, pn := T-dT, p-dp
	for it = 0; it <= o.MaxIt; it++ {
		e, w := o.Model.Conserved(c, Tn, pn)
		re, rw := e-et, w-wt
		if !finite(re, rw) {
			return dT, dp, it, errs.Convergencef(o.Name, "cell %d: conserved quantities are not finite at T=%g p=%g", c, Tn, pn)
		}
		if math.Max(math.Abs(re)/se, math.Abs(rw)/sw) < o.Tol {
			return T - Tn, p - pn, it, nil
		}
		if it == o.MaxIt {
			break
		}
		x, err := linalg.Solve2(o.Model.Jacobian(c, Tn, pn), [2]float64{re, rw})
		if err != nil {
			return dT, dp, it, errs.Wrap(errs.NumericalSingularity, o.Name, err, "cell %d: singular jacobian at T=%g p=%g", c, Tn, pn)
		}
		Tn, pn = Tn-x[0], pn-x[1]
	}
	return dT, dp, it, errs.Convergencef(o.Name, "cell %d: Newton's method did not converge in %d iterations", c, o.MaxIt)
}

// finite tells whether all values are finite
func finite(v ...float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
