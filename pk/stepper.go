// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pk

import (
	"math"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/solver"
	"github.com/a-hamm/ats/state"
	"github.com/rs/zerolog"
)

// Stepper implements the backward Euler (BDF1) time integrator of implicit kernels
//  The step size grows when the nonlinear solver needs few iterations and shrinks when it needs
//  many or fails. PhysicalBounds, LocalConvergence and NumericalSingularity failures give failed=true.
type Stepper struct {
	Solver      solver.Solver // nonlinear driver
	Dt          float64       // proposed step size
	DtMin       float64       // minimum step size
	DtMax       float64       // maximum step size
	Grow        float64       // increase factor
	Shrink      float64       // reduction factor
	FewIts      int           // number of iterations at or below which dt grows
	ManyIts     int           // number of iterations at or above which dt shrinks
	Extrapolate bool          // extrapolate the initial guess from the last two states
	Iterations  int           // number of iterations of the last advance
	Log         zerolog.Logger

	s     *state.State      // field store
	u0    *state.TreeVector // solution at the beginning of the current step
	uPrev *state.TreeVector // solution at the beginning of the last accepted step
	hPrev float64           // size of the last accepted step
}

// NewStepper returns a new stepper reading the sublist "time integrator" of plist
//  The nonlinear driver is read from the sublist "nonlinear solver" of "time integrator".
func NewStepper(plist *inp.ParameterList, env *Env, log zerolog.Logger) (o *Stepper, err error) {
	ti := plist.Sublist("time integrator")
	o = &Stepper{
		Dt:          ti.Float("initial time step", plist.Float("initial time step", 1)),
		DtMin:       ti.Float("min time step", 1e-10),
		DtMax:       ti.Float("max time step", 1e10),
		Grow:        ti.Float("time step increase factor", 1.25),
		Shrink:      ti.Float("time step reduction factor", 0.5),
		FewIts:      ti.Int("min iterations", 5),
		ManyIts:     ti.Int("max iterations", 10),
		Extrapolate: ti.Bool("extrapolate initial guess", true),
		Log:         log,
		s:           env.G.S,
	}
	if err = ti.Err(); err != nil {
		return nil, err
	}
	if o.Dt <= 0 || o.DtMin <= 0 || o.DtMax < o.DtMin {
		return nil, errs.Configf(plist.Name(), "time steps must satisfy 0 < min time step <= max time step and initial time step > 0")
	}
	if o.Grow < 1 || o.Shrink <= 0 || o.Shrink >= 1 {
		return nil, errs.Configf(plist.Name(), "time step increase factor must be >= 1 and reduction factor must be in (0,1)")
	}
	o.Solver, err = solver.New(ti.Sublist("nonlinear solver"), log, env.Comm)
	return
}

// Advance attempts to advance p from tOld to tNew
//  The solution of p holds the values at the intermediate tag on entry.
func (o *Stepper) Advance(p Implicit, tOld, tNew float64) (failed bool, err error) {
	h := tNew - tOld
	o.s.SetTime(state.Next, tNew)
	u := p.Solution()
	if o.u0 == nil {
		o.u0 = u.Clone()
	} else {
		o.u0.CopyFrom(u)
	}

	// predictor
	if o.Extrapolate && o.uPrev != nil && o.hPrev > 0 {
		r := h / o.hPrev
		u.Update(-r, o.uPrev, 1+r)
		if !p.IsAdmissible(u) {
			u.CopyFrom(o.u0)
		}
		p.ChangedSolution()
	}
	modified, err := p.ModifyPredictor(h, o.u0, u)
	if err != nil {
		return o.failure(h, err)
	}
	if modified {
		p.ChangedSolution()
		o.Solver.Reset()
	}

	// solve
	if err = Transition(Solving, p); err != nil {
		return
	}
	o.Iterations, err = o.Solver.Solve(p, tOld, tNew, u)
	if err != nil {
		return o.failure(h, err)
	}

	// next step size
	switch {
	case o.Iterations <= o.FewIts:
		o.Dt = math.Min(h*o.Grow, o.DtMax)
	case o.Iterations >= o.ManyIts:
		o.Dt = math.Max(h*o.Shrink, o.DtMin)
	default:
		o.Dt = math.Min(h, o.DtMax)
	}
	o.Log.Debug().Float64("t", tNew).Float64("h", h).Int("iterations", o.Iterations).Float64("dt", o.Dt).Msg("step converged")
	return
}

// failure shrinks dt after a failed attempt; configuration and unclassified errors are returned
func (o *Stepper) failure(h float64, err error) (failed bool, e error) {
	class := errs.ClassOf(err)
	if class == 0 || class.Fatal() {
		return false, err
	}
	o.Dt = math.Max(h*o.Shrink, o.DtMin)
	o.Log.Warn().Err(err).Float64("h", h).Float64("dt", o.Dt).Msg("step failed")
	return true, nil
}

// Commit records the history of an accepted step of size h
func (o *Stepper) Commit(h float64) {
	if o.u0 == nil {
		return
	}
	if o.uPrev == nil {
		o.uPrev = o.u0.Clone()
	} else {
		o.uPrev.CopyFrom(o.u0)
	}
	o.hPrev = h
}
