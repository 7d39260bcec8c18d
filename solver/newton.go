// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"

	"github.com/a-hamm/ats/comm"
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/state"
	"github.com/cpmech/gosl/io"
	"github.com/rs/zerolog"
)

// Newton implements preconditioned Newton iterations u := u - P⁻¹ r(u)
//  with optional Anderson acceleration of the preconditioned corrections
type Newton struct {
	Control
	Log     zerolog.Logger // logger
	ShowR   bool           // print residuals
	acc     *anderson      // accelerator; nil for plain iterations
	history []float64      // error norms of the last solve
}

// set factory
func init() {
	allocators["newton"] = func(plist *inp.ParameterList, log zerolog.Logger, c comm.Comm) (Solver, error) {
		return NewNewton(plist, log)
	}
	allocators["anderson"] = func(plist *inp.ParameterList, log zerolog.Logger, c comm.Comm) (Solver, error) {
		m := plist.Int("max acceleration vectors", 5)
		if m < 1 {
			return nil, errs.Configf(plist.Name(), "max acceleration vectors must be positive; got %d", m)
		}
		o, err := NewNewton(plist, log)
		if err != nil {
			return nil, err
		}
		o.acc = newAnderson(m, c)
		return o, nil
	}
}

// NewNewton returns a new driver without acceleration
func NewNewton(plist *inp.ParameterList, log zerolog.Logger) (o *Newton, err error) {
	o = &Newton{Log: log}
	if err = o.Control.read(plist); err != nil {
		return nil, err
	}
	o.ShowR = plist.Bool("show residuals", false)
	return o, plist.Err()
}

// Reset discards the acceleration history
func (o *Newton) Reset() {
	if o.acc != nil {
		o.acc.Restart()
	}
}

// History returns the error norms of the last solve
func (o *Newton) History() []float64 { return o.history }

// Solve runs iterations until the error norm of the correction is below the tolerance
//  Errors: PhysicalBoundsViolation if an iterate is not admissible; LocalConvergenceFailure if the
//  iterations diverge or do not converge; errors of the problem hooks are returned as they are.
func (o *Newton) Solve(p Problem, tOld, tNew float64, u *state.TreeVector) (it int, err error) {

	// auxiliary
	h := tNew - tOld
	r, du := u.Clone(), u.Clone()
	o.history = o.history[:0]
	o.Reset()
	var enorm, prev float64
	ndiv := 0

	// message
	if o.ShowR {
		io.Pf("\n%13s%4s%23s\n", "t", "it", "enorm")
	}

	// iterations
	for it = 1; it <= o.MaxIt; it++ {

		// residual and correction
		if err = p.Residual(tOld, tNew, u, r); err != nil {
			return
		}
		if (it-1)%o.UpdateEvr == 0 {
			if err = p.UpdatePreconditioner(tNew, u, h); err != nil {
				return
			}
		}
		if err = p.ApplyPreconditioner(r, du); err != nil {
			return
		}
		if o.acc != nil {
			o.acc.Correction(u, du)
		}
		if o.Modify && p.ModifyCorrection(h, r, u, du) == Modified {
			o.Log.Debug().Int("it", it).Msg("correction modified; acceleration restarted")
			o.Reset()
		}

		// check correction
		enorm = p.ErrorNorm(u, du)
		o.history = append(o.history, enorm)
		o.Log.Debug().Int("it", it).Float64("enorm", enorm).Msg("nonlinear iteration")
		if o.ShowR {
			io.Pf("%13.6e%4d%23.15e\n", tNew, it, enorm)
		}
		if math.IsNaN(enorm) || enorm > o.DivTol {
			return it, errs.Convergencef("solver", "error norm %g exceeds the divergence tolerance at iteration %d", enorm, it)
		}

		// update solution
		u.Update(-1, du, 1)
		p.ChangedSolution()
		if !p.IsAdmissible(u) {
			return it, errs.Boundsf("solver", "iterate %d is not admissible", it)
		}

		// convergence
		if enorm < o.Tol {
			return it, nil
		}

		// divergence control
		if it > 1 && enorm > prev {
			ndiv++
			if ndiv > o.MaxDiv {
				return it, errs.Convergencef("solver", "iterations diverging: error norm grew in %d consecutive iterations", ndiv)
			}
		} else {
			ndiv = 0
		}
		prev = enorm
	}
	return o.MaxIt, errs.Convergencef("solver", "no convergence after %d iterations; error norm = %g", o.MaxIt, enorm)
}
