// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver implements nonlinear drivers of implicit problems
package solver

import (
	"sort"

	"github.com/a-hamm/ats/comm"
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/state"
	"github.com/rs/zerolog"
)

// CorrectionResult tells whether a correction was altered after the preconditioner was applied
type CorrectionResult int

const (
	NotModified CorrectionResult = iota // correction untouched
	Modified                            // correction changed; acceleration history must be discarded
)

// String returns the name of the result
func (o CorrectionResult) String() string {
	if o == Modified {
		return "modified"
	}
	return "not modified"
}

// Problem defines the hooks called by nonlinear drivers
//  u always aliases the solution being advanced; r, pu and du have the same structure as u.
type Problem interface {
	Residual(tOld, tNew float64, u, r *state.TreeVector) error               // computes r(u)
	UpdatePreconditioner(t float64, u *state.TreeVector, h float64) error    // linearises around u
	ApplyPreconditioner(r, pu *state.TreeVector) error                       // pu := P⁻¹ r
	ErrorNorm(u, du *state.TreeVector) float64                               // scaled (global) norm of correction du
	IsAdmissible(u *state.TreeVector) bool                                   // tells whether u is physically valid
	ModifyCorrection(h float64, r, u, du *state.TreeVector) CorrectionResult // post-processes du
	ChangedSolution()                                                        // u was changed in place
}

// Solver defines nonlinear drivers
type Solver interface {
	Solve(p Problem, tOld, tNew float64, u *state.TreeVector) (iterations int, err error)
	Reset() // discards acceleration history; e.g. after the predictor was modified
}

// Control holds the options common to all drivers
type Control struct {
	Tol       float64 // convergence tolerance on the error norm
	MaxIt     int     // maximum number of iterations
	DivTol    float64 // error norms above this value mean divergence
	MaxDiv    int     // maximum number of consecutive iterations with growing error norm
	Modify    bool    // call ModifyCorrection
	UpdateEvr int     // update the preconditioner every UpdateEvr iterations
}

// read reads the control options from plist
func (o *Control) read(plist *inp.ParameterList) error {
	o.Tol = plist.Float("nonlinear tolerance", 1e-6)
	o.MaxIt = plist.Int("limit iterations", 20)
	o.DivTol = plist.Float("diverged tolerance", 1e10)
	o.MaxDiv = plist.Int("max divergent iterations", 3)
	o.Modify = plist.Bool("modify correction", true)
	o.UpdateEvr = plist.Int("update preconditioner every", 1)
	if err := plist.Err(); err != nil {
		return err
	}
	if o.Tol <= 0 || o.MaxIt < 1 || o.UpdateEvr < 1 {
		return errs.Configf(plist.Name(), "nonlinear tolerance and limit iterations must be positive; got %g and %d", o.Tol, o.MaxIt)
	}
	return nil
}

// allocators holds all available drivers
var allocators = map[string]func(plist *inp.ParameterList, log zerolog.Logger, c comm.Comm) (Solver, error){}

// New returns a new driver of type "solver type" (default "newton") configured by plist
func New(plist *inp.ParameterList, log zerolog.Logger, c comm.Comm) (Solver, error) {
	kind := plist.String("solver type", "newton")
	allocator, ok := allocators[kind]
	if !ok {
		return nil, errs.Configf(kind, "solver type is not available in 'solver' database")
	}
	if c == nil {
		c = comm.Serial{}
	}
	return allocator(plist, log, c)
}

// Types returns the names of all available drivers
func Types() (names []string) {
	for k := range allocators {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}
