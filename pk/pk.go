// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pk defines process kernels: the units of physics advanced in time by the cycle driver
package pk

import (
	"sort"

	"github.com/a-hamm/ats/comm"
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/linalg"
	"github.com/a-hamm/ats/solver"
	"github.com/a-hamm/ats/state"
	"github.com/a-hamm/ats/telemetry"
	"github.com/cpmech/gosl/chk"
	"github.com/rs/zerolog"
)

// CorrectionResult tells whether ModifyCorrection altered a correction
type CorrectionResult = solver.CorrectionResult

const (
	NotModified = solver.NotModified
	Modified    = solver.Modified
)

// PK defines process kernels
//  Setup only declares fields; Initialize fills owned fields; AdvanceStep returns failed=true when
//  the step must be retried with a smaller step; CommitStep is called after the step is accepted.
type PK interface {
	Name() string                                                         // name of this kernel
	Setup() error                                                         // declares fields and evaluators
	Initialize() error                                                    // sets initial values of owned fields
	GetDt() float64                                                       // proposes the next step size
	SetDt(dt float64)                                                     // sets the step size
	AdvanceStep(tOld, tNew float64, reinit bool) (failed bool, err error) // attempts to advance from tOld to tNew
	CommitStep(tOld, tNew float64) error                                  // computes diagnostics and copies next to current
	Solution() *state.TreeVector                                          // primary unknowns aliasing the next tag
	ChangedSolution()                                                     // the solution was changed in place
	Lifecycle() *Lifecycle                                                // lifecycle
}

// Implicit defines process kernels that can be driven by a nonlinear solver
type Implicit interface {
	PK
	solver.Problem
	ModifyPredictor(h float64, u0, u *state.TreeVector) (modified bool, err error) // improves the initial guess u
}

// Assembler defines implicit kernels whose preconditioner is an assembled matrix on one mesh
//  The unknowns of the matrix are ordered as in Solution().Flatten: cells first then boundary faces.
type Assembler interface {
	Implicit
	Mesh() string          // mesh of the unknowns
	PrimaryKey() string    // key of the primary variable
	ConservedKey() string  // key of the accumulated quantity
	Block() *linalg.Matrix // preconditioner matrix computed by UpdatePreconditioner
}

// Env holds what all process kernels of one run share
type Env struct {
	G       *eval.Graph        // evaluators at the next tag
	Comm    comm.Comm          // communicator
	Log     zerolog.Logger     // logger
	Metrics *telemetry.Metrics // metrics; may be nil
	PKs     *inp.ParameterList // parameters of all process kernels by name
	Funcs   inp.FuncsData      // functions referred to by "function name"
}

// NewEnv returns an environment with a serial communicator and no logging
func NewEnv(g *eval.Graph, pks *inp.ParameterList) *Env {
	if pks == nil {
		pks = inp.NewParameterList("PKs")
	}
	return &Env{G: g, Comm: comm.Serial{}, Log: telemetry.Nop(), PKs: pks}
}

// Factory allocates a process kernel named name configured by plist
type Factory func(name string, plist *inp.ParameterList, env *Env) (PK, error)

// allocators holds all available process kernels
var allocators = map[string]Factory{}

// Register adds a type of process kernel; registering the same name twice is a programming error
func Register(kind string, factory Factory) {
	if _, ok := allocators[kind]; ok {
		chk.Panic("PK type %q is already registered", kind)
	}
	allocators[kind] = factory
}

// New allocates the process kernel named name whose parameters are in env.PKs
//  The type is given by "PK type".
func New(name string, env *Env) (PK, error) {
	if !env.PKs.IsSublist(name) {
		return nil, errs.Configf(name, "PK has no parameter list in %q", env.PKs.Name())
	}
	plist := env.PKs.Sublist(name)
	kind, err := plist.RequiredString("PK type")
	if err != nil {
		return nil, errs.Wrap(errs.Config, name, err, "cannot allocate PK")
	}
	factory, ok := allocators[kind]
	if !ok {
		return nil, errs.Configf(name, "PK type %q is not available in 'pk' database", kind)
	}
	return factory(name, plist, env)
}

// Types returns the names of all registered types
func Types() (names []string) {
	for k := range allocators {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}
