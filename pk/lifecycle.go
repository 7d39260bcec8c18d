// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pk

import (
	"github.com/a-hamm/ats/errs"
)

// Phase is a state of the lifecycle of a process kernel
type Phase int

const (
	Constructed Phase = iota // allocated from parameters
	SetUp                    // fields declared
	Initialized              // initial values set
	Predicting               // computing the initial guess of a step
	Solving                  // iterating on a step
	Committing               // finishing an accepted step
	Finalized                // no further calls allowed
)

// phaseNames holds the names of phases
var phaseNames = []string{"Constructed", "Setup", "Initialized", "Predicting", "Solving", "Committing", "Finalized"}

// String returns the name of the phase
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Unknown"
	}
	return phaseNames[p]
}

// transitions holds the allowed transitions
var transitions = map[Phase][]Phase{
	Constructed: {SetUp},
	SetUp:       {SetUp, Initialized, Finalized},
	Initialized: {Predicting, Committing, Finalized},
	Predicting:  {Predicting, Solving, Finalized},
	Solving:     {Predicting, Committing, Finalized},
	Committing:  {Predicting, Committing, Finalized},
}

// Lifecycle enforces the order of calls to a process kernel
//  Constructed → Setup → Initialized → {Predicting ⇄ Solving ⇄ Committing}* → Finalized
type Lifecycle struct {
	name  string // name of the process kernel
	phase Phase  // current phase
}

// NewLifecycle returns a lifecycle in the Constructed phase
func NewLifecycle(name string) Lifecycle {
	return Lifecycle{name: name}
}

// Phase returns the current phase
func (o *Lifecycle) Phase() Phase { return o.phase }

// To moves to phase next; illegal transitions are ConfigErrors
func (o *Lifecycle) To(next Phase) error {
	for _, p := range transitions[o.phase] {
		if p == next {
			o.phase = next
			return nil
		}
	}
	return errs.Configf(o.name, "illegal call sequence: cannot go from %v to %v", o.phase, next)
}

// Coupler is implemented by kernels advancing their children within their own nonlinear solve
type Coupler interface {
	Children() []PK
}

// Transition moves all given process kernels, and the children of couplers, to phase next
func Transition(next Phase, pks ...PK) error {
	for _, p := range pks {
		if err := p.Lifecycle().To(next); err != nil {
			return err
		}
		if c, ok := p.(Coupler); ok {
			if err := Transition(next, c.Children()...); err != nil {
				return err
			}
		}
	}
	return nil
}
