// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpc

import (
	"math"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/pk"
	"github.com/a-hamm/ats/state"
)

// Weak implements the weak coupler
//  The children listed in "PKs order" are advanced one after another over the same step.
//  The step fails if any child fails.
type Weak struct {
	pk.Base
	Kids []pk.PK // children
}

// add coupler to factory
func init() {
	pk.Register("weak mpc", func(name string, plist *inp.ParameterList, env *pk.Env) (pk.PK, error) {
		return NewWeak(name, plist, env)
	})
}

// NewWeak returns a new weak coupler and allocates its children
func NewWeak(name string, plist *inp.ParameterList, env *pk.Env) (o *Weak, err error) {
	o = &Weak{Base: pk.NewBase(name, plist, env)}
	names := plist.Strings("PKs order", nil)
	if len(names) == 0 {
		return nil, errs.Configf(name, "weak MPC needs a non-empty \"PKs order\"")
	}
	for _, n := range names {
		child, err := pk.New(n, env)
		if err != nil {
			return nil, err
		}
		o.Kids = append(o.Kids, child)
	}
	return o, plist.Err()
}

// Children returns the children
func (o *Weak) Children() []pk.PK { return o.Kids }

// Setup sets up the children
func (o *Weak) Setup() (err error) {
	if err = o.Lifecycle().To(pk.SetUp); err != nil {
		return
	}
	for _, k := range o.Kids {
		if err = k.Setup(); err != nil {
			return
		}
	}
	return
}

// Initialize initializes the children and concatenates their solutions
func (o *Weak) Initialize() (err error) {
	if err = o.Lifecycle().To(pk.Initialized); err != nil {
		return
	}
	var subs []*state.TreeVector
	for _, k := range o.Kids {
		if err = k.Initialize(); err != nil {
			return
		}
		if u := k.Solution(); u != nil {
			subs = append(subs, u)
		}
	}
	o.SetSolution(state.NewNode(o.Name(), subs...))
	return
}

// GetDt returns the smallest step size proposed by the children
func (o *Weak) GetDt() float64 {
	dt := math.Inf(1)
	for _, k := range o.Kids {
		dt = math.Min(dt, k.GetDt())
	}
	return dt
}

// SetDt sets the step size of all children
func (o *Weak) SetDt(dt float64) {
	for _, k := range o.Kids {
		k.SetDt(dt)
	}
}

// AdvanceStep advances the children in order; the first failure stops the sequence
func (o *Weak) AdvanceStep(tOld, tNew float64, reinit bool) (failed bool, err error) {
	if err = o.Lifecycle().To(pk.Predicting); err != nil {
		return
	}
	for _, k := range o.Kids {
		if failed, err = k.AdvanceStep(tOld, tNew, reinit); err != nil || failed {
			if failed {
				o.Log.Debug().Str("child", k.Name()).Float64("t", tNew).Msg("child failed")
			}
			return
		}
	}
	return false, o.Lifecycle().To(pk.Solving)
}

// CommitStep commits all children
func (o *Weak) CommitStep(tOld, tNew float64) (err error) {
	if err = o.Lifecycle().To(pk.Committing); err != nil {
		return
	}
	for _, k := range o.Kids {
		if err = k.CommitStep(tOld, tNew); err != nil {
			return
		}
	}
	return
}

// ChangedSolution tells the children that their solutions changed
func (o *Weak) ChangedSolution() {
	for _, k := range o.Kids {
		k.ChangedSolution()
	}
}
