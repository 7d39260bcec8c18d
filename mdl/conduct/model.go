// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conduct implements models for conductivities: overland flow, relative permeability and heat
package conduct

import (
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// Model defines conductivity models
type Model interface {
	eval.Model
	Init(prms dbf.Params) error      // Init initialises this structure
	GetPrms(example bool) dbf.Params // gets (an example) of parameters
}

// New conductivity model
func New(name string) (model Model, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("model %q is not available in 'conduct' database", name)
	}
	return allocator(), nil
}

// allocators holds all available models
var allocators = map[string]func() Model{}

// register adds a model to the database and an evaluator type named "<name> conductivity"
func register(name string, allocator func() Model) {
	allocators[name] = allocator
	kind := name + " conductivity"
	eval.Register(kind, eval.PointwiseFactory(func(plist *inp.ParameterList) (eval.Model, error) {
		m := allocator()
		if err := m.Init(plist.Params("model parameters")); err != nil {
			return nil, errs.Wrap(errs.Config, kind, err, "invalid model parameters")
		}
		return m, nil
	}))
}
