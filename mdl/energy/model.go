// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package energy implements pointwise models for energy and internal energy
//  Energies are extensive [J] and internal energies are molar [J/mol] or specific [J/kg].
package energy

import (
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// Model defines energy models
type Model interface {
	eval.Model
	Init(prms dbf.Params) error      // initialises model
	GetPrms(example bool) dbf.Params // gets (an example) of parameters
}

// New returns a new energy model
func New(name string) (model Model, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("model %q is not available in 'energy' database", name)
	}
	return allocator(), nil
}

// allocators holds all available models
var allocators = map[string]func() Model{}

// register adds a model to the database and an evaluator type with the same name
//  model parameters are read from the "model parameters" sublist
func register(name string, allocator func() Model) {
	allocators[name] = allocator
	eval.Register(name, eval.PointwiseFactory(func(plist *inp.ParameterList) (eval.Model, error) {
		m := allocator()
		if err := m.Init(plist.Params("model parameters")); err != nil {
			return nil, errs.Wrap(errs.Config, name, err, "invalid model parameters")
		}
		return m, nil
	}))
}
