// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package porosity implements models for the porosity of deformable porous media
package porosity

import (
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// Model defines porosity models
type Model interface {
	eval.Model
	Init(prms dbf.Params) error      // initialises model
	GetPrms(example bool) dbf.Params // gets (an example) of parameters
}

// New returns a new porosity model
func New(name string) (model Model, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("model %q is not available in 'porosity' database", name)
	}
	return allocator(), nil
}

// allocators holds all available models
var allocators = map[string]func() Model{}

// add models to factory
func init() {
	allocators["compressible"] = func() Model { return new(Compressible) }
	eval.Register("compressible porosity", eval.PointwiseFactory(func(plist *inp.ParameterList) (eval.Model, error) {
		m := new(Compressible)
		if err := m.Init(plist.Params("model parameters")); err != nil {
			return nil, errs.Wrap(errs.Config, "compressible porosity", err, "invalid model parameters")
		}
		return m, nil
	}))
}
