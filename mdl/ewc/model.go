// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ewc implements models mapping primary variables (T, p) to conserved quantities (e, wc)
//  These models are used to precondition coupled energy and flow equations in the conserved space.
package ewc

import (
	"sort"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
)

// Model defines the map (T, p) → (e, wc) at each cell
type Model interface {
	Refresh(basePorosity, volume []float64)         // sets the cell properties; called once per step
	Conserved(c int, T, p float64) (e, wc float64)  // computes the conserved quantities of cell c
	Jacobian(c int, T, p float64) (J [2][2]float64) // computes [[∂e/∂T, ∂e/∂p], [∂wc/∂T, ∂wc/∂p]]
}

// New returns a new model configured by plist
func New(name string, plist *inp.ParameterList) (model Model, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, errs.Configf(name, "model is not available in 'ewc' database")
	}
	return allocator(plist)
}

// Names returns the names of all available models
func Names() (names []string) {
	for k := range allocators {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}

// allocators holds all available models
var allocators = map[string]func(plist *inp.ParameterList) (Model, error){}
