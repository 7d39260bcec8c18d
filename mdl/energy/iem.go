// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package energy

import (
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// Linear implements an internal energy linear in temperature
//  u = L + cv (T - Tref)
type Linear struct {
	cv   float64 // heat capacity
	tref float64 // reference temperature
	lat  float64 // energy at reference temperature; e.g. minus the latent heat of fusion for ice
}

// add model to factory
func init() {
	register("linear internal energy", func() Model { return new(Linear) })
}

// Init initialises model
func (o *Linear) Init(prms dbf.Params) (err error) {
	o.cv, o.tref = 76.0, 273.15
	for _, p := range prms {
		switch strings.ToLower(p.N) {
		case "cv":
			o.cv = p.V
		case "tref":
			o.tref = p.V
		case "l":
			o.lat = p.V
		default:
			return chk.Err("linear internal energy: parameter named %q is incorrect\n", p.N)
		}
	}
	if o.cv <= 0 {
		return chk.Err("linear internal energy: heat capacity must be positive; cv = %g is invalid\n", o.cv)
	}
	return
}

// GetPrms gets (an example) of parameters
func (o Linear) GetPrms(example bool) dbf.Params {
	return dbf.Params{
		&dbf.P{N: "cv", V: 76.0},
		&dbf.P{N: "Tref", V: 273.15},
		&dbf.P{N: "L", V: 0},
	}
}

// Args returns the names of arguments
func (o Linear) Args() []string { return []string{"temperature"} }

// Value computes u
func (o Linear) Value(x []float64) float64 {
	return o.lat + o.cv*(x[0]-o.tref)
}

// Partial computes ∂u/∂T
func (o Linear) Partial(i int, x []float64) float64 {
	return o.cv
}
