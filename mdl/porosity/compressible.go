// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package porosity

import (
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// Compressible implements the porosity of a rock with small compressibility
//  φ = φ0 + β (p - patm) if p > patm; φ0 otherwise
type Compressible struct {
	β    float64 // pore compressibility [1/Pa]
	patm float64 // atmospheric pressure [Pa]
}

// Init initialises model
func (o *Compressible) Init(prms dbf.Params) (err error) {
	o.patm = 101325.0
	for _, p := range prms {
		switch strings.ToLower(p.N) {
		case "beta", "pore compressibility":
			o.β = p.V
		case "patm", "atmospheric pressure":
			o.patm = p.V
		default:
			return chk.Err("compressible porosity: parameter named %q is incorrect\n", p.N)
		}
	}
	if o.β < 0 {
		return chk.Err("compressible porosity: compressibility must be non-negative; beta = %g is invalid\n", o.β)
	}
	return
}

// GetPrms gets (an example) of parameters
func (o Compressible) GetPrms(example bool) dbf.Params {
	return dbf.Params{
		&dbf.P{N: "beta", V: 1e-9},
		&dbf.P{N: "patm", V: 101325.0},
	}
}

// Args returns the names of arguments
func (o Compressible) Args() []string { return []string{"base_porosity", "pressure"} }

// Value computes φ
func (o Compressible) Value(x []float64) float64 {
	φ0, p := x[0], x[1]
	if p > o.patm {
		return φ0 + o.β*(p-o.patm)
	}
	return φ0
}

// Partial computes ∂φ/∂x[i]
func (o Compressible) Partial(i int, x []float64) float64 {
	if i == 0 {
		return 1
	}
	if x[1] > o.patm {
		return o.β
	}
	return 0
}
