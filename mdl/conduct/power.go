// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conduct

import (
	"math"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// Power implements a relative permeability given by a power of the effective saturation
//  kr = max(kmin, se^λ) with se = clip((sl - slr) / (1 - slr), 0, 1)
type Power struct {
	λ    float64 // exponent
	slr  float64 // residual saturation
	kmin float64 // minimum relative permeability
}

// add model to factory
func init() {
	register("power", func() Model { return new(Power) })
}

// Init initialises model
func (o *Power) Init(prms dbf.Params) (err error) {
	o.λ, o.kmin = 3, 1e-10
	for _, p := range prms {
		switch strings.ToLower(p.N) {
		case "lam":
			o.λ = p.V
		case "slr":
			o.slr = p.V
		case "kmin":
			o.kmin = p.V
		default:
			return chk.Err("power: parameter named %q is incorrect\n", p.N)
		}
	}
	if o.λ < 1 || o.slr < 0 || o.slr >= 1 {
		return chk.Err("power: λ must be ≥ 1 and 0 ≤ slr < 1; λ=%g slr=%g are invalid\n", o.λ, o.slr)
	}
	return
}

// GetPrms gets (an example) of parameters
func (o Power) GetPrms(example bool) dbf.Params {
	return dbf.Params{
		&dbf.P{N: "lam", V: 3},
		&dbf.P{N: "slr", V: 0.05},
		&dbf.P{N: "kmin", V: 1e-10},
	}
}

// Args returns the names of arguments
func (o Power) Args() []string { return []string{"saturation_liquid"} }

// Value computes kr
func (o Power) Value(x []float64) float64 {
	return math.Max(o.kmin, math.Pow(o.se(x[0]), o.λ))
}

// Partial computes dkr/dsl
func (o Power) Partial(i int, x []float64) float64 {
	se := o.se(x[0])
	if se <= 0 || se >= 1 || math.Pow(se, o.λ) < o.kmin {
		return 0
	}
	return o.λ * math.Pow(se, o.λ-1) / (1 - o.slr)
}

// se computes the effective saturation
func (o Power) se(sl float64) float64 {
	return math.Min(1, math.Max(0, (sl-o.slr)/(1-o.slr)))
}
