// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conduct

import (
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// ThreePhase implements the thermal conductivity of rock, liquid, ice and gas by volume averaging
//  K = (1 - φ) kr + φ (sl kl + si ki + (1 - sl - si) kg)
type ThreePhase struct {
	kr, kl, ki, kg float64 // conductivities of rock, liquid, ice and gas [W/(m K)]
}

// add model to factory
func init() {
	register("three phase thermal", func() Model { return new(ThreePhase) })
}

// Init initialises model
func (o *ThreePhase) Init(prms dbf.Params) (err error) {
	o.kr, o.kl, o.ki, o.kg = 2.0, 0.6, 2.2, 0.024
	for _, p := range prms {
		switch strings.ToLower(p.N) {
		case "kr":
			o.kr = p.V
		case "kl":
			o.kl = p.V
		case "ki":
			o.ki = p.V
		case "kg":
			o.kg = p.V
		default:
			return chk.Err("three phase thermal: parameter named %q is incorrect\n", p.N)
		}
	}
	if o.kr < 0 || o.kl < 0 || o.ki < 0 || o.kg < 0 {
		return chk.Err("three phase thermal: conductivities must be non-negative\n")
	}
	return
}

// GetPrms gets (an example) of parameters
func (o ThreePhase) GetPrms(example bool) dbf.Params {
	return dbf.Params{
		&dbf.P{N: "kr", V: 2.0},
		&dbf.P{N: "kl", V: 0.6},
		&dbf.P{N: "ki", V: 2.2},
		&dbf.P{N: "kg", V: 0.024},
	}
}

// Args returns the names of arguments
func (o ThreePhase) Args() []string {
	return []string{"porosity", "saturation_liquid", "saturation_ice"}
}

// Value computes K
func (o ThreePhase) Value(x []float64) float64 {
	φ, sl, si := x[0], x[1], x[2]
	return (1-φ)*o.kr + φ*(sl*o.kl+si*o.ki+(1-sl-si)*o.kg)
}

// Partial computes ∂K/∂x[i]
func (o ThreePhase) Partial(i int, x []float64) float64 {
	φ, sl, si := x[0], x[1], x[2]
	switch i {
	case 0:
		return -o.kr + sl*o.kl + si*o.ki + (1-sl-si)*o.kg
	case 1:
		return φ * (o.kl - o.kg)
	}
	return φ * (o.ki - o.kg)
}
