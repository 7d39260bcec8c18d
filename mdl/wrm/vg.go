// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wrm

import (
	"math"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// VanGen implements van Genuchten's model with capillary pressure pc = patm - p
//  sl = slmin + (slmax - slmin) (1 + (α pc)ⁿ)⁻ᵐ  if pc > 0; slmax otherwise
type VanGen struct {

	// parameters
	α, m, n float64 // parameters
	slmin   float64 // minimum sl (residual saturation)
	slmax   float64 // maximum sl
	patm    float64 // atmospheric pressure
}

// add model to factory
func init() {
	register("van genuchten", func() Model { return new(VanGen) })
}

// Init initialises model
func (o *VanGen) Init(prms dbf.Params) (err error) {
	o.α, o.n, o.slmax, o.patm = 2e-4, 2, 1.0, 101325.0
	hasM := false
	for _, p := range prms {
		switch strings.ToLower(p.N) {
		case "alp":
			o.α = p.V
		case "m":
			o.m, hasM = p.V, true
		case "n":
			o.n = p.V
		case "slmin":
			o.slmin = p.V
		case "slmax":
			o.slmax = p.V
		case "patm":
			o.patm = p.V
		default:
			return chk.Err("vg: parameter named %q is incorrect\n", p.N)
		}
	}
	if o.n <= 1 {
		return chk.Err("vg: n must be greater than 1; n = %g is invalid\n", o.n)
	}
	if !hasM {
		o.m = 1 - 1/o.n
	}
	if o.α <= 0 || o.m <= 0 {
		return chk.Err("vg: alp and m must be positive; alp = %g and m = %g are invalid\n", o.α, o.m)
	}
	if o.slmin < 0 || o.slmax > 1 || o.slmin >= o.slmax {
		return chk.Err("vg: saturation limits must satisfy 0 ≤ slmin < slmax ≤ 1; [%g, %g] is invalid\n", o.slmin, o.slmax)
	}
	return
}

// GetPrms gets (an example) of parameters
func (o VanGen) GetPrms(example bool) dbf.Params {
	return dbf.Params{
		&dbf.P{N: "alp", V: 2e-4},
		&dbf.P{N: "n", V: 2},
		&dbf.P{N: "slmin", V: 0.05},
		&dbf.P{N: "slmax", V: 1.0},
		&dbf.P{N: "patm", V: 101325.0},
	}
}

// Args returns the names of arguments
func (o VanGen) Args() []string { return []string{"pressure"} }

// Value computes sl(p)
func (o VanGen) Value(x []float64) float64 {
	return o.Sl(o.patm - x[0])
}

// Partial computes ∂sl/∂p
func (o VanGen) Partial(i int, x []float64) float64 {
	return -o.Cc(o.patm - x[0])
}

// Sl computes sl directly from pc
func (o VanGen) Sl(pc float64) float64 {
	if pc <= 0 {
		return o.slmax
	}
	c := math.Pow(o.α*pc, o.n)
	return o.slmin + (o.slmax-o.slmin)*math.Pow(1+c, -o.m)
}

// Cc computes Cc(pc) := dsl/dpc
func (o VanGen) Cc(pc float64) float64 {
	if pc <= 0 {
		return 0
	}
	c := math.Pow(o.α*pc, o.n)
	return -(o.slmax - o.slmin) * o.m * o.n * c * math.Pow(1+c, -o.m-1) / pc
}
