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

// Freezing implements a smooth unfrozen fraction
//  f(T) = 1 / (1 + exp(-(T - T0) / w))
type Freezing struct {
	t0 float64 // freezing point
	w  float64 // width of the freezing interval
}

// Init initialises model
func (o *Freezing) Init(prms dbf.Params) (err error) {
	o.t0, o.w = 273.15, 0.5
	for _, p := range prms {
		switch strings.ToLower(p.N) {
		case "t0":
			o.t0 = p.V
		case "w":
			o.w = p.V
		default:
			return chk.Err("unfrozen fraction: parameter named %q is incorrect\n", p.N)
		}
	}
	if o.w <= 0 {
		return chk.Err("unfrozen fraction: width must be positive; w = %g is invalid\n", o.w)
	}
	return
}

// GetPrms gets (an example) of parameters
func (o Freezing) GetPrms(example bool) dbf.Params {
	return dbf.Params{
		&dbf.P{N: "T0", V: 273.15},
		&dbf.P{N: "w", V: 0.5},
	}
}

// Args returns the names of arguments
func (o Freezing) Args() []string { return []string{"temperature"} }

// Value computes f(T)
func (o Freezing) Value(x []float64) float64 { return o.F(x[0]) }

// Partial computes df/dT
func (o Freezing) Partial(i int, x []float64) float64 { return o.DfDT(x[0]) }

// F computes the unfrozen fraction
func (o Freezing) F(T float64) float64 {
	return 1 / (1 + math.Exp(-(T-o.t0)/o.w))
}

// DfDT computes df/dT
func (o Freezing) DfDT(T float64) float64 {
	f := o.F(T)
	return f * (1 - f) / o.w
}

// Permafrost splits the van Genuchten saturation into liquid and ice
//  sl = f(T) S(p) and si = (1 - f(T)) S(p)
type Permafrost struct {
	VanGen
	Freezing
	ice bool // computes si instead of sl
}

// add models to factory
func init() {
	register("unfrozen fraction", func() Model { return new(Freezing) })
	register("permafrost liquid saturation", func() Model { return new(Permafrost) })
	register("permafrost ice saturation", func() Model { return &Permafrost{ice: true} })
}

// Init initialises model
func (o *Permafrost) Init(prms dbf.Params) (err error) {
	var pv, pf dbf.Params
	for _, p := range prms {
		switch strings.ToLower(p.N) {
		case "t0", "w":
			pf = append(pf, p)
		default:
			pv = append(pv, p)
		}
	}
	if err = o.VanGen.Init(pv); err != nil {
		return
	}
	return o.Freezing.Init(pf)
}

// GetPrms gets (an example) of parameters
func (o Permafrost) GetPrms(example bool) dbf.Params {
	return append(o.VanGen.GetPrms(example), o.Freezing.GetPrms(example)...)
}

// Args returns the names of arguments
func (o Permafrost) Args() []string { return []string{"temperature", "pressure"} }

// Value computes sl or si
func (o Permafrost) Value(x []float64) float64 {
	sl, si := o.Saturations(x[0], x[1])
	if o.ice {
		return si
	}
	return sl
}

// Partial computes the derivative of sl or si with respect to T (i = 0) or p (i = 1)
func (o Permafrost) Partial(i int, x []float64) float64 {
	dsl, dsi := o.DerivsT(x[0], x[1])
	if i == 1 {
		dsl, dsi = o.DerivsP(x[0], x[1])
	}
	if o.ice {
		return dsi
	}
	return dsl
}

// Saturations computes sl and si
func (o Permafrost) Saturations(T, p float64) (sl, si float64) {
	s := o.Sl(o.patm - p)
	f := o.F(T)
	return f * s, (1 - f) * s
}

// DerivsT computes ∂sl/∂T and ∂si/∂T
func (o Permafrost) DerivsT(T, p float64) (dsl, dsi float64) {
	d := o.DfDT(T) * o.Sl(o.patm-p)
	return d, -d
}

// DerivsP computes ∂sl/∂p and ∂si/∂p
func (o Permafrost) DerivsP(T, p float64) (dsl, dsi float64) {
	d := -o.Cc(o.patm - p)
	f := o.F(T)
	return f * d, (1 - f) * d
}
