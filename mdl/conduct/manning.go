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

// Manning implements the conductivity of overland flow
//  K = fu nl dᵃ / (nm √max(S, Smin))  for d > 0; 0 otherwise
//  where d is the ponded depth, nl the molar density and fu the unfrozen fraction
type Manning struct {
	nm    float64 // Manning's coefficient
	slope float64 // surface slope
	smin  float64 // minimum slope
	a     float64 // exponent
	fac   float64 // 1 / (nm √max(S, Smin))
}

// add model to factory
func init() {
	register("manning", func() Model { return new(Manning) })
}

// Init initialises model
func (o *Manning) Init(prms dbf.Params) (err error) {
	o.nm, o.slope, o.smin, o.a = 0.03, 1e-3, 1e-8, 5.0/3.0
	for _, p := range prms {
		switch strings.ToLower(p.N) {
		case "n", "manning coefficient":
			o.nm = p.V
		case "slope":
			o.slope = p.V
		case "smin":
			o.smin = p.V
		case "a":
			o.a = p.V
		default:
			return chk.Err("manning: parameter named %q is incorrect\n", p.N)
		}
	}
	if o.nm <= 0 || o.smin <= 0 || o.a < 1 {
		return chk.Err("manning: n and smin must be positive and a ≥ 1; n=%g smin=%g a=%g are invalid\n", o.nm, o.smin, o.a)
	}
	o.fac = 1 / (o.nm * math.Sqrt(math.Max(o.slope, o.smin)))
	return
}

// GetPrms gets (an example) of parameters
func (o Manning) GetPrms(example bool) dbf.Params {
	return dbf.Params{
		&dbf.P{N: "n", V: 0.03},
		&dbf.P{N: "slope", V: 1e-3},
		&dbf.P{N: "smin", V: 1e-8},
		&dbf.P{N: "a", V: 5.0 / 3.0},
	}
}

// Args returns the names of arguments
func (o Manning) Args() []string {
	return []string{"ponded_depth", "molar_density_liquid", "unfrozen_fraction"}
}

// Value computes K
func (o Manning) Value(x []float64) float64 {
	d, nl, fu := x[0], x[1], x[2]
	if d <= 0 {
		return 0
	}
	return fu * nl * math.Pow(d, o.a) * o.fac
}

// Partial computes ∂K/∂x[i]
func (o Manning) Partial(i int, x []float64) float64 {
	d, nl, fu := x[0], x[1], x[2]
	if d <= 0 {
		return 0
	}
	switch i {
	case 0:
		return fu * nl * o.a * math.Pow(d, o.a-1) * o.fac
	case 1:
		return fu * math.Pow(d, o.a) * o.fac
	}
	return nl * math.Pow(d, o.a) * o.fac
}
