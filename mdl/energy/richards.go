// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package energy

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// Richards implements the energy of a porous medium holding liquid water only
//  E = [ φ sl nl ul + (1 - φ0) ρr ur ] V
type Richards struct{}

// add model to factory
func init() {
	register("richards energy", func() Model { return new(Richards) })
}

// Init initialises model
func (o *Richards) Init(prms dbf.Params) (err error) {
	if len(prms) > 0 {
		return chk.Err("richards energy: parameter named %q is incorrect\n", prms[0].N)
	}
	return
}

// GetPrms gets (an example) of parameters
func (o Richards) GetPrms(example bool) dbf.Params {
	return nil
}

// Args returns the names of arguments
func (o Richards) Args() []string {
	return []string{
		"porosity",
		"base_porosity",
		"saturation_liquid",
		"molar_density_liquid",
		"internal_energy_liquid",
		"density_rock",
		"internal_energy_rock",
		"cell_volume",
	}
}

// Value computes E
func (o Richards) Value(x []float64) float64 {
	phi, phi0, sl, nl, ul, rho, ur, cv := x[0], x[1], x[2], x[3], x[4], x[5], x[6], x[7]
	return (phi*sl*nl*ul + (1-phi0)*rho*ur) * cv
}

// Partial computes ∂E/∂x[i]
func (o Richards) Partial(i int, x []float64) float64 {
	phi, phi0, sl, nl, ul, rho, ur, cv := x[0], x[1], x[2], x[3], x[4], x[5], x[6], x[7]
	switch i {
	case 0:
		return sl * nl * ul * cv
	case 1:
		return -rho * ur * cv
	case 2:
		return phi * nl * ul * cv
	case 3:
		return phi * sl * ul * cv
	case 4:
		return phi * sl * nl * cv
	case 5:
		return (1 - phi0) * ur * cv
	case 6:
		return (1 - phi0) * rho * cv
	case 7:
		return phi*sl*nl*ul + (1-phi0)*rho*ur
	}
	return 0
}
