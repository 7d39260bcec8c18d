// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package energy

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// indices of arguments of LiquidIce
const (
	iPhi  = iota // porosity
	iPhi0        // base porosity
	iSl          // liquid saturation
	iNl          // molar density of liquid
	iUl          // internal energy of liquid
	iSi          // ice saturation
	iNi          // molar density of ice
	iUi          // internal energy of ice
	iRho         // density of rock
	iUr          // internal energy of rock
	iCv          // cell volume
)

// LiquidIce implements the energy of a porous medium holding liquid water and ice
//  E = [ φ (sl nl ul + si ni ui) + (1 - φ0) ρr ur ] V
type LiquidIce struct{}

// add model to factory
func init() {
	register("liquid ice energy", func() Model { return new(LiquidIce) })
}

// Init initialises model
func (o *LiquidIce) Init(prms dbf.Params) (err error) {
	if len(prms) > 0 {
		return chk.Err("liquid ice energy: parameter named %q is incorrect\n", prms[0].N)
	}
	return
}

// GetPrms gets (an example) of parameters
func (o LiquidIce) GetPrms(example bool) dbf.Params {
	return nil
}

// Args returns the names of arguments
func (o LiquidIce) Args() []string {
	return []string{
		"porosity",
		"base_porosity",
		"saturation_liquid",
		"molar_density_liquid",
		"internal_energy_liquid",
		"saturation_ice",
		"molar_density_ice",
		"internal_energy_ice",
		"density_rock",
		"internal_energy_rock",
		"cell_volume",
	}
}

// Value computes E
func (o LiquidIce) Value(x []float64) float64 {
	return (x[iPhi]*(x[iSl]*x[iNl]*x[iUl]+x[iSi]*x[iNi]*x[iUi]) + (1-x[iPhi0])*x[iRho]*x[iUr]) * x[iCv]
}

// Partial computes ∂E/∂x[i]
func (o LiquidIce) Partial(i int, x []float64) float64 {
	switch i {
	case iPhi:
		return (x[iSl]*x[iNl]*x[iUl] + x[iSi]*x[iNi]*x[iUi]) * x[iCv]
	case iPhi0:
		return -x[iRho] * x[iUr] * x[iCv]
	case iSl:
		return x[iPhi] * x[iNl] * x[iUl] * x[iCv]
	case iNl:
		return x[iPhi] * x[iSl] * x[iUl] * x[iCv]
	case iUl:
		return x[iPhi] * x[iSl] * x[iNl] * x[iCv]
	case iSi:
		return x[iPhi] * x[iNi] * x[iUi] * x[iCv]
	case iNi:
		return x[iPhi] * x[iSi] * x[iUi] * x[iCv]
	case iUi:
		return x[iPhi] * x[iSi] * x[iNi] * x[iCv]
	case iRho:
		return (1 - x[iPhi0]) * x[iUr] * x[iCv]
	case iUr:
		return (1 - x[iPhi0]) * x[iRho] * x[iCv]
	case iCv:
		return x[iPhi]*(x[iSl]*x[iNl]*x[iUl]+x[iSi]*x[iNi]*x[iUi]) + (1-x[iPhi0])*x[iRho]*x[iUr]
	}
	return 0
}
