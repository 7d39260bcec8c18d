// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package biophys

import (
	"math"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// LightUse implements a light use efficiency model of vegetation
//  Photosynthesis accumulates the gross production of each site
//
//   GPP += ε R f(T) f(θ) dt    with  f(T) = clip((T - Tmin)/(Topt - Tmin), 0, 1)  and  f(θ) = clip(θ/θfc, 0, 1)
//
//  where R is the incident radiation and θ the mean moisture of the rooting depth. Dynamics
//  allocates the accumulated production equally among size classes and removes the turnover:
//
//   B_k ← B_k (1 - κ Δdays) + GPP / nclasses
type LightUse struct {

	// parameters
	ε    float64 // light use efficiency [kg C / J]
	tmin float64 // temperature below which there is no production
	topt float64 // temperature of maximum production
	θfc  float64 // moisture above which there is no water stress
	κ    float64 // turnover rate [1/day]
	root float64 // rooting depth [m]
	b0   float64 // initial biomass of each class [kg C / m²]
	ncls int     // number of size classes

	// state
	sites []SiteInfo  // sites
	gpp   []float64   // [nsites] production accumulated since the last dynamics step
	bio   [][]float64 // [nsites][ncls] biomass

	// saved state
	gppS []float64   // saved production
	bioS [][]float64 // saved biomass
}

// add model to factory
func init() {
	RegisterModel("light use efficiency", func() ExternalModel { return new(LightUse) })
}

// Init initialises model
func (o *LightUse) Init(sites []SiteInfo, prms dbf.Params) (err error) {
	o.ε, o.tmin, o.topt, o.θfc, o.κ, o.root, o.b0, o.ncls = 1e-9, 273.15, 298.15, 0.3, 0.01, 1, 0.1, 3
	for _, p := range prms {
		switch strings.ToLower(p.N) {
		case "eps":
			o.ε = p.V
		case "tmin":
			o.tmin = p.V
		case "topt":
			o.topt = p.V
		case "wfc":
			o.θfc = p.V
		case "turnover":
			o.κ = p.V
		case "root":
			o.root = p.V
		case "b0":
			o.b0 = p.V
		case "nclasses":
			o.ncls = int(p.V)
		default:
			return chk.Err("light use efficiency: parameter named %q is incorrect\n", p.N)
		}
	}
	if o.ε < 0 || o.topt <= o.tmin || o.θfc <= 0 || o.κ < 0 || o.ncls < 1 {
		return chk.Err("light use efficiency: invalid parameters: eps=%g tmin=%g topt=%g wfc=%g turnover=%g nclasses=%d\n", o.ε, o.tmin, o.topt, o.θfc, o.κ, o.ncls)
	}
	o.sites = sites
	o.gpp = make([]float64, len(sites))
	o.bio = make([][]float64, len(sites))
	for i := range o.bio {
		o.bio[i] = make([]float64, o.ncls)
		for k := range o.bio[i] {
			o.bio[i][k] = o.b0
		}
	}
	return
}

// GetPrms gets (an example) of parameters
func (o LightUse) GetPrms(example bool) dbf.Params {
	return dbf.Params{
		&dbf.P{N: "eps", V: 1e-9},
		&dbf.P{N: "tmin", V: 273.15},
		&dbf.P{N: "topt", V: 298.15},
		&dbf.P{N: "wfc", V: 0.3},
		&dbf.P{N: "turnover", V: 0.01},
		&dbf.P{N: "root", V: 1},
		&dbf.P{N: "b0", V: 0.1},
		&dbf.P{N: "nclasses", V: 3},
	}
}

// NumClasses returns the number of size classes
func (o *LightUse) NumClasses() int { return o.ncls }

// Photosynthesis accumulates the production of all sites
func (o *LightUse) Photosynthesis(dt float64, drv *Drivers) error {
	for i := range o.sites {
		fT := math.Min(1, math.Max(0, (drv.AirTemp[i]-o.tmin)/(o.topt-o.tmin)))
		fθ := math.Min(1, math.Max(0, o.rootMoisture(i, drv)/o.θfc))
		o.gpp[i] += o.ε * drv.Radiation[i] * fT * fθ * dt
	}
	return nil
}

// Dynamics allocates the accumulated production and removes the turnover
func (o *LightUse) Dynamics(dayOfYear int, dt float64, drv *Drivers) error {
	days := dt / 86400
	for i := range o.sites {
		for k := range o.bio[i] {
			o.bio[i][k] = o.bio[i][k]*(1-o.κ*days) + o.gpp[i]/float64(o.ncls)
			if o.bio[i][k] < 0 {
				return chk.Err("light use efficiency: negative biomass at site %d on day %d\n", i, dayOfYear)
			}
		}
		o.gpp[i] = 0
	}
	return nil
}

// Save saves the production and the biomass
func (o *LightUse) Save() {
	if len(o.bioS) != len(o.bio) {
		o.gppS = make([]float64, len(o.gpp))
		o.bioS = make([][]float64, len(o.bio))
		for i := range o.bio {
			o.bioS[i] = make([]float64, len(o.bio[i]))
		}
	}
	copy(o.gppS, o.gpp)
	for i := range o.bio {
		copy(o.bioS[i], o.bio[i])
	}
}

// Restore restores the production and the biomass saved by Save
func (o *LightUse) Restore() {
	if len(o.bioS) != len(o.bio) {
		return
	}
	copy(o.gpp, o.gppS)
	for i := range o.bio {
		copy(o.bio[i], o.bioS[i])
	}
}

// Biomass writes the biomass of each class of site into out
func (o *LightUse) Biomass(site int, out []float64) {
	copy(out, o.bio[site])
}

// rootMoisture returns the thickness-weighted moisture within the rooting depth of site i
func (o *LightUse) rootMoisture(i int, drv *Drivers) float64 {
	θ := drv.Moisture[i]
	s := o.sites[i]
	if len(s.Dz) == 0 {
		return θ[0]
	}
	var sum, h float64
	for j, dz := range s.Dz {
		if s.Depth[j]-dz/2 >= o.root {
			break
		}
		sum += θ[j] * dz
		h += dz
	}
	if h == 0 {
		return θ[0]
	}
	return sum / h
}
