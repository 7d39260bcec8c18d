// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package biophys

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// SiteInfo holds the geometry of one site; i.e. one surface cell and the column of cells below it
type SiteInfo struct {
	Area  float64   // area of the surface cell
	Cells []int     // subsurface cells from top to bottom; empty for surface-only runs
	Depth []float64 // depth of the centroid of each cell below the surface
	Dz    []float64 // thickness of each cell
}

// Drivers holds the state of the environment seen by the vegetation; one entry per site
type Drivers struct {
	AirTemp   []float64   // air temperature [K]
	Humidity  []float64   // relative humidity [-]
	Wind      []float64   // wind speed [m/s]
	Rain      []float64   // precipitation [m/s]
	Radiation []float64   // incident shortwave radiation [W/m²]
	CO2       []float64   // CO2 concentration [ppm]
	SoilTemp  [][]float64 // soil temperature along each column [K]
	Moisture  [][]float64 // volumetric soil moisture along each column [-]
	Patm      float64     // atmospheric pressure [Pa]
	DayOfYear int         // day of year from 1 to 365
}

// ExternalModel defines vegetation models driven by the biophysical kernel
type ExternalModel interface {
	Init(sites []SiteInfo, prms dbf.Params) error           // initialises model
	NumClasses() int                                        // number of size classes of biomass
	Photosynthesis(dt float64, drv *Drivers) error          // runs one photosynthesis step of length dt
	Dynamics(dayOfYear int, dt float64, drv *Drivers) error // runs one vegetation dynamics step of length dt
	Biomass(site int, out []float64)                        // writes the biomass of each size class of site into out
	Save()                                                  // saves the state of all sites
	Restore()                                               // restores the state saved by the last call to Save
}

// allocators holds all available models
var allocators = map[string]func() ExternalModel{}

// RegisterModel adds a vegetation model; registering the same name twice is a programming error
func RegisterModel(name string, allocator func() ExternalModel) {
	if _, ok := allocators[name]; ok {
		chk.Panic("vegetation model %q is already registered", name)
	}
	allocators[name] = allocator
}

// NewModel returns a new vegetation model
func NewModel(name string) (ExternalModel, error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("model %q is not available in 'biophys' database", name)
	}
	return allocator(), nil
}

// Models returns the names of all registered models
func Models() (names []string) {
	for k := range allocators {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}

// cumulative days at the end of each month
var monthEnds = []int{31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}

// Calendar returns the day of year (1 to 365), the month (1 to 12) and the day of month of time t [s]
//  Years have 365 days.
func Calendar(t float64) (doy, month, dom int) {
	days := t / 86400
	doy = int(math.Floor(math.Mod(days, 365))) + 1
	for i, end := range monthEnds {
		if doy <= end {
			month, dom = i+1, doy
			if i > 0 {
				dom = doy - monthEnds[i-1]
			}
			return
		}
	}
	return
}
