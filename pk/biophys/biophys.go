// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package biophys implements the process kernel coupling an external vegetation model
//
//  The model runs photosynthesis and vegetation dynamics on their own cadences; the time step
//  proposed by the kernel always lands on the next event. Each surface cell is one site.
package biophys

import (
	"math"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/pk"
	"github.com/a-hamm/ats/state"
)

// Vegetation implements the biophysical process kernel
type Vegetation struct {
	pk.Base

	// model
	Model ExternalModel // vegetation model
	sites []SiteInfo    // one site per surface cell
	drv   Drivers       // drivers gathered in AdvanceStep

	// keys
	key        string   // biomass
	sub        string   // name of the subsurface mesh
	driverKeys []string // air temperature, humidity, wind, rain, radiation and CO2 on the surface
	tempKey    string   // soil temperature
	satKey     string   // soil liquid saturation
	poroKey    string   // porosity

	// options
	DtPhoto    float64 // photosynthesis time step
	DtDynamics float64 // vegetation dynamics time step
	DtMax      float64 // largest step
	SurfOnly   bool    // no subsurface; soil temperature is the air temperature
	Patm       float64 // atmospheric pressure

	// sub-cycles
	tPhoto, tDyn float64 // times of the last photosynthesis and dynamics events
	runPhoto     bool    // photosynthesis ran in the last call to AdvanceStep
	runDyn       bool    // dynamics ran in the last call to AdvanceStep
	pendPhoto    float64 // time of the photosynthesis event to commit
	pendDyn      float64 // time of the dynamics event to commit
	pending      bool    // the model ran events that are not committed yet
}

// add kernel to factory
func init() {
	pk.Register("biophysics", func(name string, plist *inp.ParameterList, env *pk.Env) (pk.PK, error) {
		return New(name, plist, env)
	})
}

// New returns a new biophysical kernel
func New(name string, plist *inp.ParameterList, env *pk.Env) (o *Vegetation, err error) {
	if !plist.Has("domain name") {
		plist.Set("domain name", "surface")
	}
	o = &Vegetation{Base: pk.NewBase(name, plist, env)}
	o.DtPhoto = plist.Float("photosynthesis time step", 1800)
	o.DtDynamics = plist.Float("veg dynamics time step", 86400)
	o.DtMax = plist.Float("max time step", 1e99)
	o.SurfOnly = plist.Bool("surface only", false)
	o.Patm = plist.Float("atmospheric pressure", 101325)
	o.sub = plist.String("subsurface domain name", "domain")
	if o.DtPhoto <= 0 || o.DtDynamics <= 0 || o.DtMax <= 0 {
		return nil, errs.Configf(name, "time steps must be positive; got photosynthesis=%g dynamics=%g max=%g", o.DtPhoto, o.DtDynamics, o.DtMax)
	}
	if o.Model, err = NewModel(plist.String("model", "light use efficiency")); err != nil {
		return nil, errs.Wrap(errs.Config, name, err, "cannot allocate vegetation model")
	}
	o.key = o.Key("biomass")
	for _, n := range []string{"air_temperature", "relative_humidity", "wind_speed", "precipitation_rain", "incident_radiation", "co2_concentration"} {
		o.driverKeys = append(o.driverKeys, o.Key(n))
	}
	o.tempKey = o.Plist.ReadKey(o.sub, "soil temperature", "temperature")
	o.satKey = o.Plist.ReadKey(o.sub, "saturation", "saturation_liquid")
	o.poroKey = o.Plist.ReadKey(o.sub, "porosity", "porosity")
	return o, plist.Err()
}

// Setup declares the drivers and the biomass
func (o *Vegetation) Setup() (err error) {
	if err = o.Lifecycle().To(pk.SetUp); err != nil {
		return
	}
	surf, err := o.GetMesh()
	if err != nil {
		return
	}
	if o.sites == nil {
		if o.sites, err = o.buildSites(surf); err != nil {
			return
		}
		if err = o.Model.Init(o.sites, o.Plist.Params("model parameters")); err != nil {
			return errs.Wrap(errs.Config, o.Name(), err, "invalid vegetation model parameters")
		}
	}
	cells := state.CellLayout(o.Domain)
	for _, key := range o.driverKeys {
		if err = o.G.Require(key, cells); err != nil {
			return
		}
	}
	if !o.SurfOnly {
		sub := state.CellLayout(o.sub)
		for _, key := range []string{o.tempKey, o.satKey, o.poroKey} {
			if err = o.G.Require(key, sub); err != nil {
				return
			}
		}
	}
	layout := state.NewLayout(o.Domain, state.Component{Name: "cell", Kind: mesh.Cell, Width: o.Model.NumClasses()})
	return o.RequirePrimary(o.key, layout)
}

// buildSites returns one site per surface cell with the column of subsurface cells below it
func (o *Vegetation) buildSites(surf mesh.Mesh) (sites []SiteInfo, err error) {
	n := surf.NumEntities(mesh.Cell)
	sites = make([]SiteInfo, n)
	for i := range sites {
		sites[i].Area = surf.CellVolume(i)
	}
	if o.SurfOnly {
		return
	}
	m, err := o.S.Mesh(o.sub)
	if err != nil {
		return
	}
	cols := m.Columns()
	if len(cols) != n {
		return nil, errs.Configf(o.Name(), "surface %q has %d cells but subsurface %q has %d columns", o.Domain, n, o.sub, len(cols))
	}
	for i, col := range cols {
		ztop := m.FaceCentroid(m.CellFaces(col[0])[0])
		for _, c := range col {
			x := m.CellCentroid(c)
			sites[i].Cells = append(sites[i].Cells, c)
			sites[i].Depth = append(sites[i].Depth, ztop[len(ztop)-1]-x[len(x)-1])
			sites[i].Dz = append(sites[i].Dz, m.CellVolume(c)/surf.CellVolume(i))
		}
	}
	return
}

// Initialize writes the initial biomass and starts the sub-cycles at the current time
func (o *Vegetation) Initialize() (err error) {
	if err = o.Lifecycle().To(pk.Initialized); err != nil {
		return
	}
	b, err := o.Next(o.key)
	if err != nil {
		return
	}
	o.writeBiomass(b)
	o.S.SetInitialized(o.key)
	o.tPhoto = o.S.Time(state.Next)
	o.tDyn = o.tPhoto
	o.SetSolution(state.NewLeaf(o.Name(), b))
	o.ChangedSolution()
	return
}

// GetDt returns the time to the next photosynthesis or dynamics event
func (o *Vegetation) GetDt() float64 {
	t := o.S.Time(state.Current)
	dt := math.Min(o.tPhoto+o.DtPhoto-t, o.DtPhoto)
	dt = math.Min(o.tDyn+o.DtDynamics-t, math.Min(dt, o.DtDynamics))
	return math.Min(dt, o.DtMax)
}

// SetDt has no effect: the step size is given by the sub-cycles
func (o *Vegetation) SetDt(dt float64) {}

// AdvanceStep gathers the drivers and runs the events ending at tNew
//  The model state is saved before the events run; events of a step that was not committed are
//  undone before the next attempt.
func (o *Vegetation) AdvanceStep(tOld, tNew float64, reinit bool) (failed bool, err error) {
	if err = pk.Transition(pk.Predicting, o); err != nil {
		return
	}
	if err = pk.Transition(pk.Solving, o); err != nil {
		return
	}
	o.rollback()
	tol := 1e-12 * math.Max(1, math.Abs(tNew))
	o.runPhoto = math.Abs(tNew-(o.tPhoto+o.DtPhoto)) < tol
	o.runDyn = math.Abs(tNew-(o.tDyn+o.DtDynamics)) < tol
	if !o.runPhoto && !o.runDyn {
		return
	}
	if err = o.gather(tOld); err != nil {
		return
	}
	o.Model.Save()
	o.pending = true
	if o.runPhoto {
		if err = o.Model.Photosynthesis(o.DtPhoto, &o.drv); err != nil {
			return o.failure(err)
		}
		o.pendPhoto = tNew
	}
	if o.runDyn {
		if err = o.Model.Dynamics(o.drv.DayOfYear, o.DtDynamics, &o.drv); err != nil {
			return o.failure(err)
		}
		o.pendDyn = tNew
	}
	o.Log.Debug().Float64("t", tNew).Bool("photosynthesis", o.runPhoto).Bool("dynamics", o.runDyn).Int("doy", o.drv.DayOfYear).Msg("vegetation")
	return
}

// failure maps model errors to failed steps; ConfigErrors are returned
func (o *Vegetation) failure(err error) (bool, error) {
	if errs.ClassOf(err) == errs.Config {
		return false, err
	}
	o.Log.Warn().Err(err).Msg("vegetation step failed")
	return true, nil
}

// CommitStep writes the biomass and closes the events of the step
func (o *Vegetation) CommitStep(tOld, tNew float64) (err error) {
	if err = pk.Transition(pk.Committing, o); err != nil {
		return
	}
	if o.runPhoto {
		o.tPhoto = o.pendPhoto
	}
	if o.runDyn {
		o.tDyn = o.pendDyn
	}
	o.runPhoto, o.runDyn, o.pending = false, false, false
	b, err := o.Next(o.key)
	if err != nil {
		return
	}
	o.writeBiomass(b)
	o.ChangedSolution()
	o.Commit()
	return
}

// ChangedSolution tells the evaluators that the biomass changed
//  After a rejected step, it also undoes the events of the rejected attempt.
func (o *Vegetation) ChangedSolution() {
	o.rollback()
	o.G.MarkChanged(o.key)
}

// rollback restores the model state saved before events that were not committed
func (o *Vegetation) rollback() {
	if !o.pending {
		return
	}
	o.Model.Restore()
	o.runPhoto, o.runDyn, o.pending = false, false, false
}

// writeBiomass copies the biomass of all sites into b
func (o *Vegetation) writeBiomass(b *state.Field) {
	n := o.Model.NumClasses()
	out := make([]float64, n)
	for i := range o.sites {
		o.Model.Biomass(i, out)
		for k := 0; k < n; k++ {
			b.Set("cell", i, k, out[k])
		}
	}
}

// gather pulls all drivers from the evaluators
func (o *Vegetation) gather(tOld float64) (err error) {
	n := len(o.sites)
	surf := make([][]float64, len(o.driverKeys))
	for j, key := range o.driverKeys {
		f, err := o.G.Update(key, o.Name())
		if err != nil {
			return err
		}
		surf[j] = f.Clone().Comp("cell")
	}
	o.drv.AirTemp, o.drv.Humidity, o.drv.Wind = surf[0], surf[1], surf[2]
	o.drv.Rain, o.drv.Radiation, o.drv.CO2 = surf[3], surf[4], surf[5]
	o.drv.Patm = o.Patm
	if v, err := o.S.Scalar("atmospheric_pressure", state.Next); err == nil {
		o.drv.Patm = v
	}
	o.drv.DayOfYear, _, _ = Calendar(tOld)
	o.drv.SoilTemp = make([][]float64, n)
	o.drv.Moisture = make([][]float64, n)
	if o.SurfOnly {
		for i := 0; i < n; i++ {
			o.drv.SoilTemp[i] = []float64{o.drv.AirTemp[i]}
			o.drv.Moisture[i] = []float64{0.5}
		}
		return
	}
	T, err := o.G.Update(o.tempKey, o.Name())
	if err != nil {
		return
	}
	sl, err := o.G.Update(o.satKey, o.Name())
	if err != nil {
		return
	}
	φ, err := o.G.Update(o.poroKey, o.Name())
	if err != nil {
		return
	}
	for i, s := range o.sites {
		o.drv.SoilTemp[i] = make([]float64, len(s.Cells))
		o.drv.Moisture[i] = make([]float64, len(s.Cells))
		for j, c := range s.Cells {
			o.drv.SoilTemp[i][j] = T.Get("cell", c, 0)
			o.drv.Moisture[i][j] = sl.Get("cell", c, 0) * φ.Get("cell", c, 0)
		}
	}
	return
}
