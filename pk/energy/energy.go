// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package energy implements the process kernel of heat transport with freezing and thawing
//
//  dE/dt + div(-K grad T) + div(q H) = Q
//
//  E is the energy of each cell, K the thermal conductivity, q the (optional) water flux
//  and H the molar enthalpy of the advected water. The primary variable is the temperature
//  on cells and boundary faces.
package energy

import (
	"math"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/linalg"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/pk"
	"github.com/a-hamm/ats/state"
	"github.com/cpmech/gosl/la"
)

// Tfreeze is the freezing temperature of water [K]
const Tfreeze = 273.15

// freezeEps is the distance from Tfreeze of values snapped by the predictor
const freezeEps = 1e-5

// Energy implements the energy process kernel
type Energy struct {
	pk.Base

	// keys
	key     string // temperature
	eKey    string // energy
	kKey    string // thermal conductivity
	fluxKey string // diagnostic diffusive energy flux
	advKey  string // diagnostic advected energy flux
	qKey    string // water flux
	hKey    string // enthalpy
	srcKey  string // energy source
	volKey  string // cell volume

	// options
	Method     string  // upwind conductivity method
	Freezing   bool    // modify predictor for freezing
	Consistent bool    // modify predictor with consistent faces
	Tlimit     float64 // limit of corrections; ≤ 0 means no limit
	Atol, Rtol float64 // tolerances of the error norm
	Tmin, Tmax float64 // admissible temperatures
	Advection  bool    // include thermal advection
	Source     bool    // include source term

	// auxiliary
	stepper *pk.Stepper            // time integrator
	op      *pk.Diffusion          // diffusion operator
	bcs     *pk.BoundaryConditions // boundary conditions
	A       *linalg.Matrix         // preconditioner
	x, b    la.Vector              // auxiliary vectors for the preconditioner
	kReady  bool                   // transmissibilities were computed
	Clipped int                    // number of corrections limited in the last call to ModifyCorrection
}

// add kernel to factory
func init() {
	pk.Register("energy", func(name string, plist *inp.ParameterList, env *pk.Env) (pk.PK, error) {
		return New(name, plist, env)
	})
}

// New returns a new energy kernel
func New(name string, plist *inp.ParameterList, env *pk.Env) (o *Energy, err error) {
	o = &Energy{Base: pk.NewBase(name, plist, env)}
	o.key = o.Plist.ReadKey(o.Domain, "primary variable", "temperature")
	o.eKey = o.Plist.ReadKey(o.Domain, "conserved quantity", "energy")
	o.kKey = o.Key("thermal_conductivity")
	o.fluxKey = o.Plist.ReadKey(o.Domain, "diffusive energy flux", "energy_flux")
	o.advKey = o.Plist.ReadKey(o.Domain, "advected energy flux", "advected_energy_flux")
	o.qKey = o.Plist.ReadKey(o.Domain, "water flux", "water_flux")
	o.hKey = o.Key("enthalpy")
	o.srcKey = o.Plist.ReadKey(o.Domain, "source", "total_energy_source")
	o.volKey = o.Key("cell_volume")
	o.Method = plist.String("upwind conductivity method", "arithmetic mean")
	o.Freezing = plist.Bool("modify predictor for freezing", false)
	o.Consistent = plist.Bool("modify predictor with consistent faces", false)
	o.Tlimit = plist.Float("limit correction to temperature change [K]", -1)
	o.Atol = plist.Float("absolute error tolerance", 1)
	o.Rtol = plist.Float("relative error tolerance", 0)
	o.Tmin = plist.Float("min temperature", 200)
	o.Tmax = plist.Float("max temperature", 330)
	o.Advection = plist.Bool("include thermal advection", false)
	o.Source = plist.Bool("source term", false)
	if o.stepper, err = pk.NewStepper(plist, env, o.Log); err != nil {
		return nil, err
	}
	return o, plist.Err()
}

// Setup declares fields; calling it more than once has no further effect
func (o *Energy) Setup() (err error) {
	if err = o.Lifecycle().To(pk.SetUp); err != nil {
		return
	}
	m, err := o.GetMesh()
	if err != nil {
		return
	}
	if o.op == nil {
		var bclist *inp.ParameterList
		if o.Plist.IsSublist("boundary conditions") {
			bclist = o.Plist.Sublist("boundary conditions")
		}
		if o.bcs, err = pk.ReadBoundaryConditions(m, bclist, o.Env.Funcs); err != nil {
			return
		}
		if o.op, err = pk.NewDiffusion(m, o.bcs, o.Method, 0); err != nil {
			return errs.Wrap(errs.Config, o.Name(), err, "energy PK has no upwinding method named %q", o.Method)
		}
		o.A = linalg.NewMatrix(o.op.Size(), o.op.Nnz()+m.NumEntities(mesh.Cell))
		o.A.Method = o.Plist.String("preconditioner method", "umfpack")
		o.x, o.b = la.NewVector(o.op.Size()), la.NewVector(o.op.Size())
	}
	cells := state.CellLayout(o.Domain)
	faces := state.NewLayout(o.Domain, state.Component{Name: "face", Kind: mesh.Face, Width: 1})
	if err = o.RequirePrimary(o.key, pk.CellFaceLayout(o.Domain)); err != nil {
		return
	}
	for _, key := range []string{o.eKey, o.kKey} {
		if err = o.G.Require(key, cells); err != nil {
			return
		}
	}
	if err = o.S.Require(o.fluxKey, o.Name(), faces); err != nil {
		return
	}
	if o.Advection {
		if err = o.G.Require(o.hKey, cells); err != nil {
			return
		}
		if err = o.S.Require(o.qKey, "", faces); err != nil {
			return
		}
		if err = o.S.Require(o.advKey, o.Name(), faces); err != nil {
			return
		}
	}
	if o.Source {
		for _, key := range []string{o.srcKey, o.volKey} {
			if err = o.G.Require(key, cells); err != nil {
				return
			}
		}
	}
	return o.Plist.Err()
}

// Initialize sets the temperature from "initial condition" (unless already set) and zeroes diagnostics
func (o *Energy) Initialize() (err error) {
	if err = o.Lifecycle().To(pk.Initialized); err != nil {
		return
	}
	T, err := o.Next(o.key)
	if err != nil {
		return
	}
	if !o.S.Initialized(o.key) {
		if err = o.InitialCondition(o.key, T); err != nil {
			return
		}
	}
	o.bcs.Compute(o.S.Time(state.Next))
	o.applyDirichlet(T)
	for _, key := range []string{o.fluxKey, o.advKey} {
		if !o.S.Has(key) {
			continue
		}
		f, err := o.Next(key)
		if err != nil {
			return err
		}
		f.Fill(0)
		o.S.SetInitialized(key)
	}
	o.SetSolution(state.NewLeaf(o.Name(), T, "cell", "boundary_face"))
	o.ChangedSolution()
	return
}

// GetDt returns the step size proposed by the time integrator
func (o *Energy) GetDt() float64 { return o.stepper.Dt }

// SetDt sets the step size
func (o *Energy) SetDt(dt float64) { o.stepper.Dt = dt }

// Stepper returns the time integrator
func (o *Energy) Stepper() *pk.Stepper { return o.stepper }

// PrimaryKey returns the key of the temperature
func (o *Energy) PrimaryKey() string { return o.key }

// ConservedKey returns the key of the energy
func (o *Energy) ConservedKey() string { return o.eKey }

// Block returns the preconditioner matrix
func (o *Energy) Block() *linalg.Matrix { return o.A }

// Operator returns the diffusion operator
func (o *Energy) Operator() *pk.Diffusion { return o.op }

// AdvanceStep advances the temperature from tOld to tNew
func (o *Energy) AdvanceStep(tOld, tNew float64, reinit bool) (failed bool, err error) {
	if err = pk.Transition(pk.Predicting, o); err != nil {
		return
	}
	return o.stepper.Advance(o, tOld, tNew)
}

// CommitStep computes the diagnostic fluxes and copies next into current and inter
func (o *Energy) CommitStep(tOld, tNew float64) (err error) {
	if err = pk.Transition(pk.Committing, o); err != nil {
		return
	}
	o.stepper.Commit(tNew - tOld)
	o.bcs.Compute(tNew)
	T, err := o.Next(o.key)
	if err != nil {
		return
	}
	o.applyDirichlet(T)
	if err = o.updateConductivity(); err != nil {
		return
	}
	eflux, err := o.Next(o.fluxKey)
	if err != nil {
		return
	}
	o.op.Fluxes(T, eflux.Comp("face"))
	if o.Advection {
		aflux, err := o.Next(o.advKey)
		if err != nil {
			return err
		}
		if err = o.advectedFluxes(aflux.Comp("face")); err != nil {
			return err
		}
	}
	o.Commit()
	return
}

// ChangedSolution tells the evaluators that the temperature changed
func (o *Energy) ChangedSolution() {
	o.G.MarkChanged(o.key)
}

// Residual computes  r = (E - E_inter)/h + div(fluxes) - Q  on cells and the boundary conditions on boundary faces
func (o *Energy) Residual(tOld, tNew float64, u, r *state.TreeVector) (err error) {
	h := tNew - tOld
	o.bcs.Compute(tNew)
	E, err := o.G.Update(o.eKey, o.Name())
	if err != nil {
		return
	}
	E0, err := o.Inter(o.eKey)
	if err != nil {
		return
	}
	rf := r.Field()
	rf.Fill(0)
	for c := 0; c < rf.Size("cell"); c++ {
		rf.Set("cell", c, 0, (E.Get("cell", c, 0)-E0.Get("cell", c, 0))/h)
	}
	if err = o.updateConductivity(); err != nil {
		return
	}
	o.op.AddResidual(u.Field(), rf)
	if o.Advection {
		if err = o.addAdvection(rf); err != nil {
			return
		}
	}
	if o.Source {
		Q, err := o.G.Update(o.srcKey, o.Name())
		if err != nil {
			return err
		}
		V, err := o.G.Update(o.volKey, o.Name())
		if err != nil {
			return err
		}
		for c := 0; c < rf.Size("cell"); c++ {
			rf.Set("cell", c, 0, rf.Get("cell", c, 0)-Q.Get("cell", c, 0)*V.Get("cell", c, 0))
		}
	}
	return
}

// UpdatePreconditioner assembles  dE/dT / h + diffusion
func (o *Energy) UpdatePreconditioner(t float64, u *state.TreeVector, h float64) (err error) {
	if err = o.updateConductivity(); err != nil {
		return
	}
	dEdT, err := o.G.Chain(o.eKey, o.key, o.Name())
	if err != nil {
		return
	}
	o.A.Start()
	o.op.Assemble(o.A)
	for c := 0; c < dEdT.Size("cell"); c++ {
		o.A.Put(c, c, dEdT.Get("cell", c, 0)/h)
	}
	return
}

// ApplyPreconditioner computes pu = A⁻¹ r
func (o *Energy) ApplyPreconditioner(r, pu *state.TreeVector) (err error) {
	r.Flatten(o.b)
	if err = o.A.ApplyInverse(o.x, o.b); err != nil {
		return
	}
	pu.Scatter(o.x)
	return
}

// ErrorNorm returns max |dT| / (atol + rtol |T|) over all ranks
func (o *Energy) ErrorNorm(u, du *state.TreeVector) float64 {
	return o.ScaledNorm(u, du, o.Atol, o.Rtol)
}

// IsAdmissible tells whether all temperatures (cells and boundary faces, on all ranks) are
// within [Tmin, Tmax]
func (o *Energy) IsAdmissible(u *state.TreeVector) bool {
	vmin, vmax := o.GlobalMinMax(u.Field(), "cell", "boundary_face")
	if !(vmin >= o.Tmin && vmax <= o.Tmax) {
		o.Log.Debug().Float64("min", vmin).Float64("max", vmax).Msg("temperature is not admissible")
		return false
	}
	return true
}

// ModifyPredictor snaps values crossing the freezing point and computes consistent faces
//  A value whose sign of T - Tfreeze differs from the one of u0 is moved to Tfreeze ∓ 1e-5
//  on the side of the new value. Calling it twice with the same u0 gives the same u.
func (o *Energy) ModifyPredictor(h float64, u0, u *state.TreeVector) (modified bool, err error) {
	o.bcs.Compute(o.S.Time(state.Next))
	T, T0 := u.Field(), u0.Field()
	before := T.Clone()
	if o.Freezing {
		for _, comp := range []string{"cell", "boundary_face"} {
			v, v0 := T.Comp(comp), T0.Comp(comp)
			for i := range v {
				switch {
				case v0[i] > Tfreeze && v[i] < Tfreeze:
					v[i] = Tfreeze - freezeEps
				case v0[i] < Tfreeze && v[i] > Tfreeze:
					v[i] = Tfreeze + freezeEps
				}
			}
		}
	}
	if o.Consistent {
		o.ChangedSolution()
		if err = o.updateConductivity(); err != nil {
			return
		}
		o.op.ConsistentFaces(T)
	}
	modified = !T.Equal(before)
	if modified {
		o.ChangedSolution()
	}
	return
}

// ModifyCorrection reconstructs boundary-face corrections and limits the size of corrections
func (o *Energy) ModifyCorrection(h float64, r, u, du *state.TreeVector) pk.CorrectionResult {
	faces := o.op.CorrectFaces(u.Field(), du.Field())
	n := 0
	if o.Tlimit > 0 {
		dT := du.Field()
		for _, comp := range []string{"cell", "boundary_face"} {
			v := dT.Comp(comp)
			for i := range v {
				if math.Abs(v[i]) > o.Tlimit {
					v[i] = math.Copysign(o.Tlimit, v[i])
					n++
				}
			}
		}
		n = int(o.Comm.AllReduceSum(float64(n)))
	}
	o.Clipped = n
	if n > 0 {
		o.Metrics.Clipped(o.Name(), n)
		o.Log.Debug().Int("clipped", n).Float64("limit", o.Tlimit).Msg("limited by temperature")
		return pk.Modified
	}
	if faces {
		return pk.Modified
	}
	return pk.NotModified
}

// updateConductivity recomputes the transmissibilities if the conductivity changed
func (o *Energy) updateConductivity() error {
	changed, err := o.G.HasChanged(o.kKey, o.Name())
	if err != nil {
		return err
	}
	if changed || !o.kReady {
		K, err := o.G.Field(o.kKey)
		if err != nil {
			return err
		}
		o.op.Update(K.Comp("cell"))
		o.kReady = true
	}
	return nil
}

// applyDirichlet sets the boundary-face temperatures of Dirichlet faces
func (o *Energy) applyDirichlet(T *state.Field) {
	for bf, kind := range o.bcs.Kind {
		if kind == pk.BcDirichlet {
			T.Set("boundary_face", bf, 0, o.bcs.Value[bf])
		}
	}
}

// advectedFluxes computes  q H  on faces with H taken upwind; incoming boundary water carries no energy
func (o *Energy) advectedFluxes(out []float64) error {
	if !o.S.Initialized(o.qKey) {
		return errs.Configf(o.qKey, "water flux required by %q was never initialized", o.Name())
	}
	q, err := o.Next(o.qKey)
	if err != nil {
		return err
	}
	H, err := o.G.Update(o.hKey, o.Name())
	if err != nil {
		return err
	}
	m := o.op.M
	for f := range out {
		cells := m.FaceCells(f)
		qf := q.Get("face", f, 0)
		switch {
		case qf > 0:
			out[f] = qf * H.Get("cell", cells[0], 0)
		case len(cells) == 2:
			out[f] = qf * H.Get("cell", cells[1], 0)
		default:
			out[f] = 0
		}
	}
	return nil
}

// addAdvection adds the net advected outflow of each cell to r
func (o *Energy) addAdvection(r *state.Field) error {
	m := o.op.M
	out := make([]float64, m.NumEntities(mesh.Face))
	if err := o.advectedFluxes(out); err != nil {
		return err
	}
	for f, flux := range out {
		cells := m.FaceCells(f)
		r.Set("cell", cells[0], 0, r.Get("cell", cells[0], 0)+flux)
		if len(cells) == 2 {
			r.Set("cell", cells[1], 0, r.Get("cell", cells[1], 0)-flux)
		}
	}
	return nil
}
