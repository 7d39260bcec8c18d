// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flow implements the process kernel of variably saturated flow (Richards equation)
//
//  dΘ/dt + div(-nl kr k/μ grad(p + ρ g z)) = 0
//
//  Θ is the water content of each cell, nl the molar density of the liquid and kr the
//  relative permeability. The primary variable is the pressure on cells and boundary faces.
package flow

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

// Richards implements the flow process kernel
type Richards struct {
	pk.Base

	// keys
	key     string // pressure
	wcKey   string // water content
	krKey   string // relative permeability
	nlKey   string // molar density of liquid
	fluxKey string // diagnostic water flux

	// options
	Perm       float64 // absolute permeability [m²]
	Visc       float64 // viscosity [Pa s]
	Rho        float64 // mass density of liquid [kg/m³]
	Grav       float64 // gravity [m/s²]
	Patm       float64 // atmospheric pressure [Pa]
	Pmin       float64 // smallest admissible pressure
	Plimit     float64 // limit of corrections; ≤ 0 means no limit
	Atol, Rtol float64 // tolerances of the error norm
	Consistent bool    // modify predictor with consistent faces

	// auxiliary
	stepper *pk.Stepper            // time integrator
	op      *pk.Diffusion          // diffusion operator
	bcs     *pk.BoundaryConditions // boundary conditions
	A       *linalg.Matrix         // preconditioner
	x, b    la.Vector              // auxiliary vectors for the preconditioner
	coef    []float64              // cell coefficients nl kr k/μ
	Clipped int                    // number of corrections limited in the last call to ModifyCorrection
}

// add kernel to factory
func init() {
	pk.Register("richards", func(name string, plist *inp.ParameterList, env *pk.Env) (pk.PK, error) {
		return New(name, plist, env)
	})
}

// New returns a new flow kernel
func New(name string, plist *inp.ParameterList, env *pk.Env) (o *Richards, err error) {
	o = &Richards{Base: pk.NewBase(name, plist, env)}
	o.key = o.Plist.ReadKey(o.Domain, "primary variable", "pressure")
	o.wcKey = o.Plist.ReadKey(o.Domain, "conserved quantity", "water_content")
	o.krKey = o.Key("relative_permeability")
	o.nlKey = o.Key("molar_density_liquid")
	o.fluxKey = o.Plist.ReadKey(o.Domain, "water flux", "water_flux")
	o.Perm = plist.Float("permeability", 1e-12)
	o.Visc = plist.Float("viscosity", 8.9e-4)
	o.Rho = plist.Float("mass density liquid", 1000)
	o.Grav = plist.Float("gravity", 9.80665)
	o.Patm = plist.Float("atmospheric pressure", 101325)
	o.Pmin = plist.Float("min pressure", -1e10)
	o.Plimit = plist.Float("max pressure change", -1)
	o.Atol = plist.Float("absolute error tolerance", 1)
	o.Rtol = plist.Float("relative error tolerance", 0)
	o.Consistent = plist.Bool("modify predictor with consistent faces", false)
	if o.Perm <= 0 || o.Visc <= 0 {
		return nil, errs.Configf(name, "permeability and viscosity must be positive; got %g and %g", o.Perm, o.Visc)
	}
	if o.stepper, err = pk.NewStepper(plist, env, o.Log); err != nil {
		return nil, err
	}
	return o, plist.Err()
}

// Setup declares fields; calling it more than once has no further effect
func (o *Richards) Setup() (err error) {
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
		method := o.Plist.String("upwind method", "arithmetic mean")
		if o.op, err = pk.NewDiffusion(m, o.bcs, method, o.Rho*o.Grav); err != nil {
			return
		}
		o.A = linalg.NewMatrix(o.op.Size(), o.op.Nnz()+m.NumEntities(mesh.Cell))
		o.A.Method = o.Plist.String("preconditioner method", "umfpack")
		o.x, o.b = la.NewVector(o.op.Size()), la.NewVector(o.op.Size())
		o.coef = make([]float64, m.NumEntities(mesh.Cell))
	}
	if err = o.RequirePrimary(o.key, pk.CellFaceLayout(o.Domain)); err != nil {
		return
	}
	cells := state.CellLayout(o.Domain)
	for _, key := range []string{o.wcKey, o.krKey, o.nlKey} {
		if err = o.G.Require(key, cells); err != nil {
			return
		}
	}
	faces := state.NewLayout(o.Domain, state.Component{Name: "face", Kind: mesh.Face, Width: 1})
	if err = o.S.Require(o.fluxKey, o.Name(), faces); err != nil {
		return
	}
	return o.Plist.Err()
}

// Initialize sets the pressure from "initial condition" or hydrostatically from "water table elevation"
func (o *Richards) Initialize() (err error) {
	if err = o.Lifecycle().To(pk.Initialized); err != nil {
		return
	}
	p, err := o.Next(o.key)
	if err != nil {
		return
	}
	if !o.S.Initialized(o.key) {
		if o.Plist.Has("water table elevation") {
			zwt := o.Plist.Float("water table elevation", 0)
			for _, c := range p.Layout.Comps {
				for e := 0; e < p.Size(c.Name); e++ {
					x := pk.Centroid(p.Mesh, c.Kind, e)
					p.Set(c.Name, e, 0, o.Patm+o.Rho*o.Grav*(zwt-x[len(x)-1]))
				}
			}
			o.S.SetInitialized(o.key)
		} else if err = o.InitialCondition(o.key, p); err != nil {
			return
		}
	}
	o.bcs.Compute(o.S.Time(state.Next))
	for bf, kind := range o.bcs.Kind {
		if kind == pk.BcDirichlet {
			p.Set("boundary_face", bf, 0, o.bcs.Value[bf])
		}
	}
	q, err := o.Next(o.fluxKey)
	if err != nil {
		return
	}
	q.Fill(0)
	o.S.SetInitialized(o.fluxKey)
	o.SetSolution(state.NewLeaf(o.Name(), p, "cell", "boundary_face"))
	o.ChangedSolution()
	return o.Plist.Err()
}

// GetDt returns the step size proposed by the time integrator
func (o *Richards) GetDt() float64 { return o.stepper.Dt }

// SetDt sets the step size
func (o *Richards) SetDt(dt float64) { o.stepper.Dt = dt }

// PrimaryKey returns the key of the pressure
func (o *Richards) PrimaryKey() string { return o.key }

// ConservedKey returns the key of the water content
func (o *Richards) ConservedKey() string { return o.wcKey }

// Block returns the preconditioner matrix
func (o *Richards) Block() *linalg.Matrix { return o.A }

// Operator returns the diffusion operator
func (o *Richards) Operator() *pk.Diffusion { return o.op }

// AdvanceStep advances the pressure from tOld to tNew
func (o *Richards) AdvanceStep(tOld, tNew float64, reinit bool) (failed bool, err error) {
	if err = pk.Transition(pk.Predicting, o); err != nil {
		return
	}
	return o.stepper.Advance(o, tOld, tNew)
}

// CommitStep computes the water flux and copies next into current and inter
func (o *Richards) CommitStep(tOld, tNew float64) (err error) {
	if err = pk.Transition(pk.Committing, o); err != nil {
		return
	}
	o.stepper.Commit(tNew - tOld)
	o.bcs.Compute(tNew)
	if err = o.updateCoefficients(); err != nil {
		return
	}
	p, err := o.Next(o.key)
	if err != nil {
		return
	}
	q, err := o.Next(o.fluxKey)
	if err != nil {
		return
	}
	o.op.Fluxes(p, q.Comp("face"))
	o.Commit()
	return
}

// ChangedSolution tells the evaluators that the pressure changed
func (o *Richards) ChangedSolution() {
	o.G.MarkChanged(o.key)
}

// Residual computes  r = (Θ - Θ_inter)/h + div(fluxes)  on cells and the boundary conditions on boundary faces
func (o *Richards) Residual(tOld, tNew float64, u, r *state.TreeVector) (err error) {
	h := tNew - tOld
	o.bcs.Compute(tNew)
	wc, err := o.G.Update(o.wcKey, o.Name())
	if err != nil {
		return
	}
	wc0, err := o.Inter(o.wcKey)
	if err != nil {
		return
	}
	rf := r.Field()
	rf.Fill(0)
	for c := 0; c < rf.Size("cell"); c++ {
		rf.Set("cell", c, 0, (wc.Get("cell", c, 0)-wc0.Get("cell", c, 0))/h)
	}
	if err = o.updateCoefficients(); err != nil {
		return
	}
	o.op.AddResidual(u.Field(), rf)
	return
}

// UpdatePreconditioner assembles  dΘ/dp / h + diffusion  with frozen coefficients
func (o *Richards) UpdatePreconditioner(t float64, u *state.TreeVector, h float64) (err error) {
	if err = o.updateCoefficients(); err != nil {
		return
	}
	dwc, err := o.G.Chain(o.wcKey, o.key, o.Name())
	if err != nil {
		return
	}
	o.A.Start()
	o.op.Assemble(o.A)
	for c := 0; c < dwc.Size("cell"); c++ {
		o.A.Put(c, c, dwc.Get("cell", c, 0)/h)
	}
	return
}

// ApplyPreconditioner computes pu = A⁻¹ r
func (o *Richards) ApplyPreconditioner(r, pu *state.TreeVector) (err error) {
	r.Flatten(o.b)
	if err = o.A.ApplyInverse(o.x, o.b); err != nil {
		return
	}
	pu.Scatter(o.x)
	return
}

// ErrorNorm returns max |dp| / (atol + rtol |p|) over all ranks
func (o *Richards) ErrorNorm(u, du *state.TreeVector) float64 {
	return o.ScaledNorm(u, du, o.Atol, o.Rtol)
}

// IsAdmissible tells whether all pressures are finite and not below the minimum on all ranks
func (o *Richards) IsAdmissible(u *state.TreeVector) bool {
	vmin, vmax := o.GlobalMinMax(u.Field(), "cell", "boundary_face")
	if !(vmin >= o.Pmin) || math.IsInf(vmax, 0) || math.IsNaN(vmax) {
		o.Log.Debug().Float64("min", vmin).Float64("max", vmax).Msg("pressure is not admissible")
		return false
	}
	return true
}

// ModifyPredictor computes consistent faces if requested
func (o *Richards) ModifyPredictor(h float64, u0, u *state.TreeVector) (modified bool, err error) {
	if !o.Consistent {
		return
	}
	o.bcs.Compute(o.S.Time(state.Next))
	p := u.Field()
	before := p.Clone()
	o.ChangedSolution()
	if err = o.updateCoefficients(); err != nil {
		return
	}
	o.op.ConsistentFaces(p)
	modified = !p.Equal(before)
	if modified {
		o.ChangedSolution()
	}
	return
}

// ModifyCorrection reconstructs boundary-face corrections and limits the size of corrections
func (o *Richards) ModifyCorrection(h float64, r, u, du *state.TreeVector) pk.CorrectionResult {
	faces := o.op.CorrectFaces(u.Field(), du.Field())
	n := 0
	if o.Plimit > 0 {
		for _, comp := range []string{"cell", "boundary_face"} {
			v := du.Field().Comp(comp)
			for i := range v {
				if math.Abs(v[i]) > o.Plimit {
					v[i] = math.Copysign(o.Plimit, v[i])
					n++
				}
			}
		}
		n = int(o.Comm.AllReduceSum(float64(n)))
	}
	o.Clipped = n
	if n > 0 {
		o.Metrics.Clipped(o.Name(), n)
		return pk.Modified
	}
	if faces {
		return pk.Modified
	}
	return pk.NotModified
}

// updateCoefficients computes nl kr k/μ on cells and the transmissibilities
func (o *Richards) updateCoefficients() error {
	kr, err := o.G.Update(o.krKey, o.Name())
	if err != nil {
		return err
	}
	nl, err := o.G.Update(o.nlKey, o.Name())
	if err != nil {
		return err
	}
	for c := range o.coef {
		o.coef[c] = nl.Get("cell", c, 0) * kr.Get("cell", c, 0) * o.Perm / o.Visc
	}
	o.op.Update(o.coef)
	return nil
}
