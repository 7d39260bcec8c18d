// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mpc implements multi-process couplers: process kernels made of other process kernels
//
//  A strong coupler solves the equations of all children within one nonlinear solve. Its solution
//  is the concatenation of the solutions of the children. A weak coupler advances the children one
//  after another, each with its own solver.
package mpc

import (
	"context"
	"math"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/linalg"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/mpc/ewc"
	"github.com/a-hamm/ats/pk"
	"github.com/a-hamm/ats/state"
	"github.com/a-hamm/ats/telemetry"
	"github.com/cpmech/gosl/la"
)

// preconditioner strategies
const (
	PrecNone     = "none"
	PrecBlock    = "block diagonal"
	PrecPicard   = "picard"
	PrecEWC      = "ewc"
	PrecSmartEWC = "smart ewc"
)

// Preconditioners returns the names of all preconditioner strategies
func Preconditioners() []string {
	return []string{PrecBlock, PrecEWC, PrecNone, PrecPicard, PrecSmartEWC}
}

// Strong implements the strong coupler
//  "PKs order" lists the children; "preconditioner type" selects the strategy (default picard).
//  picard and ewc need children assembling their own matrix on the same mesh; ewc needs exactly
//  two children: energy first, then flow.
type Strong struct {
	pk.Base

	// data
	Names    []string       // names of children
	Kids     []pk.Implicit  // children
	Method   string         // preconditioner strategy; "smart ewc" is stored as "ewc"
	Delegate *ewc.Delegate  // coupling delegate; ewc only
	A        *linalg.Matrix // monolithic preconditioner; picard and ewc only

	// auxiliary
	stepper *pk.Stepper    // time integrator
	blocks  []pk.Assembler // children as assemblers; picard and ewc only
	offsets []int          // offsets of children in the monolithic matrix
	x, b    la.Vector      // auxiliary vectors for the monolithic matrix
	pic     la.Vector      // picard correction; ewc only
	h       float64        // step size of the last call to UpdatePreconditioner
	poroKey string         // base porosity; ewc only
	volKey  string         // cell volume; ewc only
	ncells  int            // number of cells of the common mesh
}

// add coupler to factory
func init() {
	pk.Register("strong mpc", func(name string, plist *inp.ParameterList, env *pk.Env) (pk.PK, error) {
		return NewStrong(name, plist, env)
	})
}

// NewStrong returns a new strong coupler and allocates its children
func NewStrong(name string, plist *inp.ParameterList, env *pk.Env) (o *Strong, err error) {
	o = &Strong{Base: pk.NewBase(name, plist, env)}
	o.Names = plist.Strings("PKs order", nil)
	if len(o.Names) == 0 {
		return nil, errs.Configf(name, "strong MPC needs a non-empty \"PKs order\"")
	}
	o.Method = plist.String("preconditioner type", PrecPicard)
	for _, n := range o.Names {
		child, err := pk.New(n, env)
		if err != nil {
			return nil, err
		}
		imp, ok := child.(pk.Implicit)
		if !ok {
			return nil, errs.Configf(name, "strong MPC child %q is not an implicit PK", n)
		}
		o.Kids = append(o.Kids, imp)
	}
	if o.stepper, err = pk.NewStepper(plist, env, o.Log); err != nil {
		return nil, err
	}
	return o, plist.Err()
}

// Children returns the children
func (o *Strong) Children() (res []pk.PK) {
	for _, k := range o.Kids {
		res = append(res, k)
	}
	return
}

// Setup sets up the children and checks the preconditioner strategy
func (o *Strong) Setup() (err error) {
	if err = o.Lifecycle().To(pk.SetUp); err != nil {
		return
	}
	for _, k := range o.Kids {
		if err = k.Setup(); err != nil {
			return
		}
	}
	switch o.Method {
	case PrecNone, PrecBlock:
		return
	case PrecSmartEWC:
		o.Method = PrecEWC
	case PrecPicard, PrecEWC:
	default:
		return errs.Configf(o.Name(), "preconditioner type %q is not available; use one of %q", o.Method, Preconditioners())
	}
	if o.A != nil {
		return
	}
	if err = o.setupAssembled(); err != nil {
		return
	}
	if o.Method == PrecEWC {
		return o.setupDelegate()
	}
	return
}

// setupAssembled allocates the monolithic matrix
func (o *Strong) setupAssembled() error {
	n, nnz := 0, 0
	for _, k := range o.Kids {
		a, ok := k.(pk.Assembler)
		if !ok {
			return errs.Configf(o.Name(), "%s preconditioner needs children with assembled matrices; %q has none", o.Method, k.Name())
		}
		if a.Mesh() != o.Kids[0].(pk.Assembler).Mesh() {
			return errs.Configf(o.Name(), "%s preconditioner needs all children on the same mesh; %q is on %q", o.Method, k.Name(), a.Mesh())
		}
		o.blocks = append(o.blocks, a)
		o.offsets = append(o.offsets, n)
		n += a.Block().Size()
		nnz += a.Block().Max()
	}
	m, err := o.S.Mesh(o.blocks[0].Mesh())
	if err != nil {
		return err
	}
	o.ncells = m.NumEntities(mesh.Cell)
	nblk := len(o.blocks)
	o.A = linalg.NewMatrix(n, nnz+nblk*(nblk-1)*o.ncells)
	o.A.Method = o.Plist.String("preconditioner method", "umfpack")
	o.x, o.b = la.NewVector(n), la.NewVector(n)
	return nil
}

// setupDelegate allocates the coupling delegate and declares the cell properties it needs
func (o *Strong) setupDelegate() (err error) {
	if len(o.blocks) != 2 {
		return errs.Configf(o.Name(), "ewc preconditioner needs two children (energy, flow); got %d", len(o.blocks))
	}
	o.Delegate, err = ewc.New(o.Name()+" delegate", o.Plist.Sublist("ewc delegate"), o.Log, o.Metrics)
	if err != nil {
		return
	}
	domain := o.blocks[0].Mesh()
	o.poroKey = o.Plist.ReadKey(domain, "base porosity key", "base_porosity")
	o.volKey = o.Plist.ReadKey(domain, "cell volume key", "cell_volume")
	cells := state.CellLayout(domain)
	for _, key := range []string{o.poroKey, o.volKey} {
		if err = o.G.Require(key, cells); err != nil {
			return
		}
	}
	o.pic = la.NewVector(o.A.Size())
	return o.Plist.Err()
}

// Initialize initializes the children and concatenates their solutions
func (o *Strong) Initialize() (err error) {
	if err = o.Lifecycle().To(pk.Initialized); err != nil {
		return
	}
	subs := make([]*state.TreeVector, len(o.Kids))
	for i, k := range o.Kids {
		if err = k.Initialize(); err != nil {
			return
		}
		subs[i] = k.Solution()
	}
	o.SetSolution(state.NewNode(o.Name(), subs...))
	return
}

// GetDt returns the step size proposed by the time integrator
func (o *Strong) GetDt() float64 { return o.stepper.Dt }

// SetDt sets the step size of the coupler and of its children
func (o *Strong) SetDt(dt float64) {
	o.stepper.Dt = dt
	for _, k := range o.Kids {
		k.SetDt(dt)
	}
}

// Stepper returns the time integrator
func (o *Strong) Stepper() *pk.Stepper { return o.stepper }

// AdvanceStep advances all children from tOld to tNew within one nonlinear solve
func (o *Strong) AdvanceStep(tOld, tNew float64, reinit bool) (failed bool, err error) {
	if err = pk.Transition(pk.Predicting, o); err != nil {
		return
	}
	return o.stepper.Advance(o, tOld, tNew)
}

// CommitStep commits all children
func (o *Strong) CommitStep(tOld, tNew float64) (err error) {
	if err = pk.Transition(pk.Committing, o); err != nil {
		return
	}
	for _, k := range o.Kids {
		if err = k.CommitStep(tOld, tNew); err != nil {
			return
		}
	}
	o.stepper.Commit(tNew - tOld)
	return
}

// ChangedSolution tells the children that their solutions changed
func (o *Strong) ChangedSolution() {
	for _, k := range o.Kids {
		k.ChangedSolution()
	}
}

// Residual computes the residuals of all children
func (o *Strong) Residual(tOld, tNew float64, u, r *state.TreeVector) (err error) {
	us, rs := u.Subs(), r.Subs()
	for i, k := range o.Kids {
		if err = k.Residual(tOld, tNew, us[i], rs[i]); err != nil {
			return
		}
	}
	return
}

// ErrorNorm returns the largest error norm of the children
func (o *Strong) ErrorNorm(u, du *state.TreeVector) (res float64) {
	us, ds := u.Subs(), du.Subs()
	for i, k := range o.Kids {
		res = math.Max(res, k.ErrorNorm(us[i], ds[i]))
	}
	return
}

// IsAdmissible tells whether the solutions of all children are admissible
func (o *Strong) IsAdmissible(u *state.TreeVector) bool {
	for i, k := range o.Kids {
		if !k.IsAdmissible(u.Subs()[i]) {
			return false
		}
	}
	return true
}

// ModifyPredictor lets each child modify its own predictor
func (o *Strong) ModifyPredictor(h float64, u0, u *state.TreeVector) (modified bool, err error) {
	u0s, us := u0.Subs(), u.Subs()
	for i, k := range o.Kids {
		m, err := k.ModifyPredictor(h, u0s[i], us[i])
		if err != nil {
			return false, err
		}
		modified = modified || m
	}
	return
}

// ModifyCorrection lets each child modify its own correction
func (o *Strong) ModifyCorrection(h float64, r, u, du *state.TreeVector) (res pk.CorrectionResult) {
	us, ds := u.Subs(), du.Subs()
	for i, k := range o.Kids {
		var ri *state.TreeVector
		if r != nil {
			ri = r.Subs()[i]
		}
		if k.ModifyCorrection(h, ri, us[i], ds[i]) == pk.Modified {
			res = pk.Modified
		}
	}
	return
}

// UpdatePreconditioner updates the preconditioners of the children and, for picard and ewc,
// assembles the monolithic matrix with the coupling blocks  d(conserved_i)/d(primary_j) / h
func (o *Strong) UpdatePreconditioner(t float64, u *state.TreeVector, h float64) (err error) {
	us := u.Subs()
	for i, k := range o.Kids {
		if err = k.UpdatePreconditioner(t, us[i], h); err != nil {
			return
		}
	}
	o.h = h
	if o.A == nil {
		return
	}
	o.A.Start()
	for i, blk := range o.blocks {
		Ai, off := blk.Block(), o.offsets[i]
		for r := 0; r < Ai.Size(); r++ {
			for _, c := range Ai.Row(r) {
				o.A.Put(off+r, off+c, Ai.Get(r, c))
			}
		}
	}
	for i, bi := range o.blocks {
		for j, bj := range o.blocks {
			if i == j {
				continue
			}
			dCdP, err := o.G.Chain(bi.ConservedKey(), bj.PrimaryKey(), o.Name())
			if err != nil {
				return err
			}
			for c := 0; c < o.ncells; c++ {
				o.A.Put(o.offsets[i]+c, o.offsets[j]+c, dCdP.Get("cell", c, 0)/h)
			}
		}
	}
	if o.Method == PrecEWC {
		φ0, err := o.G.Update(o.poroKey, o.Name())
		if err != nil {
			return err
		}
		V, err := o.G.Update(o.volKey, o.Name())
		if err != nil {
			return err
		}
		o.Delegate.Refresh(φ0.Comp("cell"), V.Comp("cell"))
	}
	return
}

// ApplyPreconditioner computes pu = P⁻¹ r with the selected strategy
func (o *Strong) ApplyPreconditioner(r, pu *state.TreeVector) (err error) {
	_, span := telemetry.StartSpan(context.Background(), o.Method+" preconditioner", 0, o.h)
	defer func() { telemetry.EndSpan(span, false, err) }()
	switch o.Method {
	case PrecNone:
		pu.CopyFrom(r)
		return
	case PrecBlock:
		rs, ps := r.Subs(), pu.Subs()
		for i, k := range o.Kids {
			if err = k.ApplyPreconditioner(rs[i], ps[i]); err != nil {
				return
			}
		}
		return
	case PrecPicard:
		return o.ApplyPicard(r, pu)
	}
	return o.applyEWC(r, pu)
}

// ApplyPicard computes pu = A⁻¹ r with the monolithic matrix
func (o *Strong) ApplyPicard(r, pu *state.TreeVector) (err error) {
	r.Flatten(o.b)
	if err = o.A.ApplyInverse(o.x, o.b); err != nil {
		return
	}
	pu.Scatter(o.x)
	return
}

// applyEWC replaces the picard corrections of cells by the ones computed in conserved space and
// reconstructs the boundary-face corrections so that the face rows of A stay satisfied
func (o *Strong) applyEWC(r, pu *state.TreeVector) (err error) {
	if err = o.ApplyPicard(r, pu); err != nil {
		return
	}
	copy(o.pic, o.x)
	n := o.ncells
	u := o.Solution()
	flat := la.NewVector(u.Len())
	u.Flatten(flat)
	offT, offP := o.offsets[0], o.offsets[1]
	T, p := flat[offT:offT+n], flat[offP:offP+n]
	o.Delegate.Apply(T, p, o.x[offT:offT+n], o.x[offP:offP+n])

	// boundary faces:  A_bb du_b + Σ_j A_bj du_j = r_b  with the new cell corrections
	for i, blk := range o.blocks {
		off := o.offsets[i]
		for b := off + n; b < off+blk.Block().Size(); b++ {
			Abb := o.A.Get(b, b)
			if Abb == 0 {
				continue
			}
			s := 0.0
			for _, j := range o.A.Row(b) {
				if j != b {
					s += o.A.Get(b, j) * (o.x[j] - o.pic[j])
				}
			}
			o.x[b] = o.pic[b] - s/Abb
		}
	}
	pu.Scatter(o.x)
	return
}
