// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pk

import (
	"testing"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/linalg"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/state"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

func verbose() {
	chk.Verbose = true
}

// unknowns returns a cell + boundary-face field on a column with 4 cells of unit thickness
func unknowns(tst *testing.T) (*mesh.Column, *state.Field, *state.Field) {
	m, err := mesh.NewColumn("domain", 1, []float64{1, 1, 1, 1}, 1, 0)
	if err != nil {
		tst.Fatalf("NewColumn failed: %v\n", err)
	}
	s := state.New(m)
	s.Require("u", "test", CellFaceLayout("domain"))
	s.Require("r", "test", CellFaceLayout("domain"))
	if err = s.Setup(); err != nil {
		tst.Fatalf("Setup failed: %v\n", err)
	}
	u, _ := s.GetFieldData("u", state.Next)
	r, _ := s.GetFieldData("r", state.Next)
	return m, u, r
}

func conditions(tst *testing.T, m mesh.Mesh, yaml string) *BoundaryConditions {
	plist, err := inp.ParseParameterList("boundary conditions", []byte(yaml))
	if err != nil {
		tst.Fatalf("ParseParameterList failed: %v\n", err)
	}
	bc, err := ReadBoundaryConditions(m, plist, nil)
	if err != nil {
		tst.Fatalf("ReadBoundaryConditions failed: %v\n", err)
	}
	return bc
}

func Test_diffusion01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("diffusion01. linear profile between Dirichlet faces")

	m, u, r := unknowns(tst)
	bc := conditions(tst, m, `
top:
  type: dirichlet
  region: top
  value: 10
bottom:
  type: dirichlet
  region: bottom
  function type: cte
  function parameters: {c: 0}
`)
	bc.Compute(0)
	chk.Array(tst, "values", 1e-15, bc.Value, []float64{10, 0})

	op, err := NewDiffusion(m, bc, "cell centered", 0)
	if err != nil {
		tst.Errorf("NewDiffusion failed: %v\n", err)
		return
	}
	op.Update([]float64{2, 2, 2, 2})
	chk.Array(tst, "T", 1e-15, op.T, []float64{4, 2, 2, 2, 4})

	copy(u.Comp("cell"), []float64{8.75, 6.25, 3.75, 1.25})
	op.ConsistentFaces(u)
	chk.Array(tst, "faces", 1e-15, u.Comp("boundary_face"), []float64{10, 0})

	op.AddResidual(u, r)
	chk.Array(tst, "r cells", 1e-14, r.Comp("cell"), []float64{0, 0, 0, 0})
	chk.Array(tst, "r faces", 1e-14, r.Comp("boundary_face"), []float64{0, 0})

	fluxes := make([]float64, 5)
	op.Fluxes(u, fluxes)
	chk.Array(tst, "fluxes", 1e-14, fluxes, []float64{-5, 5, 5, 5, 5})

	// other methods give the same transmissibilities for equal coefficients
	for _, method := range []string{"arithmetic mean", "harmonic mean"} {
		o, _ := NewDiffusion(m, bc, method, 0)
		o.Update([]float64{2, 2, 2, 2})
		chk.Array(tst, "T "+method, 1e-15, o.T, []float64{4, 2, 2, 2, 4})
	}
	if _, err = NewDiffusion(m, bc, "upwind with gravity", 0); !errs.Is(err, errs.Config) {
		tst.Errorf("unknown method must be a ConfigError; got %v\n", err)
		return
	}
}

func Test_diffusion02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("diffusion02. flux conditions, gravity and Jacobian")

	m, u, r := unknowns(tst)
	bc := conditions(tst, m, `
inflow:
  type: flux
  region: top
  value: -0.5
`)
	bc.Compute(0)
	op, _ := NewDiffusion(m, bc, "harmonic mean", 1000*9.8)
	op.Update([]float64{1e-3, 2e-3, 3e-3, 4e-3})

	copy(u.Comp("cell"), []float64{1e5, 1.1e5, 1.2e5, 1.35e5})
	op.ConsistentFaces(u)
	r.Fill(0)
	op.AddResidual(u, r)
	chk.Array(tst, "r faces", 1e-9, r.Comp("boundary_face"), []float64{0, 0})

	// inflow at the top: q A = -0.5 leaves the top cell with a flux of -0.5
	chk.Float64(tst, "top flux", 1e-12, op.Flux(u, 0), -0.5)
	chk.Float64(tst, "bottom flux", 1e-12, op.Flux(u, 4), 0)

	// residual is affine: r(u + δ) - r(u) = A δ
	A := linalg.NewMatrix(op.Size(), op.Nnz())
	op.Assemble(A)
	δ := la.Vector{1, -2, 3, 0.5, -1, 2}
	r0 := make(la.Vector, op.Size())
	copy(r0, r.Comp("cell"))
	copy(r0[4:], r.Comp("boundary_face"))
	uc, ub := u.Comp("cell"), u.Comp("boundary_face")
	for i := 0; i < 4; i++ {
		uc[i] += δ[i]
	}
	ub[0] += δ[4]
	ub[1] += δ[5]
	r.Fill(0)
	op.AddResidual(u, r)
	Aδ := make(la.Vector, op.Size())
	A.Apply(Aδ, δ)
	for i := 0; i < 4; i++ {
		chk.Float64(tst, "cell row", 1e-10, r.Get("cell", i, 0)-r0[i], Aδ[i])
	}
	for i := 0; i < 2; i++ {
		chk.Float64(tst, "face row", 1e-10, r.Get("boundary_face", i, 0)-r0[4+i], Aδ[4+i])
	}

	// reconstructed face corrections give consistent faces
	du := u.Clone()
	copy(du.Comp("cell"), []float64{10, 20, 30, 40})
	if !op.CorrectFaces(u, du) {
		tst.Errorf("face corrections must be changed\n")
		return
	}
	if op.CorrectFaces(u, du) {
		tst.Errorf("consistent face corrections must not be changed\n")
		return
	}
	w := u.Clone()
	for i := range w.Comp("cell") {
		w.Comp("cell")[i] -= du.Comp("cell")[i]
	}
	for i := range w.Comp("boundary_face") {
		w.Comp("boundary_face")[i] -= du.Comp("boundary_face")[i]
	}
	r.Fill(0)
	op.AddResidual(w, r)
	chk.Array(tst, "r faces after correction", 1e-9, r.Comp("boundary_face"), []float64{0, 0})
}

func Test_bc01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bc01. errors")

	m, _, _ := unknowns(tst)
	for _, yaml := range []string{
		"a: {type: robin, value: 1}",
		"a: {type: flux, region: left, value: 1}",
		"a: {type: flux}",
		"a: {type: flux, value: 1}\nb: {type: dirichlet, region: top, value: 2}",
		"a: 1",
	} {
		plist, err := inp.ParseParameterList("bcs", []byte(yaml))
		if err != nil {
			tst.Errorf("ParseParameterList failed: %v\n", err)
			return
		}
		if _, err = ReadBoundaryConditions(m, plist, nil); !errs.Is(err, errs.Config) {
			tst.Errorf("%q must give a ConfigError; got %v\n", yaml, err)
			return
		}
	}

	// no conditions: zero flux
	bc := NewBoundaryConditions(m)
	chk.Int(tst, "nbf", len(bc.Kind), 2)
	if bc.Kind[0] != BcNone || bc.Kind[1].String() != "none" {
		tst.Errorf("default condition must be none\n")
		return
	}
}
