// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pk

import (
	"math"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/linalg"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/state"
)

// UpwindMethods holds the names of the available face coefficient methods
var UpwindMethods = []string{"cell centered", "arithmetic mean", "harmonic mean"}

// Diffusion implements the two-point flux operator  div(K grad(u + G z))
//  on cell unknowns and boundary-face unknowns. Unknowns are numbered cells first then boundary faces,
//  as in the components "cell" and "boundary_face" of the primary field.
//
//  The flux through face f from cell 1 to cell 2 (or out of the domain) is
//
//   F_f = T_f [ (u₁ - u₂) + G (z₁ - z₂) ]
//
//  where T_f is the transmissibility and z the elevation (last centroid coordinate).
//  Boundary-face rows hold u_b - ū for Dirichlet faces and q A - F_f for flux faces.
type Diffusion struct {
	M       mesh.Mesh           // mesh
	BC      *BoundaryConditions // boundary conditions
	Method  string              // face coefficient method; one of UpwindMethods
	Gravity float64             // coefficient G of the elevation term; zero for heat
	T       []float64           // [nfaces] transmissibilities
	ncell   int                 // number of cells
	nbf     int                 // number of boundary faces
}

// NewDiffusion returns a new operator; unknown methods are ConfigErrors
func NewDiffusion(m mesh.Mesh, bc *BoundaryConditions, method string, gravity float64) (o *Diffusion, err error) {
	ok := false
	for _, name := range UpwindMethods {
		ok = ok || name == method
	}
	if !ok {
		return nil, errs.Configf(method, "upwind method is not available; use %q", UpwindMethods)
	}
	if bc == nil {
		bc = NewBoundaryConditions(m)
	}
	o = &Diffusion{M: m, BC: bc, Method: method, Gravity: gravity}
	o.ncell = m.NumEntities(mesh.Cell)
	o.nbf = m.NumEntities(mesh.BoundaryFace)
	o.T = make([]float64, m.NumEntities(mesh.Face))
	return
}

// Size returns the number of unknowns
func (o *Diffusion) Size() int { return o.ncell + o.nbf }

// Nnz returns the largest number of entries put by Assemble
func (o *Diffusion) Nnz() int { return 4 * len(o.T) }

// Update computes the transmissibilities from the cell coefficients K
func (o *Diffusion) Update(K []float64) {
	for f := range o.T {
		cells := o.M.FaceCells(f)
		a := o.M.FaceArea(f)
		c1 := cells[0]
		d1, k1 := mesh.Distance(o.M, c1, f), K[c1]
		if len(cells) == 1 {
			o.T[f] = a * k1 / d1
			continue
		}
		c2 := cells[1]
		d2, k2 := mesh.Distance(o.M, c2, f), K[c2]
		switch o.Method {
		case "cell centered":
			if k1 == 0 || k2 == 0 {
				o.T[f] = 0
				continue
			}
			o.T[f] = a / (d1/k1 + d2/k2)
		case "arithmetic mean":
			o.T[f] = a * 0.5 * (k1 + k2) / (d1 + d2)
		case "harmonic mean":
			if k1+k2 == 0 {
				o.T[f] = 0
				continue
			}
			o.T[f] = a * 2 * k1 * k2 / (k1 + k2) / (d1 + d2)
		}
	}
}

// elevation returns the last coordinate of x
func elevation(x []float64) float64 { return x[len(x)-1] }

// ends returns the values and elevations at both sides of face f
func (o *Diffusion) ends(u *state.Field, f int) (c1, c2, bf int, u1, u2, z1, z2 float64) {
	cells := o.M.FaceCells(f)
	c1, c2, bf = cells[0], -1, -1
	u1, z1 = u.Get("cell", c1, 0), elevation(o.M.CellCentroid(c1))
	if len(cells) == 1 {
		bf = o.M.FaceToBoundaryFace(f)
		u2, z2 = u.Get("boundary_face", bf, 0), elevation(o.M.FaceCentroid(f))
		return
	}
	c2 = cells[1]
	u2, z2 = u.Get("cell", c2, 0), elevation(o.M.CellCentroid(c2))
	return
}

// Flux returns the flux through face f; positive from FaceCells(f)[0] to the other side
func (o *Diffusion) Flux(u *state.Field, f int) float64 {
	_, _, _, u1, u2, z1, z2 := o.ends(u, f)
	return o.T[f] * ((u1 - u2) + o.Gravity*(z1-z2))
}

// Fluxes computes the flux through every face
func (o *Diffusion) Fluxes(u *state.Field, out []float64) {
	for f := range o.T {
		out[f] = o.Flux(u, f)
	}
}

// AddResidual adds the net outflow of each cell to r and sets the boundary-face rows of r
func (o *Diffusion) AddResidual(u, r *state.Field) {
	for f := range o.T {
		c1, c2, bf, _, _, _, _ := o.ends(u, f)
		flux := o.Flux(u, f)
		r.Set("cell", c1, 0, r.Get("cell", c1, 0)+flux)
		if c2 >= 0 {
			r.Set("cell", c2, 0, r.Get("cell", c2, 0)-flux)
			continue
		}
		switch o.BC.Kind[bf] {
		case BcDirichlet:
			r.Set("boundary_face", bf, 0, u.Get("boundary_face", bf, 0)-o.BC.Value[bf])
		case BcFlux:
			r.Set("boundary_face", bf, 0, o.BC.Value[bf]*o.M.FaceArea(f)-flux)
		default:
			r.Set("boundary_face", bf, 0, -flux)
		}
	}
}

// Assemble adds the derivatives of the residual to A
func (o *Diffusion) Assemble(A *linalg.Matrix) {
	for f, t := range o.T {
		cells := o.M.FaceCells(f)
		c1 := cells[0]
		if len(cells) == 2 {
			c2 := cells[1]
			A.Put(c1, c1, t)
			A.Put(c1, c2, -t)
			A.Put(c2, c2, t)
			A.Put(c2, c1, -t)
			continue
		}
		bf := o.M.FaceToBoundaryFace(f)
		b := o.ncell + bf
		A.Put(c1, c1, t)
		A.Put(c1, b, -t)
		if o.BC.Kind[bf] == BcDirichlet {
			A.Put(b, b, 1)
			continue
		}
		A.Put(b, b, t)
		A.Put(b, c1, -t)
	}
}

// faceValue returns the boundary-face value satisfying the condition of bf given the value uc of its cell
func (o *Diffusion) faceValue(bf int, uc float64) (ub float64, ok bool) {
	if o.BC.Kind[bf] == BcDirichlet {
		return o.BC.Value[bf], true
	}
	f := o.M.BoundaryFaceToFace(bf)
	if o.T[f] <= 0 {
		return 0, false
	}
	c := o.M.FaceCells(f)[0]
	zc, zf := elevation(o.M.CellCentroid(c)), elevation(o.M.FaceCentroid(f))
	var q float64
	if o.BC.Kind[bf] == BcFlux {
		q = o.BC.Value[bf]
	}
	return uc + o.Gravity*(zc-zf) - q*o.M.FaceArea(f)/o.T[f], true
}

// ConsistentFaces sets the boundary-face values of u satisfying the boundary conditions
func (o *Diffusion) ConsistentFaces(u *state.Field) {
	for bf := 0; bf < o.nbf; bf++ {
		c := o.M.FaceCells(o.M.BoundaryFaceToFace(bf))[0]
		if ub, ok := o.faceValue(bf, u.Get("cell", c, 0)); ok {
			u.Set("boundary_face", bf, 0, ub)
		}
	}
}

// CorrectFaces replaces the boundary-face corrections of du by those giving consistent faces
//  after the cell corrections are applied: u_b - du_b = faceValue(u_c - du_c)
//  changed tells whether any correction was altered
func (o *Diffusion) CorrectFaces(u, du *state.Field) (changed bool) {
	for bf := 0; bf < o.nbf; bf++ {
		c := o.M.FaceCells(o.M.BoundaryFaceToFace(bf))[0]
		if ub, ok := o.faceValue(bf, u.Get("cell", c, 0)-du.Get("cell", c, 0)); ok {
			dub := u.Get("boundary_face", bf, 0) - ub
			if math.Abs(dub-du.Get("boundary_face", bf, 0)) > 1e-12*(1+math.Abs(dub)) {
				du.Set("boundary_face", bf, 0, dub)
				changed = true
			}
		}
	}
	return
}
