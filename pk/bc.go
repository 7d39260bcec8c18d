// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pk

import (
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mesh"
	"github.com/cpmech/gosl/fun/dbf"
)

// BcKind is the kind of boundary condition of a boundary face
type BcKind int

const (
	BcNone      BcKind = iota // zero flux
	BcDirichlet               // prescribed value
	BcFlux                    // prescribed outward flux per unit area
)

// String returns the name of the kind
func (k BcKind) String() string {
	switch k {
	case BcDirichlet:
		return "dirichlet"
	case BcFlux:
		return "flux"
	}
	return "none"
}

// bcData holds one condition read from input
type bcData struct {
	name  string // name of the sublist
	kind  BcKind // kind
	faces []int  // boundary faces
	fcn   dbf.T  // value as a function of time and face centroid
}

// BoundaryConditions holds the condition of every boundary face of one mesh
//  Faces without a condition have zero flux.
type BoundaryConditions struct {
	M     mesh.Mesh // mesh
	Kind  []BcKind  // [nbf] kind of each boundary face
	Value []float64 // [nbf] values computed by the last call to Compute
	data  []bcData  // conditions read from input
}

// NewBoundaryConditions returns zero-flux conditions on all boundary faces of m
func NewBoundaryConditions(m mesh.Mesh) *BoundaryConditions {
	nbf := m.NumEntities(mesh.BoundaryFace)
	return &BoundaryConditions{M: m, Kind: make([]BcKind, nbf), Value: make([]float64, nbf)}
}

// ReadBoundaryConditions reads the conditions in the sublists of plist
//  Each sublist has "type" (dirichlet or flux), "region" (top, bottom or all; default all) and
//  a value or function (see inp.ParameterList.Function). A face may have only one condition.
func ReadBoundaryConditions(m mesh.Mesh, plist *inp.ParameterList, funcs inp.FuncsData) (o *BoundaryConditions, err error) {
	o = NewBoundaryConditions(m)
	if plist == nil {
		return
	}
	owner := make(map[int]string)
	for _, name := range plist.Keys() {
		if !plist.IsSublist(name) {
			return nil, errs.Configf(name, "boundary condition must be a sublist")
		}
		sub := plist.Sublist(name)
		d := bcData{name: name}
		switch kind := sub.String("type", ""); kind {
		case "dirichlet":
			d.kind = BcDirichlet
		case "flux":
			d.kind = BcFlux
		default:
			return nil, errs.Configf(name, "boundary condition type %q is not available; use dirichlet or flux", kind)
		}
		if d.faces, err = mesh.BoundaryRegion(m, sub.String("region", "all")); err != nil {
			return
		}
		if d.fcn, err = sub.Function(funcs); err != nil {
			return
		}
		for _, bf := range d.faces {
			if prev, ok := owner[bf]; ok {
				return nil, errs.Configf(name, "boundary face %d already has condition %q", bf, prev)
			}
			owner[bf] = name
			o.Kind[bf] = d.kind
		}
		o.data = append(o.data, d)
	}
	return o, plist.Err()
}

// Compute evaluates all values at time t
func (o *BoundaryConditions) Compute(t float64) {
	for _, d := range o.data {
		for _, bf := range d.faces {
			o.Value[bf] = d.fcn.F(t, o.M.FaceCentroid(o.M.BoundaryFaceToFace(bf)))
		}
	}
}
