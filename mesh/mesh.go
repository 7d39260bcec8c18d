// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mesh defines the mesh queries consumed by evaluators and process kernels
package mesh

import (
	"math"

	"github.com/a-hamm/ats/errs"
)

// Kind is the kind of mesh entity a field component lives on
type Kind int

const (
	Cell Kind = iota
	Face
	BoundaryFace
	Node
)

// kindNames holds the names used in input files
var kindNames = []string{"cell", "face", "boundary_face", "node"}

// String returns the name of the entity kind
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind returns the entity kind corresponding to name
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, errs.Configf(name, "entity kind %q is not available", name)
}

// Mesh defines the read-only topology and geometry queries
type Mesh interface {
	Name() string                  // name of mesh; e.g. "domain", "surface"
	NumEntities(k Kind) int        // number of owned entities of kind k
	CellFaces(c int) []int         // faces of cell c
	FaceCells(f int) []int         // cells adjacent to face f; len 1 on the boundary
	BoundaryFaceToFace(bf int) int // face index of boundary face bf
	FaceToBoundaryFace(f int) int  // boundary face index of face f; -1 if interior
	CellVolume(c int) float64      // volume of cell c
	FaceArea(f int) float64        // area of face f
	CellCentroid(c int) []float64  // centroid of cell c
	FaceCentroid(f int) []float64  // centroid of face f
	Columns() [][]int              // cells of each column ordered from top to bottom
}

// Distance returns the distance between the centroids of cell c and face f
func Distance(m Mesh, c, f int) float64 {
	xc, xf := m.CellCentroid(c), m.FaceCentroid(f)
	var d2 float64
	for i := range xc {
		d2 += (xc[i] - xf[i]) * (xc[i] - xf[i])
	}
	return math.Sqrt(d2)
}

// Neighbour returns the cell across face f from cell c; -1 on the boundary
func Neighbour(m Mesh, c, f int) int {
	for _, n := range m.FaceCells(f) {
		if n != c {
			return n
		}
	}
	return -1
}

// BoundaryRegion returns the boundary faces of region "top", "bottom" or "all"
//  top faces lie above their cell (by the last centroid coordinate); bottom faces lie below it
func BoundaryRegion(m Mesh, region string) (bfs []int, err error) {
	nbf := m.NumEntities(BoundaryFace)
	for bf := 0; bf < nbf; bf++ {
		f := m.BoundaryFaceToFace(bf)
		cells := m.FaceCells(f)
		xf, xc := m.FaceCentroid(f), m.CellCentroid(cells[0])
		dz := xf[len(xf)-1] - xc[len(xc)-1]
		switch region {
		case "all":
			bfs = append(bfs, bf)
		case "top":
			if dz > 0 {
				bfs = append(bfs, bf)
			}
		case "bottom":
			if dz < 0 {
				bfs = append(bfs, bf)
			}
		default:
			return nil, errs.Configf(region, "boundary region is not available; use top, bottom or all")
		}
	}
	return
}
