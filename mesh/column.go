// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"github.com/a-hamm/ats/errs"
)

// Column implements a set of independent vertical columns of cells
//
//   face 0 (top, boundary)
//   cell 0
//   face 1
//   cell 1
//   ...
//   face n (bottom, boundary)
//
// Columns are numbered left to right; cells and faces of column j start at j*n and j*(n+1).
type Column struct {
	name  string    // mesh name
	ncol  int       // number of columns
	dz    []float64 // [n] thickness of each cell (from top)
	area  float64   // horizontal area of each column
	ztop  float64   // elevation of the top face
	zface []float64 // [n+1] elevation of faces in one column
}

// NewColumn returns a Column mesh with ncol columns, each with cells of thickness dz
func NewColumn(name string, ncol int, dz []float64, area, ztop float64) (o *Column, err error) {
	if ncol < 1 || len(dz) < 1 {
		return nil, errs.Configf(name, "column mesh needs at least one column and one cell; got ncol=%d ncells=%d", ncol, len(dz))
	}
	if area <= 0 {
		return nil, errs.Configf(name, "column mesh area must be positive; got %g", area)
	}
	o = &Column{name: name, ncol: ncol, dz: dz, area: area, ztop: ztop}
	o.zface = make([]float64, len(dz)+1)
	o.zface[0] = ztop
	for i, h := range dz {
		if h <= 0 {
			return nil, errs.Configf(name, "cell thickness must be positive; dz[%d]=%g", i, h)
		}
		o.zface[i+1] = o.zface[i] - h
	}
	return
}

// Name returns the name of the mesh
func (o *Column) Name() string { return o.name }

// NumEntities returns the number of entities of kind k
func (o *Column) NumEntities(k Kind) int {
	n := len(o.dz)
	switch k {
	case Cell:
		return o.ncol * n
	case Face, Node:
		return o.ncol * (n + 1)
	case BoundaryFace:
		return o.ncol * 2
	}
	return 0
}

// CellFaces returns the top and bottom faces of cell c
func (o *Column) CellFaces(c int) []int {
	n := len(o.dz)
	j, i := c/n, c%n
	f := j*(n+1) + i
	return []int{f, f + 1}
}

// FaceCells returns the cells adjacent to face f
func (o *Column) FaceCells(f int) []int {
	n := len(o.dz)
	j, i := f/(n+1), f%(n+1)
	switch i {
	case 0:
		return []int{j * n}
	case n:
		return []int{j*n + n - 1}
	}
	return []int{j*n + i - 1, j*n + i}
}

// BoundaryFaceToFace returns the face of boundary face bf (even: top; odd: bottom)
func (o *Column) BoundaryFaceToFace(bf int) int {
	n := len(o.dz)
	j := bf / 2
	if bf%2 == 0 {
		return j * (n + 1)
	}
	return j*(n+1) + n
}

// FaceToBoundaryFace returns the boundary face of face f or -1
func (o *Column) FaceToBoundaryFace(f int) int {
	n := len(o.dz)
	j, i := f/(n+1), f%(n+1)
	switch i {
	case 0:
		return 2 * j
	case n:
		return 2*j + 1
	}
	return -1
}

// CellVolume returns the volume of cell c
func (o *Column) CellVolume(c int) float64 {
	return o.dz[c%len(o.dz)] * o.area
}

// FaceArea returns the area of face f
func (o *Column) FaceArea(f int) float64 {
	return o.area
}

// CellCentroid returns {x, y, z} of cell c; columns are placed one unit apart in x
func (o *Column) CellCentroid(c int) []float64 {
	n := len(o.dz)
	j, i := c/n, c%n
	return []float64{float64(j), 0, 0.5 * (o.zface[i] + o.zface[i+1])}
}

// FaceCentroid returns {x, y, z} of face f
func (o *Column) FaceCentroid(f int) []float64 {
	n := len(o.dz)
	j, i := f/(n+1), f%(n+1)
	return []float64{float64(j), 0, o.zface[i]}
}

// Columns returns the cells of each column from top to bottom
func (o *Column) Columns() [][]int {
	n := len(o.dz)
	res := make([][]int, o.ncol)
	for j := 0; j < o.ncol; j++ {
		res[j] = make([]int, n)
		for i := 0; i < n; i++ {
			res[j][i] = j*n + i
		}
	}
	return res
}

// Surface implements a mesh of disconnected cells; e.g. one surface cell per column
type Surface struct {
	name string
	area []float64
}

// NewSurface returns a surface mesh with one cell per given area
func NewSurface(name string, area []float64) *Surface {
	return &Surface{name: name, area: area}
}

// Name returns the name of the mesh
func (o *Surface) Name() string { return o.name }

// NumEntities returns the number of cells; surfaces have no faces
func (o *Surface) NumEntities(k Kind) int {
	if k == Cell {
		return len(o.area)
	}
	return 0
}

func (o *Surface) CellFaces(c int) []int         { return nil }
func (o *Surface) FaceCells(f int) []int         { return nil }
func (o *Surface) BoundaryFaceToFace(bf int) int { return -1 }
func (o *Surface) FaceToBoundaryFace(f int) int  { return -1 }
func (o *Surface) CellVolume(c int) float64      { return o.area[c] }
func (o *Surface) FaceArea(f int) float64        { return 0 }
func (o *Surface) FaceCentroid(f int) []float64  { return nil }
func (o *Surface) CellCentroid(c int) []float64  { return []float64{float64(c), 0, 0} }

// Columns returns one column per cell
func (o *Surface) Columns() [][]int {
	res := make([][]int, len(o.area))
	for i := range res {
		res[i] = []int{i}
	}
	return res
}
