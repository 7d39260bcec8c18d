// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linalg implements sparse operators and their (approximate) inverses
package linalg

import (
	"math"

	"github.com/a-hamm/ats/errs"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Operator defines linear operators with an (approximate) inverse
type Operator interface {
	Size() int                         // number of rows (and columns)
	Apply(y, x la.Vector) error        // y := A x
	ApplyInverse(x, b la.Vector) error // x := A⁻¹ b (approximately for iterative methods)
}

// Matrix implements a square sparse matrix assembled in triplet form
//  Entries put twice are summed. Start restarts the assembly.
type Matrix struct {
	T      *la.Triplet     // entries
	Method string          // "umfpack" (default) or "gauss seidel"
	Tol    float64         // tolerance of iterative methods
	MaxIt  int             // maximum number of iterations of iterative methods
	n      int             // size
	solver la.SparseSolver // factorised solver; nil if not computed or invalidated
	dense  *la.Matrix      // summed entries; nil if not computed or invalidated
}

// NewMatrix returns a new n×n matrix holding at most nnz puts between two calls to Start
func NewMatrix(n, nnz int) (o *Matrix) {
	o = &Matrix{T: la.NewTriplet(n, n, nnz), Method: "umfpack", Tol: 1e-12, MaxIt: 1000, n: n}
	return
}

// Size returns the number of rows
func (o *Matrix) Size() int { return o.n }

// Max returns the maximum number of puts
func (o *Matrix) Max() int { return o.T.Max() }

// Start restarts the assembly
func (o *Matrix) Start() {
	o.T.Start()
	o.invalidate()
}

// Put adds v to A_ij
func (o *Matrix) Put(i, j int, v float64) {
	if i < 0 || i >= o.n || j < 0 || j >= o.n {
		chk.Panic("linalg: index (%d,%d) is out of range; size = %d", i, j, o.n)
	}
	o.T.Put(i, j, v)
	o.invalidate()
}

// Get returns A_ij
func (o *Matrix) Get(i, j int) float64 { return o.summed().Get(i, j) }

// Row returns the column indices of the non-zero entries of row i in increasing order
func (o *Matrix) Row(i int) (cols []int) {
	a := o.summed()
	for j := 0; j < o.n; j++ {
		if a.Get(i, j) != 0 {
			cols = append(cols, j)
		}
	}
	return
}

// Apply computes y := A x
func (o *Matrix) Apply(y, x la.Vector) error {
	if len(x) != o.n || len(y) != o.n {
		return errs.Configf("matrix", "vectors must have size %d; got %d and %d", o.n, len(x), len(y))
	}
	la.SpTriMatVecMul(y, o.T, x)
	return nil
}

// ApplyInverse computes x := A⁻¹ b by the selected method
func (o *Matrix) ApplyInverse(x, b la.Vector) (err error) {
	if len(x) != o.n || len(b) != o.n {
		return errs.Configf("matrix", "vectors must have size %d; got %d and %d", o.n, len(x), len(b))
	}
	switch o.Method {
	case "umfpack":
		if o.solver == nil {
			if err = o.Fact(); err != nil {
				return
			}
		}
		if err = catch(func() { o.solver.Solve(x, b, false) }); err != nil {
			return
		}
		return finite(x)
	case "gauss seidel":
		return o.gaussSeidel(x, b)
	}
	return errs.Configf("matrix", "method %q is not available; use \"umfpack\" or \"gauss seidel\"", o.Method)
}

// Fact computes the sparse factorisation
func (o *Matrix) Fact() (err error) {
	o.Free()
	if o.T.Len() == 0 {
		return errs.Singularf("matrix", "matrix has no entries")
	}
	solver := la.NewSparseSolver("umfpack")
	err = catch(func() {
		solver.Init(o.T, nil)
		solver.Fact()
	})
	if err != nil {
		solver.Free()
		return
	}
	o.solver = solver
	return
}

// Free releases the factorisation
func (o *Matrix) Free() {
	if o.solver != nil {
		o.solver.Free()
		o.solver = nil
	}
}

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// invalidate discards the factorisation and the summed entries
func (o *Matrix) invalidate() {
	o.Free()
	o.dense = nil
}

// summed returns the dense matrix with duplicated entries summed
func (o *Matrix) summed() *la.Matrix {
	if o.dense != nil {
		return o.dense
	}
	if o.T.Len() == 0 {
		o.dense = la.NewMatrix(o.n, o.n)
		return o.dense
	}
	o.dense = o.T.ToMatrix(nil).ToDense()
	return o.dense
}

// gaussSeidel solves A x = b by Gauss-Seidel sweeps starting from x = 0
func (o *Matrix) gaussSeidel(x, b la.Vector) error {
	a := o.summed()
	rows := make([][]int, o.n)
	for i := range rows {
		rows[i] = o.Row(i)
		if d := a.Get(i, i); d == 0 || math.IsNaN(d) {
			return errs.Singularf("matrix", "diagonal entry %d is %g", i, d)
		}
	}
	x.Fill(0)
	if b.Norm() == 0 {
		return nil
	}
	for it := 0; it < o.MaxIt; it++ {
		dmax := 0.0
		for i, row := range rows {
			s := b[i]
			for _, j := range row {
				if j != i {
					s -= a.Get(i, j) * x[j]
				}
			}
			xnew := s / a.Get(i, i)
			dmax = math.Max(dmax, math.Abs(xnew-x[i]))
			x[i] = xnew
		}
		if math.IsNaN(dmax) || math.IsInf(dmax, 0) {
			return errs.Singularf("matrix", "gauss seidel iterations diverged")
		}
		if dmax <= o.Tol*(1+x.Norm()) {
			break
		}
	}
	return nil
}

// catch converts panics of the linear solvers into NumericalSingularity errors
func catch(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.Singularf("matrix", "%v", r)
		}
	}()
	f()
	return
}

// finite checks that all components of x are finite
func finite(x la.Vector) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.Singularf("matrix", "non-finite solution at row %d", i)
		}
	}
	return nil
}
