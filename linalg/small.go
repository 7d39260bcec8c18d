// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"math"

	"github.com/cpmech/gosl/la"
)

// Solve2 solves the 2×2 system a x = b
//  a matrix whose determinant is small compared with its entries is reported as singular
func Solve2(a [2][2]float64, b [2]float64) (x [2]float64, err error) {
	scale := math.Max(math.Abs(a[0][0]*a[1][1]), math.Abs(a[0][1]*a[1][0]))
	tol := math.Max(1e-14*scale, math.SmallestNonzeroFloat64)
	A := la.NewMatrixDeep2([][]float64{a[0][:], a[1][:]})
	Ai := la.NewMatrix(2, 2)
	if err = catch(func() { la.MatInvSmall(Ai, A, tol) }); err != nil {
		return
	}
	x[0] = Ai.Get(0, 0)*b[0] + Ai.Get(0, 1)*b[1]
	x[1] = Ai.Get(1, 0)*b[0] + Ai.Get(1, 1)*b[1]
	err = finite(x[:])
	return
}
