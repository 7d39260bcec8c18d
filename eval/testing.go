// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eval

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// CheckPartials compares the analytical partial derivatives of model at x with central differences
//  h is the relative step; arguments equal to zero use h as the absolute step
func CheckPartials(tst *testing.T, model Model, x []float64, h, tol float64, verbose bool) {
	args := model.Args()
	xx := make([]float64, len(x))
	for i := range x {
		copy(xx, x)
		step := h
		if x[i] != 0 {
			step = h * math.Abs(x[i])
		}
		xx[i] = x[i] + step
		fp := model.Value(xx)
		xx[i] = x[i] - step
		fm := model.Value(xx)
		num := (fp - fm) / (2 * step)
		copy(xx, x)
		ana := model.Partial(i, xx)
		chk.AnaNum(tst, io.Sf("∂f/∂%-24s", args[i]), tol*(1+math.Abs(ana)), ana, num, verbose)
	}
}

