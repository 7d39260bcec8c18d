// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ewc

import (
	"testing"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	chk.Verbose = true
}

func Test_permafrost01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("permafrost01. jacobian")

	plist, err := inp.ParseParameterList("ewc model", []byte(`
porosity parameters:
  beta: 1e-9
wrm parameters:
  alp: 1e-4
  n: 1.8
  slmin: 0.1
  w: 1.0
`))
	if err != nil {
		tst.Errorf("ParseParameterList failed: %v\n", err)
		return
	}
	mdl, err := New("permafrost", plist)
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	mdl.Refresh([]float64{0.4, 0.3}, []float64{1, 2})

	// extensive quantities scale with volume
	e0, w0 := mdl.Conserved(0, 270, 1.5e5)
	e1, w1 := mdl.Conserved(1, 270, 1.5e5)
	io.Pforan("e0=%g wc0=%g e1=%g wc1=%g\n", e0, w0, e1, w1)
	if w1 >= 2*w0 {
		tst.Errorf("smaller porosity must hold less water per volume\n")
		return
	}

	hT, hp := 1e-5, 1e-2
	for _, T := range []float64{265, 272.5, 273.15, 274, 280} {
		for _, p := range []float64{8e4, 1.01e5, 1.5e5} {
			J := mdl.Jacobian(0, T, p)
			ep, wp := mdl.Conserved(0, T+hT, p)
			em, wm := mdl.Conserved(0, T-hT, p)
			chk.AnaNum(tst, io.Sf("∂e/∂T (%g,%g)", T, p), 1e-5*(1+abs(J[0][0])), J[0][0], (ep-em)/(2*hT), chk.Verbose)
			chk.AnaNum(tst, io.Sf("∂wc/∂T(%g,%g)", T, p), 1e-5*(1+abs(J[1][0])), J[1][0], (wp-wm)/(2*hT), chk.Verbose)
			ep, wp = mdl.Conserved(0, T, p+hp)
			em, wm = mdl.Conserved(0, T, p-hp)
			chk.AnaNum(tst, io.Sf("∂e/∂p (%g,%g)", T, p), 1e-5*(1+abs(J[0][1])), J[0][1], (ep-em)/(2*hp), chk.Verbose)
			chk.AnaNum(tst, io.Sf("∂wc/∂p(%g,%g)", T, p), 1e-5*(1+abs(J[1][1])), J[1][1], (wp-wm)/(2*hp), chk.Verbose)
		}
	}

	// unknown model
	if _, err = New("magic", plist); !errs.Is(err, errs.Config) {
		tst.Errorf("unknown model must be a ConfigError; got %v\n", err)
		return
	}
	chk.Strings(tst, "names", Names(), []string{"permafrost"})
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
