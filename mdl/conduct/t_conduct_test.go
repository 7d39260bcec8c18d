// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conduct

import (
	"testing"

	"github.com/a-hamm/ats/eval"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

func verbose() {
	chk.Verbose = true
}

func Test_manning01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("manning01")

	mdl, err := New("manning")
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	if err = mdl.Init(mdl.GetPrms(true)); err != nil {
		tst.Errorf("Init failed: %v\n", err)
		return
	}
	chk.Float64(tst, "K(d=0)", 1e-15, mdl.Value([]float64{0, 55000, 1}), 0)
	chk.Float64(tst, "K(frozen)", 1e-15, mdl.Value([]float64{0.1, 55000, 0}), 0)
	for _, d := range []float64{1e-3, 0.01, 0.5} {
		eval.CheckPartials(tst, mdl, []float64{d, 55000, 0.8}, 1e-6, 1e-7, chk.Verbose)
	}
}

func Test_thermal01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("thermal01")

	mdl, err := New("three phase thermal")
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	if err = mdl.Init(nil); err != nil {
		tst.Errorf("Init failed: %v\n", err)
		return
	}
	chk.Float64(tst, "K(φ=0)", 1e-15, mdl.Value([]float64{0, 0.5, 0.5}), 2.0)
	chk.Float64(tst, "K(saturated)", 1e-15, mdl.Value([]float64{1, 1, 0}), 0.6)
	eval.CheckPartials(tst, mdl, []float64{0.4, 0.3, 0.5}, 1e-6, 1e-8, chk.Verbose)
}

func Test_power01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("power01")

	mdl, err := New("power")
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	if err = mdl.Init(mdl.GetPrms(true)); err != nil {
		tst.Errorf("Init failed: %v\n", err)
		return
	}
	chk.Float64(tst, "kr(1)", 1e-15, mdl.Value([]float64{1}), 1)
	chk.Float64(tst, "kr(0)", 1e-15, mdl.Value([]float64{0}), 1e-10)
	for _, sl := range utl.LinSpace(0.1, 0.95, 5) {
		eval.CheckPartials(tst, mdl, []float64{sl}, 1e-6, 1e-8, chk.Verbose)
	}
}
