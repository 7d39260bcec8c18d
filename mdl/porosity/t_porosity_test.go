// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package porosity

import (
	"testing"

	"github.com/a-hamm/ats/eval"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

func verbose() {
	chk.Verbose = true
}

func Test_compressible01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("compressible01")

	mdl, err := New("compressible")
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	if err = mdl.Init(dbf.Params{&dbf.P{N: "pore compressibility", V: 1e-8}}); err != nil {
		tst.Errorf("Init failed: %v\n", err)
		return
	}
	chk.Float64(tst, "φ(p < patm)", 1e-15, mdl.Value([]float64{0.3, 9e4}), 0.3)
	chk.Float64(tst, "φ(p > patm)", 1e-15, mdl.Value([]float64{0.3, 201325}), 0.301)
	chk.Float64(tst, "∂φ/∂p (p < patm)", 1e-15, mdl.Partial(1, []float64{0.3, 9e4}), 0)
	eval.CheckPartials(tst, mdl, []float64{0.3, 2e5}, 1e-6, 1e-8, chk.Verbose)

	if err = mdl.Init(dbf.Params{&dbf.P{N: "beta", V: -1}}); err == nil {
		tst.Errorf("negative compressibility should have failed\n")
		return
	}
}
