// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wc

import (
	"testing"

	"github.com/a-hamm/ats/eval"
	"github.com/cpmech/gosl/chk"
)

func verbose() {
	chk.Verbose = true
}

func Test_wc01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("wc01. 6 and 4 dependencies")

	mdl, err := New("liquid ice water content")
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	x := []float64{0.4, 0.6, 55000, 0.3, 50000, 0.5}
	chk.Float64(tst, "WC", 1e-9, mdl.Value(x), 0.4*(0.6*55000+0.3*50000)*0.5)
	eval.CheckPartials(tst, mdl, x, 1e-6, 1e-8, chk.Verbose)

	mdl, err = New("richards water content")
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	x = []float64{0.4, 0.6, 55000, 0.5}
	chk.Float64(tst, "WC", 1e-9, mdl.Value(x), 0.4*0.6*55000*0.5)
	eval.CheckPartials(tst, mdl, x, 1e-6, 1e-8, chk.Verbose)

	if _, err = New("magic"); err == nil {
		tst.Errorf("New should have failed\n")
		return
	}
}
