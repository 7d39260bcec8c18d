// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errs

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_errs01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("errs01")

	err := Configf("temperature", "incompatible layout: %d != %d", 1, 2)
	chk.String(tst, err.Error(), "ConfigError [temperature]: incompatible layout: 1 != 2")
	if !Is(err, Config) {
		tst.Errorf("Is failed\n")
		return
	}
	if Is(err, PhysicalBounds) {
		tst.Errorf("Is should have returned false\n")
		return
	}
	if !err.Class.Fatal() {
		tst.Errorf("ConfigError must be fatal\n")
		return
	}

	// wrapped in a classified error of another class
	outer := Wrap(NumericalSingularity, "", err, "preconditioner failed")
	if !Is(outer, Config) || !Is(outer, NumericalSingularity) {
		tst.Errorf("Is failed to find classes in chain\n")
		return
	}
	chk.Int(tst, "class", int(ClassOf(outer)), int(NumericalSingularity))

	// errors.Is with a template
	if !errors.Is(err, &Error{Class: Config}) {
		tst.Errorf("errors.Is failed\n")
		return
	}
	if errors.Is(err, &Error{Class: Config, Key: "pressure"}) {
		tst.Errorf("errors.Is should not match a different key\n")
		return
	}
	chk.Int(tst, "no class", int(ClassOf(errors.New("plain"))), 0)
}
