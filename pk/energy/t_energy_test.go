// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package energy

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/a-hamm/ats/comm"
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/pk"
	"github.com/a-hamm/ats/state"
	"github.com/cpmech/gosl/chk"

	_ "github.com/a-hamm/ats/mdl/energy"
)

func verbose() {
	chk.Verbose = true
}

const evaluators = `
energy:
  evaluator type: linear internal energy
  model parameters: {cv: 2.0e+6}
thermal_conductivity:
  evaluator type: constant
  value: 1.5
enthalpy:
  evaluator type: constant
  value: 0
`

// build returns an initialized energy kernel named "energy" on a column with 4 cells of unit thickness
func build(c comm.Comm, pks string) (o *Energy, err error) {
	plist, err := inp.ParseParameterList("PKs", []byte(pks))
	if err != nil {
		return
	}
	elist, err := inp.ParseParameterList("evaluators", []byte(evaluators))
	if err != nil {
		return
	}
	m, err := mesh.NewColumn("domain", 1, []float64{1, 1, 1, 1}, 1, 0)
	if err != nil {
		return
	}
	env := pk.NewEnv(eval.NewGraph(state.New(m), state.Next), plist)
	env.Comm = c
	res, err := pk.Build(env, elist, "energy")
	if err != nil {
		return
	}
	return res[0].(*Energy), nil
}

func Test_energy01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("energy01. steady conduction between Dirichlet faces")

	o, err := build(comm.Serial{}, `
energy:
  PK type: energy
  initial condition: {value: 275}
  boundary conditions:
    top: {type: dirichlet, region: top, value: 270}
    bottom: {type: dirichlet, region: bottom, value: 280}
`)
	if err != nil {
		tst.Errorf("build failed: %v\n", err)
		return
	}
	chk.String(tst, o.Lifecycle().Phase().String(), "Initialized")
	T, _ := o.Next("temperature")
	chk.Array(tst, "boundary faces", 1e-15, T.Comp("boundary_face"), []float64{270, 280})

	// one very long step
	failed, err := o.AdvanceStep(0, 1e12, false)
	if err != nil || failed {
		tst.Errorf("AdvanceStep failed: %v (failed=%v)\n", err, failed)
		return
	}
	if err = o.CommitStep(0, 1e12); err != nil {
		tst.Errorf("CommitStep failed: %v\n", err)
		return
	}
	Tc, _ := o.S.Read("temperature", state.Current)
	chk.Array(tst, "T", 1e-4, Tc.Clone().Comp("cell"), []float64{271.25, 273.75, 276.25, 278.75})

	// arithmetic mean: interior T = 1.5, boundary T = 3
	q, _ := o.S.Read("energy_flux", state.Current)
	chk.Array(tst, "energy flux", 1e-4, q.Clone().Comp("face"), []float64{3.75, -3.75, -3.75, -3.75, -3.75})
}

func Test_energy02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("energy02. freezing predictor and correction limiter")

	o, err := build(comm.Serial{}, `
energy:
  PK type: energy
  initial condition: {value: 275}
  modify predictor for freezing: true
  limit correction to temperature change [K]: 2
`)
	if err != nil {
		tst.Errorf("build failed: %v\n", err)
		return
	}
	u := o.Solution()
	u0 := u.Clone()
	copy(u0.Field().Comp("cell"), []float64{274, 272, 274, 272})
	copy(u.Field().Comp("cell"), []float64{272, 274, 274.5, 271})

	modified, err := o.ModifyPredictor(1, u0, u)
	if err != nil {
		tst.Errorf("ModifyPredictor failed: %v\n", err)
		return
	}
	if !modified {
		tst.Errorf("predictor must be modified\n")
		return
	}
	chk.Array(tst, "T", 1e-12, u.Field().Comp("cell"), []float64{273.15 - 1e-5, 273.15 + 1e-5, 274.5, 271})

	// idempotent
	modified, err = o.ModifyPredictor(1, u0, u)
	if err != nil {
		tst.Errorf("ModifyPredictor failed: %v\n", err)
		return
	}
	if modified {
		tst.Errorf("second call must not modify the predictor\n")
		return
	}
	chk.Array(tst, "T", 1e-12, u.Field().Comp("cell"), []float64{273.15 - 1e-5, 273.15 + 1e-5, 274.5, 271})

	// limiter; boundary faces follow their cells
	copy(u.Field().Comp("cell"), []float64{275, 275, 275, 275})
	copy(u.Field().Comp("boundary_face"), []float64{275, 275})
	o.ChangedSolution()
	if err = o.UpdatePreconditioner(0, u, 1); err != nil {
		tst.Errorf("UpdatePreconditioner failed: %v\n", err)
		return
	}
	du := u.Clone()
	copy(du.Field().Comp("cell"), []float64{5, -1, -3, 0.5})
	copy(du.Field().Comp("boundary_face"), []float64{0, 0})
	res := o.ModifyCorrection(1, nil, u, du)
	if res != pk.Modified {
		tst.Errorf("correction must be modified\n")
		return
	}
	chk.Array(tst, "dT", 1e-15, du.Field().Comp("cell"), []float64{2, -1, -2, 0.5})
	chk.Array(tst, "dT faces", 1e-15, du.Field().Comp("boundary_face"), []float64{2, 0.5})
	chk.Int(tst, "clipped", o.Clipped, 3)

	// reconstructed faces alone are a modification
	copy(du.Field().Comp("cell"), []float64{0.1, 0.1, 0.1, 0.1})
	if o.ModifyCorrection(1, nil, u, du) != pk.Modified {
		tst.Errorf("correction with reconstructed faces must be modified\n")
		return
	}
	chk.Array(tst, "dT faces", 1e-15, du.Field().Comp("boundary_face"), []float64{0.1, 0.1})
	chk.Int(tst, "clipped", o.Clipped, 0)

	// small consistent corrections are untouched
	if o.ModifyCorrection(1, nil, u, du) != pk.NotModified {
		tst.Errorf("correction must not be modified\n")
	}
}

func Test_energy03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("energy03. admissibility")

	o, err := build(comm.Serial{}, `
energy:
  PK type: energy
  initial condition: {value: 275}
`)
	if err != nil {
		tst.Errorf("build failed: %v\n", err)
		return
	}
	u := o.Solution()
	for _, c := range []struct {
		v  float64
		ok bool
	}{
		{200, true}, {199.999, false}, {330, true}, {330.1, false}, {math.NaN(), false},
	} {
		u.Field().Set("cell", 2, 0, c.v)
		if o.IsAdmissible(u) != c.ok {
			tst.Errorf("IsAdmissible(%g) must be %v\n", c.v, c.ok)
			return
		}
	}

	// unknown upwind method
	_, err = build(comm.Serial{}, `
energy:
  PK type: energy
  initial condition: {value: 275}
  upwind conductivity method: upstream
`)
	if !errs.Is(err, errs.Config) {
		tst.Errorf("unknown upwind method must give a ConfigError; got %v\n", err)
	}
}

func Test_energy04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("energy04. admissibility on three ranks")

	res := make([]bool, 3)
	err := comm.NewGroup(3).Run(context.Background(), func(ctx context.Context, c comm.Comm) error {
		o, err := build(c, `
energy:
  PK type: energy
  initial condition: {value: 275}
`)
		if err != nil {
			return err
		}
		u := o.Solution()
		if c.Rank() == 1 {
			u.Field().Set("cell", 0, 0, 199)
		}
		res[c.Rank()] = o.IsAdmissible(u)
		return nil
	})
	if err != nil {
		tst.Errorf("Run failed: %v\n", err)
		return
	}
	for rank, ok := range res {
		if ok {
			tst.Errorf("rank %d must see an inadmissible solution\n", rank)
			return
		}
	}
}

func Test_energy05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("energy05. advection needs a water flux")

	_, err := build(comm.Serial{}, `
energy:
  PK type: energy
  initial condition: {value: 275}
  include thermal advection: true
`)
	if !errs.Is(err, errs.Config) {
		tst.Errorf("advection without flow must give a ConfigError; got %v\n", err)
		return
	}
	if !strings.Contains(err.Error(), "water_flux") {
		tst.Errorf("error must name the water flux; got %v\n", err)
	}
}
