// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flow

import (
	"math"
	"testing"

	"github.com/a-hamm/ats/comm"
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/pk"
	"github.com/a-hamm/ats/state"
	"github.com/cpmech/gosl/chk"

	_ "github.com/a-hamm/ats/mdl/conduct"
	_ "github.com/a-hamm/ats/mdl/wc"
	_ "github.com/a-hamm/ats/mdl/wrm"
)

func verbose() {
	chk.Verbose = true
}

const ρg = 1000 * 9.80665

// build returns an initialized flow kernel named "flow" on a column with 4 cells of unit thickness
func build(tst *testing.T, pks, evaluators string) *Richards {
	plist, err := inp.ParseParameterList("PKs", []byte(pks))
	if err != nil {
		tst.Fatalf("ParseParameterList failed: %v\n", err)
	}
	elist, err := inp.ParseParameterList("evaluators", []byte(evaluators))
	if err != nil {
		tst.Fatalf("ParseParameterList failed: %v\n", err)
	}
	m, _ := mesh.NewColumn("domain", 1, []float64{1, 1, 1, 1}, 1, 0)
	env := pk.NewEnv(eval.NewGraph(state.New(m), state.Next), plist)
	env.Comm = comm.Serial{}
	res, err := pk.Build(env, elist, "flow")
	if err != nil {
		tst.Fatalf("Build failed: %v\n", err)
	}
	return res[0].(*Richards)
}

// evaluators returns the closure of the water content with relative permeability kr
func evaluators(kr string) string {
	return `
porosity: {evaluator type: constant, value: 0.4}
molar_density_liquid: {evaluator type: constant, value: 55500}
cell_volume: {evaluator type: cell volume}
saturation_liquid:
  evaluator type: van genuchten
  model parameters: {alp: 2.0e-4, n: 2, slmin: 0.05}
water_content: {evaluator type: richards water content}
relative_permeability: ` + kr + "\n"
}

func Test_richards01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("richards01. hydrostatic initial condition is steady")

	o := build(tst, `
flow:
  PK type: richards
  water table elevation: -2
`, evaluators("{evaluator type: power conductivity, model parameters: {lam: 3, slr: 0.05}}"))

	p, _ := o.Next("pressure")
	chk.Array(tst, "p", 1e-8, p.Comp("cell"), []float64{
		101325 - 1.5*ρg, 101325 - 0.5*ρg, 101325 + 0.5*ρg, 101325 + 1.5*ρg,
	})
	chk.Array(tst, "p faces", 1e-8, p.Comp("boundary_face"), []float64{101325 - 2*ρg, 101325 + 2*ρg})

	// no flux anywhere
	u := o.Solution()
	r := u.Clone()
	if err := o.Residual(0, 1, u, r); err != nil {
		tst.Errorf("Residual failed: %v\n", err)
		return
	}
	chk.Array(tst, "r", 1e-12, r.Field().Comp("cell"), []float64{0, 0, 0, 0})
	chk.Array(tst, "r faces", 1e-12, r.Field().Comp("boundary_face"), []float64{0, 0})

	// saturated cells below the water table
	sl, _ := o.S.Read("saturation_liquid", state.Next)
	chk.Float64(tst, "sl below", 1e-15, sl.Get("cell", 3, 0), 1)
	if sl.Get("cell", 0, 0) >= 1 {
		tst.Errorf("cell above the water table must be unsaturated\n")
	}
}

func Test_richards02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("richards02. infiltration conserves water")

	o := build(tst, `
flow:
  PK type: richards
  water table elevation: -4
  boundary conditions:
    rain: {type: flux, region: top, value: -0.01}
`, evaluators("{evaluator type: constant, value: 1}"))

	wc0, _ := o.S.Read("water_content", state.Current)
	total0 := sum(wc0.Clone().Comp("cell"))

	h := 1e4
	failed, err := o.AdvanceStep(0, h, false)
	if err != nil || failed {
		tst.Errorf("AdvanceStep failed: %v (failed=%v)\n", err, failed)
		return
	}
	if err = o.CommitStep(0, h); err != nil {
		tst.Errorf("CommitStep failed: %v\n", err)
		return
	}
	wc, err := o.G.Update("water_content", "test")
	if err != nil {
		tst.Errorf("Update failed: %v\n", err)
		return
	}
	chk.Float64(tst, "stored water", 1e-6, sum(wc.Comp("cell"))-total0, 0.01*h)

	q, _ := o.S.Read("water_flux", state.Current)
	chk.Float64(tst, "top flux", 1e-9, q.Get("face", 0, 0), -0.01)
	chk.Float64(tst, "bottom flux", 1e-9, q.Get("face", 4, 0), 0)
}

func Test_richards03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("richards03. admissibility, corrections and parameters")

	o := build(tst, `
flow:
  PK type: richards
  initial condition: {value: 101325}
  min pressure: 0
  max pressure change: 1000
`, evaluators("{evaluator type: constant, value: 1}"))

	u := o.Solution()
	if !o.IsAdmissible(u) {
		tst.Errorf("initial pressure must be admissible\n")
		return
	}
	u.Field().Set("cell", 1, 0, -1)
	if o.IsAdmissible(u) {
		tst.Errorf("pressure below min pressure must not be admissible\n")
		return
	}
	u.Field().Set("cell", 1, 0, math.Inf(1))
	if o.IsAdmissible(u) {
		tst.Errorf("infinite pressure must not be admissible\n")
		return
	}
	u.Field().Set("cell", 1, 0, 101325)

	du := u.Clone()
	du.Field().Fill(0)
	copy(du.Field().Comp("cell"), []float64{0, 5000, -2000, 10})
	if o.ModifyCorrection(1, nil, u, du) != pk.Modified {
		tst.Errorf("correction must be modified\n")
		return
	}
	chk.Array(tst, "dp", 1e-15, du.Field().Comp("cell"), []float64{0, 1000, -1000, 10})
	chk.Int(tst, "clipped", o.Clipped, 2)
	if o.ModifyCorrection(1, nil, u, du) != pk.NotModified {
		tst.Errorf("limited correction with consistent faces must not be modified again\n")
		return
	}

	// bad parameters
	plist, _ := inp.ParseParameterList("PKs", []byte("flow: {PK type: richards, permeability: 0}"))
	m, _ := mesh.NewColumn("domain", 1, []float64{1}, 1, 0)
	env := pk.NewEnv(eval.NewGraph(state.New(m), state.Next), plist)
	if _, err := pk.New("flow", env); !errs.Is(err, errs.Config) {
		tst.Errorf("zero permeability must give a ConfigError; got %v\n", err)
	}
}

func sum(v []float64) (res float64) {
	for _, x := range v {
		res += x
	}
	return
}
