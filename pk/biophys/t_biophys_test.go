// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package biophys

import (
	"testing"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/pk"
	"github.com/a-hamm/ats/state"
	"github.com/cpmech/gosl/chk"
)

func verbose() {
	chk.Verbose = true
}

const drivers = `
surface-air_temperature: {evaluator type: constant, value: 293.15}
surface-relative_humidity: {evaluator type: constant, value: 0.7}
surface-wind_speed: {evaluator type: constant, value: 2}
surface-precipitation_rain: {evaluator type: constant, value: 0}
surface-incident_radiation: {evaluator type: constant, value: 200}
surface-co2_concentration: {evaluator type: constant, value: 400}
`

func build(tst *testing.T, pks string, meshes ...mesh.Mesh) (*Vegetation, error) {
	plist, err := inp.ParseParameterList("PKs", []byte(pks))
	if err != nil {
		tst.Fatalf("ParseParameterList failed: %v\n", err)
	}
	elist, err := inp.ParseParameterList("evaluators", []byte(drivers))
	if err != nil {
		tst.Fatalf("ParseParameterList failed: %v\n", err)
	}
	env := pk.NewEnv(eval.NewGraph(state.New(meshes...), state.Next), plist)
	res, err := pk.Build(env, elist, "veg")
	if err != nil {
		return nil, err
	}
	return res[0].(*Vegetation), nil
}

func Test_biophys01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("biophys01. sub-cycles of one day")

	o, err := build(tst, `
veg:
  PK type: biophysics
  surface only: true
`, mesh.NewSurface("surface", []float64{1, 1}))
	if err != nil {
		tst.Errorf("build failed: %v\n", err)
		return
	}
	s := o.S
	b, _ := s.Read("surface-biomass", state.Current)
	chk.Array(tst, "b0", 1e-15, b.Clone().Comp("cell"), []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1})

	t, nsteps := 0.0, 0
	for t < 86400 {
		dt := o.GetDt()
		chk.Float64(tst, "dt", 1e-15, dt, 1800)
		s.SetTime(state.Next, t+dt)
		failed, err := o.AdvanceStep(t, t+dt, false)
		if err != nil || failed {
			tst.Errorf("AdvanceStep failed: %v (failed=%v)\n", err, failed)
			return
		}
		if err = o.CommitStep(t, t+dt); err != nil {
			tst.Errorf("CommitStep failed: %v\n", err)
			return
		}
		s.Commit()
		t += dt
		nsteps++
		if nsteps == 1 {
			b, _ = s.Read("surface-biomass", state.Current)
			chk.Float64(tst, "b after photosynthesis", 1e-15, b.Get("cell", 0, 0), 0.1)
		}
	}
	chk.Int(tst, "nsteps", nsteps, 48)

	// 48 × ε R f(T) dt = 48 × 1e-9 × 200 × 0.8 × 1800; then turnover of one day
	gpp := 48 * 1e-9 * 200 * 0.8 * 1800
	expected := 0.1*(1-0.01) + gpp/3
	b, _ = s.Read("surface-biomass", state.Current)
	chk.Array(tst, "b", 1e-12, b.Clone().Comp("cell"), []float64{expected, expected, expected, expected, expected, expected})
}

func Test_biophys02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("biophys02. time step to the next event")

	o, err := build(tst, `
veg:
  PK type: biophysics
  surface only: true
  photosynthesis time step: 1000
  veg dynamics time step: 2500
`, mesh.NewSurface("surface", []float64{1}))
	if err != nil {
		tst.Errorf("build failed: %v\n", err)
		return
	}
	s := o.S
	t := 0.0
	var dts []float64
	for t < 5000 {
		dt := o.GetDt()
		dts = append(dts, dt)
		s.SetTime(state.Next, t+dt)
		if _, err = o.AdvanceStep(t, t+dt, false); err != nil {
			tst.Errorf("AdvanceStep failed: %v\n", err)
			return
		}
		if err = o.CommitStep(t, t+dt); err != nil {
			tst.Errorf("CommitStep failed: %v\n", err)
			return
		}
		s.Commit()
		t += dt
	}
	chk.Array(tst, "dts", 1e-12, dts, []float64{1000, 1000, 500, 500, 1000, 1000})
}

func Test_biophys03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("biophys03. calendar, columns and errors")

	for _, c := range []struct {
		t               float64
		doy, month, dom int
	}{
		{0, 1, 1, 1},
		{86400 * 31, 32, 2, 1},
		{86400 * 364.5, 365, 12, 31},
		{86400 * 365, 1, 1, 1},
	} {
		doy, month, dom := Calendar(c.t)
		chk.Ints(tst, "calendar", []int{doy, month, dom}, []int{c.doy, c.month, c.dom})
	}

	// one site per column
	col, _ := mesh.NewColumn("domain", 2, []float64{0.5, 1, 1}, 1, 0)
	plist, _ := inp.ParseParameterList("PKs", []byte("veg: {PK type: biophysics}"))
	env := pk.NewEnv(eval.NewGraph(state.New(mesh.NewSurface("surface", []float64{1, 1}), col), state.Next), plist)
	p, err := pk.New("veg", env)
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	veg := p.(*Vegetation)
	sites, err := veg.buildSites(mesh.NewSurface("surface", []float64{1, 1}))
	if err != nil {
		tst.Errorf("buildSites failed: %v\n", err)
		return
	}
	chk.Ints(tst, "cells", sites[1].Cells, []int{3, 4, 5})
	chk.Array(tst, "depth", 1e-15, sites[1].Depth, []float64{0.25, 1, 2})
	chk.Array(tst, "dz", 1e-15, sites[1].Dz, []float64{0.5, 1, 1})

	// mismatch between sites and columns
	if _, err = veg.buildSites(mesh.NewSurface("surface", []float64{1})); !errs.Is(err, errs.Config) {
		tst.Errorf("mismatch must give a ConfigError; got %v\n", err)
		return
	}

	// bad parameters
	for _, yaml := range []string{
		"veg: {PK type: biophysics, photosynthesis time step: 0}",
		"veg: {PK type: biophysics, model: magic}",
	} {
		plist, _ := inp.ParseParameterList("PKs", []byte(yaml))
		env := pk.NewEnv(eval.NewGraph(state.New(mesh.NewSurface("surface", []float64{1})), state.Next), plist)
		if _, err = pk.New("veg", env); !errs.Is(err, errs.Config) {
			tst.Errorf("%q must give a ConfigError; got %v\n", yaml, err)
			return
		}
	}
}

func Test_biophys04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("biophys04. rejected steps leave the vegetation unchanged")

	o, err := build(tst, `
veg:
  PK type: biophysics
  surface only: true
`, mesh.NewSurface("surface", []float64{1, 1}))
	if err != nil {
		tst.Errorf("build failed: %v\n", err)
		return
	}
	s := o.S
	lue := o.Model.(*LightUse)

	// every attempt on the photosynthesis cadence is rejected once before being accepted
	t, nrejected := 0.0, 0
	for t < 86400 {
		dt := o.GetDt()
		for attempt := 0; attempt < 2; attempt++ {
			s.SetTime(state.Next, t+dt)
			failed, err := o.AdvanceStep(t, t+dt, false)
			if err != nil || failed {
				tst.Errorf("AdvanceStep failed: %v (failed=%v)\n", err, failed)
				return
			}
			if attempt == 0 {
				s.Restore()
				o.ChangedSolution()
				nrejected++
				if t+dt < 86400 {
					chk.Float64(tst, "gpp after rejection", 1e-15, lue.gpp[0], float64(nrejected-1)*1e-9*200*0.8*1800)
				}
			}
		}
		if err = o.CommitStep(t, t+dt); err != nil {
			tst.Errorf("CommitStep failed: %v\n", err)
			return
		}
		s.Commit()
		t += dt
	}
	chk.Int(tst, "rejected", nrejected, 48)

	// same as without rejections
	gpp := 48 * 1e-9 * 200 * 0.8 * 1800
	expected := 0.1*(1-0.01) + gpp/3
	b, _ := s.Read("surface-biomass", state.Current)
	chk.Array(tst, "b", 1e-12, b.Clone().Comp("cell"), []float64{expected, expected, expected, expected, expected, expected})
	chk.Array(tst, "gpp", 1e-15, lue.gpp, []float64{0, 0})

	// a rejected attempt followed by a shorter step runs no event
	dt := o.GetDt()
	s.SetTime(state.Next, t+dt)
	if _, err = o.AdvanceStep(t, t+dt, false); err != nil {
		tst.Errorf("AdvanceStep failed: %v\n", err)
		return
	}
	chk.Float64(tst, "gpp after attempt", 1e-15, lue.gpp[0], 1e-9*200*0.8*1800)
	s.Restore()
	o.ChangedSolution()
	chk.Float64(tst, "gpp after rejection", 1e-15, lue.gpp[0], 0)
	s.SetTime(state.Next, t+dt/2)
	if _, err = o.AdvanceStep(t, t+dt/2, false); err != nil {
		tst.Errorf("AdvanceStep failed: %v\n", err)
		return
	}
	chk.Float64(tst, "gpp after half step", 1e-15, lue.gpp[0], 0)
}
