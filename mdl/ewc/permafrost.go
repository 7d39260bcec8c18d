// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ewc

import (
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mdl/energy"
	"github.com/a-hamm/ats/mdl/porosity"
	"github.com/a-hamm/ats/mdl/wc"
	"github.com/a-hamm/ats/mdl/wrm"
	"github.com/cpmech/gosl/fun/dbf"
)

// Permafrost composes the closures of a freezing porous medium
//  e  = [ φ (sl nl ul + si ni ui) + (1 - φ0) ρr ur ] V
//  wc = φ (sl nl + si ni) V
//  with φ(φ0, p), sl(T, p), si(T, p) and u(T) for liquid, ice and rock
type Permafrost struct {
	poro       porosity.Compressible // porosity
	sat        wrm.Permafrost        // liquid and ice saturations
	ul, ui, ur energy.Linear         // internal energies
	energy     energy.LiquidIce      // energy
	water      wc.LiquidIce          // water content
	nl, ni, ρr float64               // molar densities of liquid and ice; density of rock
	φ0, vol    []float64             // base porosity and volume of cells
	x, y       []float64             // auxiliary: arguments of energy and water content
}

// add model to factory
func init() {
	allocators["permafrost"] = func(plist *inp.ParameterList) (Model, error) {
		return NewPermafrost(plist)
	}
}

// NewPermafrost returns a new model
//  sublists: "porosity parameters", "wrm parameters" and "liquid|ice|rock internal energy parameters"
//  internal energies default to cv = 76 J/(mol K) for liquid, cv = 37 J/(mol K) and L = -6007 J/mol
//  for ice and cv = 620 J/(kg K) for rock
func NewPermafrost(plist *inp.ParameterList) (o *Permafrost, err error) {
	o = new(Permafrost)
	if err = o.poro.Init(plist.Params("porosity parameters")); err != nil {
		return nil, errs.Wrap(errs.Config, "permafrost", err, "invalid porosity parameters")
	}
	if err = o.sat.Init(plist.Params("wrm parameters")); err != nil {
		return nil, errs.Wrap(errs.Config, "permafrost", err, "invalid wrm parameters")
	}
	for _, ie := range []struct {
		name string
		m    *energy.Linear
		def  dbf.Params
	}{
		{"liquid", &o.ul, nil},
		{"ice", &o.ui, dbf.Params{&dbf.P{N: "cv", V: 37}, &dbf.P{N: "L", V: -6007}}},
		{"rock", &o.ur, dbf.Params{&dbf.P{N: "cv", V: 620}}},
	} {
		key := ie.name + " internal energy parameters"
		prms := ie.def
		if plist.IsSublist(key) {
			prms = plist.Params(key)
		}
		if err = ie.m.Init(prms); err != nil {
			return nil, errs.Wrap(errs.Config, "permafrost", err, "invalid %s internal energy parameters", ie.name)
		}
	}
	o.nl = plist.Float("molar density liquid", 55500)
	o.ni = plist.Float("molar density ice", 50900)
	o.ρr = plist.Float("density rock", 2170)
	o.x = make([]float64, len(o.energy.Args()))
	o.y = make([]float64, len(o.water.Args()))
	return o, plist.Err()
}

// Refresh sets the cell properties
func (o *Permafrost) Refresh(basePorosity, volume []float64) {
	o.φ0 = append(o.φ0[:0], basePorosity...)
	o.vol = append(o.vol[:0], volume...)
}

// Conserved computes e and wc of cell c
func (o *Permafrost) Conserved(c int, T, p float64) (e, w float64) {
	o.args(c, T, p)
	return o.energy.Value(o.x), o.water.Value(o.y)
}

// Jacobian computes the derivatives of (e, wc) with respect to (T, p) by the chain rule
func (o *Permafrost) Jacobian(c int, T, p float64) (J [2][2]float64) {
	o.args(c, T, p)
	dφdp := o.poro.Partial(1, []float64{o.φ0[c], p})
	dslT, dsiT := o.sat.DerivsT(T, p)
	dslP, dsiP := o.sat.DerivsP(T, p)
	dul := o.ul.Partial(0, []float64{T})
	dui := o.ui.Partial(0, []float64{T})
	dur := o.ur.Partial(0, []float64{T})

	// energy: x = [φ, φ0, sl, nl, ul, si, ni, ui, ρr, ur, V]
	E := func(i int) float64 { return o.energy.Partial(i, o.x) }
	J[0][0] = E(2)*dslT + E(4)*dul + E(5)*dsiT + E(7)*dui + E(9)*dur
	J[0][1] = E(0)*dφdp + E(2)*dslP + E(5)*dsiP

	// water content: y = [φ, sl, nl, si, ni, V]
	W := func(i int) float64 { return o.water.Partial(i, o.y) }
	J[1][0] = W(1)*dslT + W(3)*dsiT
	J[1][1] = W(0)*dφdp + W(1)*dslP + W(3)*dsiP
	return
}

// args fills the arguments of the energy and water content closures
func (o *Permafrost) args(c int, T, p float64) {
	φ := o.poro.Value([]float64{o.φ0[c], p})
	sl, si := o.sat.Saturations(T, p)
	ul := o.ul.Value([]float64{T})
	ui := o.ui.Value([]float64{T})
	ur := o.ur.Value([]float64{T})
	o.x[0], o.x[1], o.x[2], o.x[3], o.x[4], o.x[5] = φ, o.φ0[c], sl, o.nl, ul, si
	o.x[6], o.x[7], o.x[8], o.x[9], o.x[10] = o.ni, ui, o.ρr, ur, o.vol[c]
	o.y[0], o.y[1], o.y[2], o.y[3], o.y[4], o.y[5] = φ, sl, o.nl, si, o.ni, o.vol[c]
}
