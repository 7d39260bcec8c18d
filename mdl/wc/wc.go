// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wc implements models for the water content [mol] of porous media
package wc

import (
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/cpmech/gosl/chk"
)

// LiquidIce implements the water content of a porous medium with liquid water and ice
//  WC = φ (sl nl + si ni) V
type LiquidIce struct{}

// Richards implements the water content of a porous medium with liquid water only
//  WC = φ sl nl V
type Richards struct{}

// allocators holds all available models
var allocators = map[string]func() eval.Model{
	"liquid ice water content": func() eval.Model { return new(LiquidIce) },
	"richards water content":   func() eval.Model { return new(Richards) },
}

// New returns a new water content model
func New(name string) (model eval.Model, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("model %q is not available in 'wc' database", name)
	}
	return allocator(), nil
}

// add models to factory
func init() {
	for name, allocator := range allocators {
		eval.Register(name, eval.PointwiseFactory(func(plist *inp.ParameterList) (eval.Model, error) {
			return allocator(), nil
		}))
	}
}

// Args returns the names of arguments
func (o LiquidIce) Args() []string {
	return []string{"porosity", "saturation_liquid", "molar_density_liquid", "saturation_ice", "molar_density_ice", "cell_volume"}
}

// Value computes WC
func (o LiquidIce) Value(x []float64) float64 {
	φ, sl, nl, si, ni, V := x[0], x[1], x[2], x[3], x[4], x[5]
	return φ * (sl*nl + si*ni) * V
}

// Partial computes ∂WC/∂x[i]
func (o LiquidIce) Partial(i int, x []float64) float64 {
	φ, sl, nl, si, ni, V := x[0], x[1], x[2], x[3], x[4], x[5]
	switch i {
	case 0:
		return (sl*nl + si*ni) * V
	case 1:
		return φ * nl * V
	case 2:
		return φ * sl * V
	case 3:
		return φ * ni * V
	case 4:
		return φ * si * V
	}
	return φ * (sl*nl + si*ni)
}

// Args returns the names of arguments
func (o Richards) Args() []string {
	return []string{"porosity", "saturation_liquid", "molar_density_liquid", "cell_volume"}
}

// Value computes WC
func (o Richards) Value(x []float64) float64 {
	return x[0] * x[1] * x[2] * x[3]
}

// Partial computes ∂WC/∂x[i]
func (o Richards) Partial(i int, x []float64) (res float64) {
	res = 1
	for j := range x {
		if j != i {
			res *= x[j]
		}
	}
	return
}
