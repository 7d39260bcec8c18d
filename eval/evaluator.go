// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eval implements the dependency-tracked graph of field evaluators
package eval

import (
	"github.com/a-hamm/ats/state"
)

// Evaluator computes exactly one field (its key) from a fixed set of dependencies
type Evaluator interface {
	Key() string            // key of the computed field
	Dependencies() []string // keys of the fields this evaluator reads; empty for independent evaluators
}

// Independent defines evaluators whose data come from outside the graph
//  Update refreshes the field and reports whether its backing data changed
type Independent interface {
	Evaluator
	Update(g *Graph, result *state.Field) (changed bool, err error)
}

// Secondary defines evaluators computing a pure function of their dependencies
type Secondary interface {
	Evaluator
	Evaluate(g *Graph, result *state.Field) error                    // computes the field
	EvaluatePartial(g *Graph, wrt string, result *state.Field) error // computes ∂field/∂wrt; wrt is a dependency
}

// LayoutPropagator is implemented by evaluators whose dependencies need a layout other than their own
type LayoutPropagator interface {
	DependencyLayout(dep string, own state.Layout) state.Layout
}

// Setupper is implemented by evaluators that need to declare extra requirements; e.g. a mesh
type Setupper interface {
	Setup(g *Graph) error
}

// Base holds the key and dependencies of an evaluator
type Base struct {
	key  string   // primary key
	deps []string // dependencies
}

// NewBase returns a new Base
func NewBase(key string, deps ...string) Base {
	return Base{key: key, deps: deps}
}

// Key returns the primary key
func (o *Base) Key() string { return o.key }

// Dependencies returns the dependencies
func (o *Base) Dependencies() []string { return o.deps }

// IsDirect tells whether dep is a direct dependency
func (o *Base) IsDirect(dep string) bool {
	return index(o.deps, dep) >= 0
}

// index returns the position of s in list or -1
func index(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
