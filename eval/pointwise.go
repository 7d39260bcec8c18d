// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eval

import (
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/state"
)

// Model defines pointwise closures f(x) with x holding the values of the dependencies at one entity
type Model interface {
	Args() []string                     // names of arguments; used as default dependency names
	Value(x []float64) float64          // computes f(x)
	Partial(i int, x []float64) float64 // computes ∂f/∂x[i]
}

// Pointwise implements a secondary evaluator applying a Model entity by entity
//  Entities never read values of neighbours; all dependencies must have the components of the result.
type Pointwise struct {
	Base
	Model Model     // the closure
	x     []float64 // auxiliary: values of dependencies at one entity
}

// NewPointwise returns a new pointwise evaluator; deps[i] is the field passed as argument i of model
func NewPointwise(key string, deps []string, model Model) (o *Pointwise, err error) {
	if len(deps) != len(model.Args()) {
		return nil, errs.Configf(key, "model needs %d dependencies; %d were given", len(model.Args()), len(deps))
	}
	o = &Pointwise{Base: NewBase(key, deps...), Model: model, x: make([]float64, len(deps))}
	return
}

// Evaluate computes the field
func (o *Pointwise) Evaluate(g *Graph, result *state.Field) error {
	return o.loop(g, result, func(x []float64) float64 {
		return o.Model.Value(x)
	})
}

// EvaluatePartial computes ∂field/∂wrt; arguments sharing the same field are summed
func (o *Pointwise) EvaluatePartial(g *Graph, wrt string, result *state.Field) error {
	var idx []int
	for i, d := range o.deps {
		if d == wrt {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return errs.Configf(o.key, "%q is not a dependency", wrt)
	}
	return o.loop(g, result, func(x []float64) (res float64) {
		for _, i := range idx {
			res += o.Model.Partial(i, x)
		}
		return
	})
}

// loop applies fcn to every degree of freedom of every component of result
func (o *Pointwise) loop(g *Graph, result *state.Field, fcn func(x []float64) float64) error {
	deps := make([]*state.Field, len(o.deps))
	for j, d := range o.deps {
		f, err := g.Field(d)
		if err != nil {
			return err
		}
		deps[j] = f
	}
	for _, c := range result.Layout.Comps {
		for j, f := range deps {
			if !f.Has(c.Name) {
				return errs.Configf(o.key, "dependency %q has no component %q", o.deps[j], c.Name)
			}
		}
		n := result.Size(c.Name)
		for e := 0; e < n; e++ {
			for i := 0; i < c.Width; i++ {
				for j, f := range deps {
					o.x[j] = f.Get(c.Name, e, i)
				}
				result.Set(c.Name, e, i, fcn(o.x))
			}
		}
	}
	return nil
}

// PointwiseFactory returns a factory of pointwise evaluators
//  The dependency for argument "arg" is read from "<arg> key" and defaults to arg on the domain of the key.
func PointwiseFactory(allocate func(plist *inp.ParameterList) (Model, error)) Factory {
	return func(key string, plist *inp.ParameterList) (Evaluator, error) {
		model, err := allocate(plist)
		if err != nil {
			return nil, errs.Wrap(errs.Config, key, err, "cannot allocate model")
		}
		domain := inp.Domain(key)
		args := model.Args()
		deps := make([]string, len(args))
		for i, arg := range args {
			deps[i] = plist.ReadKey(domain, arg, arg)
		}
		if err = plist.Err(); err != nil {
			return nil, err
		}
		return NewPointwise(key, deps, model)
	}
}
