// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eval

import (
	"math"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/state"
)

// ColumnReduce implements a secondary evaluator reducing a cell field over each column
//  The result lives on a mesh with one cell per column (e.g. the surface); op is "max", "min" or "sum".
//  Sums are weighted by the cell volume if a volume key is given.
type ColumnReduce struct {
	Base
	op      string // reduction
	subMesh string // mesh of the dependency
	volume  string // key of cell volumes; may be empty
}

// NewColumnReduce returns a new column reduction of dep
func NewColumnReduce(key, dep, volume, op, subMesh string) (o *ColumnReduce, err error) {
	switch op {
	case "max", "min", "sum":
	default:
		return nil, errs.Configf(key, "column operation %q is not available; use max, min or sum", op)
	}
	deps := []string{dep}
	if volume != "" {
		deps = append(deps, volume)
	}
	return &ColumnReduce{Base: NewBase(key, deps...), op: op, subMesh: subMesh, volume: volume}, nil
}

// DependencyLayout returns the cell layout on the subsurface mesh
func (o *ColumnReduce) DependencyLayout(dep string, own state.Layout) state.Layout {
	return state.CellLayout(o.subMesh)
}

// Evaluate computes the reduction for every column
func (o *ColumnReduce) Evaluate(g *Graph, result *state.Field) error {
	f, err := g.Field(o.deps[0])
	if err != nil {
		return err
	}
	var vol *state.Field
	if o.volume != "" {
		if vol, err = g.Field(o.volume); err != nil {
			return err
		}
	}
	cols := f.Mesh.Columns()
	if len(cols) != result.Size("cell") {
		return errs.Configf(o.key, "result has %d cells but %q has %d columns", result.Size("cell"), o.deps[0], len(cols))
	}
	for j, col := range cols {
		var res float64
		switch o.op {
		case "max":
			res = math.Inf(-1)
		case "min":
			res = math.Inf(1)
		}
		for _, c := range col {
			v := f.Get("cell", c, 0)
			switch o.op {
			case "max":
				res = math.Max(res, v)
			case "min":
				res = math.Min(res, v)
			case "sum":
				if vol != nil {
					v *= vol.Get("cell", c, 0)
				}
				res += v
			}
		}
		result.Set("cell", j, 0, res)
	}
	return nil
}

// EvaluatePartial is not available for column reductions
func (o *ColumnReduce) EvaluatePartial(g *Graph, wrt string, result *state.Field) error {
	return errs.Configf(o.key, "column reductions have no pointwise partial derivatives")
}

func init() {
	Register("column reduction", func(key string, plist *inp.ParameterList) (Evaluator, error) {
		dep, err := plist.RequiredString("reduced key")
		if err != nil {
			return nil, err
		}
		ev, err := NewColumnReduce(key, dep, plist.String("cell volume key", ""), plist.String("column operation", "max"), plist.String("subsurface domain", "domain"))
		if err != nil {
			return nil, err
		}
		return ev, plist.Err()
	})
}
