// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eval

import (
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/state"
	"github.com/cpmech/gosl/fun/dbf"
)

// Primary implements the evaluator of a primary variable; i.e. an unknown written by a process kernel
//  The field changes whenever its values differ from the values seen in the previous update.
type Primary struct {
	Base
	snapshot *state.Field // values at the previous update
	forced   bool         // report a change on the next update regardless of values
}

// NewPrimary returns a new primary variable evaluator
func NewPrimary(key string) *Primary {
	return &Primary{Base: NewBase(key)}
}

// MarkChanged forces a change on the next update
func (o *Primary) MarkChanged() { o.forced = true }

// Update compares the current values with the snapshot
func (o *Primary) Update(g *Graph, result *state.Field) (changed bool, err error) {
	changed = o.forced || o.snapshot == nil || !result.Equal(o.snapshot)
	if changed {
		o.snapshot = result.Clone()
	}
	o.forced = false
	return
}

// Constant implements an independent field with the same value everywhere (per component)
type Constant struct {
	Base
	values map[string]float64 // value by component name; "" means all components
	done   bool               // values were written
}

// NewConstant returns a new constant evaluator
func NewConstant(key string, value float64) *Constant {
	return &Constant{Base: NewBase(key), values: map[string]float64{"": value}}
}

// SetComponentValue sets the value of one component
func (o *Constant) SetComponentValue(comp string, value float64) {
	o.values[comp] = value
	o.done = false
}

// Update writes the values once; later layout growth is also filled
func (o *Constant) Update(g *Graph, result *state.Field) (changed bool, err error) {
	if o.done {
		return
	}
	for _, c := range result.Layout.Comps {
		v, ok := o.values[c.Name]
		if !ok {
			v = o.values[""]
		}
		result.FillComp(c.Name, v)
	}
	o.done = true
	return true, nil
}

// Function implements an independent field given by f(t, x) where x is the centroid of each entity
//  The field is recomputed whenever the time of the tag changes.
type Function struct {
	Base
	fcn   dbf.T   // the function
	tLast float64 // time of last evaluation
	done  bool    // evaluated at least once
}

// NewFunction returns a new function evaluator
func NewFunction(key string, fcn dbf.T) *Function {
	return &Function{Base: NewBase(key), fcn: fcn}
}

// Update evaluates the function if the time changed
func (o *Function) Update(g *Graph, result *state.Field) (changed bool, err error) {
	t := g.S.Time(g.Tag)
	if o.done && t == o.tLast {
		return
	}
	for _, c := range result.Layout.Comps {
		n := result.Size(c.Name)
		for e := 0; e < n; e++ {
			x := centroid(result.Mesh, c.Kind, e)
			for i := 0; i < c.Width; i++ {
				result.Set(c.Name, e, i, o.fcn.F(t, x))
			}
		}
	}
	o.tLast, o.done = t, true
	return true, nil
}

// CellVolume implements the independent field of cell volumes taken from the mesh
type CellVolume struct {
	Base
	done bool
}

// NewCellVolume returns a new cell volume evaluator
func NewCellVolume(key string) *CellVolume {
	return &CellVolume{Base: NewBase(key)}
}

// Update copies the volumes once
func (o *CellVolume) Update(g *Graph, result *state.Field) (changed bool, err error) {
	if o.done {
		return
	}
	if !result.Has("cell") {
		return false, errs.Configf(o.Key(), "cell volume needs a cell component; layout is %v", result.Layout)
	}
	for c := 0; c < result.Size("cell"); c++ {
		result.Set("cell", c, 0, result.Mesh.CellVolume(c))
	}
	o.done = true
	return true, nil
}

// centroid returns the centroid of entity e of kind k
func centroid(m mesh.Mesh, k mesh.Kind, e int) []float64 {
	switch k {
	case mesh.Cell:
		return m.CellCentroid(e)
	case mesh.Face, mesh.Node:
		return m.FaceCentroid(e)
	case mesh.BoundaryFace:
		return m.FaceCentroid(m.BoundaryFaceToFace(e))
	}
	return nil
}

// factories of independent evaluators
func init() {
	Register("primary variable", func(key string, plist *inp.ParameterList) (Evaluator, error) {
		return NewPrimary(key), nil
	})
	Register("constant", func(key string, plist *inp.ParameterList) (Evaluator, error) {
		ev := NewConstant(key, plist.Float("value", 0))
		if plist.IsSublist("component values") {
			sub := plist.Sublist("component values")
			for _, comp := range sub.Keys() {
				ev.SetComponentValue(comp, sub.Float(comp, 0))
			}
		}
		return ev, plist.Err()
	})
	Register("function", func(key string, plist *inp.ParameterList) (Evaluator, error) {
		fcn, err := inp.NewFunction(plist.String("function type", "cte"), plist.Params("function parameters"))
		if err != nil {
			return nil, errs.Wrap(errs.Config, key, err, "cannot allocate function")
		}
		return NewFunction(key, fcn), plist.Err()
	})
	Register("cell volume", func(key string, plist *inp.ParameterList) (Evaluator, error) {
		return NewCellVolume(key), nil
	})
}
