// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"math"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/mesh"
	"github.com/cpmech/gosl/la"
)

// Field holds the values of a field at one time tag
//  Note: values of entity e and degree of freedom i are at data[comp][e*width+i]
type Field struct {
	Key    string               // field key
	Layout Layout               // layout at the time of allocation
	Mesh   mesh.Mesh            // mesh where the field lives
	data   map[string]la.Vector // [ncomps] values
}

// newField allocates a field with zero values
func newField(key string, layout Layout, m mesh.Mesh) (o *Field) {
	o = &Field{Key: key, Mesh: m, data: make(map[string]la.Vector)}
	o.grow(layout)
	return
}

// grow allocates components not yet present in this field
func (o *Field) grow(layout Layout) {
	o.Layout = layout.Copy()
	for _, c := range layout.Comps {
		if _, ok := o.data[c.Name]; !ok {
			o.data[c.Name] = la.NewVector(o.Mesh.NumEntities(c.Kind) * c.Width)
		}
	}
}

// Has tells whether the field has component comp
func (o *Field) Has(comp string) bool {
	_, ok := o.data[comp]
	return ok
}

// Comp returns the (mutable) values of component comp; nil if not present
func (o *Field) Comp(comp string) la.Vector {
	return o.data[comp]
}

// Width returns the number of degrees of freedom per entity of component comp
func (o *Field) Width(comp string) int {
	c, _ := o.Layout.Find(comp)
	return c.Width
}

// Size returns the number of entities of component comp
func (o *Field) Size(comp string) int {
	c, found := o.Layout.Find(comp)
	if !found {
		return 0
	}
	return o.Mesh.NumEntities(c.Kind)
}

// Get returns the value of degree of freedom i of entity e in component comp
func (o *Field) Get(comp string, e, i int) float64 {
	return o.data[comp][e*o.Width(comp)+i]
}

// Set sets the value of degree of freedom i of entity e in component comp
func (o *Field) Set(comp string, e, i int, v float64) {
	o.data[comp][e*o.Width(comp)+i] = v
}

// Fill sets all values of all components to v
func (o *Field) Fill(v float64) {
	for _, c := range o.Layout.Comps {
		o.data[c.Name].Fill(v)
	}
}

// FillComp sets all values of component comp to v
func (o *Field) FillComp(comp string, v float64) {
	if d, ok := o.data[comp]; ok {
		d.Fill(v)
	}
}

// CopyFrom copies the values of the components present in both fields
func (o *Field) CopyFrom(src *Field) {
	for name, d := range o.data {
		if s, ok := src.data[name]; ok {
			copy(d, s)
		}
	}
}

// Clone returns a standalone copy of this field (not owned by any State)
func (o *Field) Clone() (c *Field) {
	c = &Field{Key: o.Key, Layout: o.Layout.Copy(), Mesh: o.Mesh, data: make(map[string]la.Vector)}
	for name, d := range o.data {
		c.data[name] = d.GetCopy()
	}
	return
}

// Equal tells whether all values are identical to the values in other
func (o *Field) Equal(other *Field) bool {
	for name, d := range o.data {
		s, ok := other.data[name]
		if !ok || len(s) != len(d) {
			return false
		}
		for i := range d {
			if d[i] != s[i] && !(math.IsNaN(d[i]) && math.IsNaN(s[i])) {
				return false
			}
		}
	}
	return true
}

// MinMax returns the smallest and largest values among the given components (all if none given)
func (o *Field) MinMax(comps ...string) (vmin, vmax float64) {
	vmin, vmax = math.Inf(1), math.Inf(-1)
	if len(comps) == 0 {
		comps = o.Layout.Names()
	}
	for _, name := range comps {
		for _, v := range o.data[name] {
			vmin = math.Min(vmin, v)
			vmax = math.Max(vmax, v)
		}
	}
	return
}

// Check returns a PhysicalBoundsViolation if any value is not finite
func (o *Field) Check() error {
	for _, c := range o.Layout.Comps {
		for i, v := range o.data[c.Name] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errs.Boundsf(o.Key, "non-finite value %v in component %q at index %d", v, c.Name, i)
			}
		}
	}
	return nil
}

// ReadView is a read-only view of a field; e.g. of the current (committed) copy
type ReadView struct {
	f *Field
}

// Key returns the key of the viewed field
func (o ReadView) Key() string { return o.f.Key }

// Layout returns the layout of the viewed field
func (o ReadView) Layout() Layout { return o.f.Layout.Copy() }

// Mesh returns the mesh of the viewed field
func (o ReadView) Mesh() mesh.Mesh { return o.f.Mesh }

// Has tells whether the field has component comp
func (o ReadView) Has(comp string) bool { return o.f.Has(comp) }

// Size returns the number of entities of component comp
func (o ReadView) Size(comp string) int { return o.f.Size(comp) }

// Get returns the value of degree of freedom i of entity e in component comp
func (o ReadView) Get(comp string, e, i int) float64 { return o.f.Get(comp, e, i) }

// MinMax returns the extreme values among the given components
func (o ReadView) MinMax(comps ...string) (float64, float64) { return o.f.MinMax(comps...) }

// Clone returns a mutable standalone copy of the viewed values
func (o ReadView) Clone() *Field { return o.f.Clone() }
