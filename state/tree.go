// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// TreeVector is a tree-shaped aggregate of fields used as the solution of a process kernel
//  Leaves alias fields (or standalone copies); nodes concatenate their children.
type TreeVector struct {
	Name  string        // name; e.g. name of the process kernel
	field *Field        // leaf data; nil for nodes
	comps []string      // components of field included in this leaf
	subs  []*TreeVector // children of a node
}

// NewLeaf returns a leaf aliasing field f; all components are used if none are given
func NewLeaf(name string, f *Field, comps ...string) *TreeVector {
	if len(comps) == 0 {
		comps = f.Layout.Names()
	}
	for _, c := range comps {
		if !f.Has(c) {
			chk.Panic("cannot create leaf %q: field %q has no component %q", name, f.Key, c)
		}
	}
	return &TreeVector{Name: name, field: f, comps: comps}
}

// NewNode returns a node concatenating subs
func NewNode(name string, subs ...*TreeVector) *TreeVector {
	return &TreeVector{Name: name, subs: subs}
}

// IsLeaf tells whether this vector holds data directly
func (o *TreeVector) IsLeaf() bool { return o.field != nil }

// Field returns the field of a leaf; nil for nodes
func (o *TreeVector) Field() *Field { return o.field }

// Comps returns the components of a leaf
func (o *TreeVector) Comps() []string { return o.comps }

// Subs returns the children of a node
func (o *TreeVector) Subs() []*TreeVector { return o.subs }

// SubVector returns the descendant (or self) named name; nil if not found
func (o *TreeVector) SubVector(name string) *TreeVector {
	if o.Name == name {
		return o
	}
	for _, s := range o.subs {
		if r := s.SubVector(name); r != nil {
			return r
		}
	}
	return nil
}

// Leaves returns all leaves in order
func (o *TreeVector) Leaves() (leaves []*TreeVector) {
	if o.IsLeaf() {
		return []*TreeVector{o}
	}
	for _, s := range o.subs {
		leaves = append(leaves, s.Leaves()...)
	}
	return
}

// Clone returns a deep copy with standalone storage
func (o *TreeVector) Clone() *TreeVector {
	if o.IsLeaf() {
		return &TreeVector{Name: o.Name, field: o.field.Clone(), comps: o.comps}
	}
	subs := make([]*TreeVector, len(o.subs))
	for i, s := range o.subs {
		subs[i] = s.Clone()
	}
	return &TreeVector{Name: o.Name, subs: subs}
}

// Len returns the total number of degrees of freedom
func (o *TreeVector) Len() (n int) {
	o.each(func(v []float64) { n += len(v) })
	return
}

// each calls fcn with the data of every component of every leaf in order
func (o *TreeVector) each(fcn func(v []float64)) {
	if o.IsLeaf() {
		for _, c := range o.comps {
			fcn(o.field.Comp(c))
		}
		return
	}
	for _, s := range o.subs {
		s.each(fcn)
	}
}

// each2 calls fcn with matching data of o and x; both must have the same structure
func (o *TreeVector) each2(x *TreeVector, fcn func(a, b []float64)) {
	if o.IsLeaf() {
		if !x.IsLeaf() || len(x.comps) != len(o.comps) {
			chk.Panic("tree vectors %q and %q are not compatible", o.Name, x.Name)
		}
		for i, c := range o.comps {
			fcn(o.field.Comp(c), x.field.Comp(x.comps[i]))
		}
		return
	}
	if len(x.subs) != len(o.subs) {
		chk.Panic("tree vectors %q and %q are not compatible", o.Name, x.Name)
	}
	for i, s := range o.subs {
		s.each2(x.subs[i], fcn)
	}
}

// CopyFrom copies all values from x
func (o *TreeVector) CopyFrom(x *TreeVector) {
	o.each2(x, func(a, b []float64) { copy(a, b) })
}

// PutScalar sets all values to v
func (o *TreeVector) PutScalar(v float64) {
	o.each(func(a []float64) {
		for i := range a {
			a[i] = v
		}
	})
}

// Scale multiplies all values by α
func (o *TreeVector) Scale(α float64) {
	o.each(func(a []float64) {
		for i := range a {
			a[i] *= α
		}
	})
}

// Update computes o := α⋅x + β⋅o
func (o *TreeVector) Update(α float64, x *TreeVector, β float64) {
	o.each2(x, func(a, b []float64) {
		for i := range a {
			a[i] = α*b[i] + β*a[i]
		}
	})
}

// Dot returns the (local) inner product with x
func (o *TreeVector) Dot(x *TreeVector) (res float64) {
	o.each2(x, func(a, b []float64) {
		for i := range a {
			res += a[i] * b[i]
		}
	})
	return
}

// Norm2 returns the (local) Euclidean norm
func (o *TreeVector) Norm2() float64 {
	return math.Sqrt(o.Dot(o))
}

// NormInf returns the (local) largest absolute value
func (o *TreeVector) NormInf() (res float64) {
	o.each(func(a []float64) {
		for _, v := range a {
			res = math.Max(res, math.Abs(v))
		}
	})
	return
}

// Flatten copies all values into dst in tree order; dst must have length Len()
func (o *TreeVector) Flatten(dst []float64) {
	k := 0
	o.each(func(a []float64) {
		k += copy(dst[k:], a)
	})
}

// Scatter copies values from src (in tree order) into this tree
func (o *TreeVector) Scatter(src []float64) {
	k := 0
	o.each(func(a []float64) {
		k += copy(a, src[k:])
	})
}

// Offset returns the position of the first value of the descendant named name in flat order
func (o *TreeVector) Offset(name string) (offset int, found bool) {
	if o.Name == name {
		return 0, true
	}
	for _, s := range o.subs {
		if off, ok := s.Offset(name); ok {
			return offset + off, true
		}
		offset += s.Len()
	}
	return 0, false
}
