// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"strings"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/mesh"
	"github.com/cpmech/gosl/io"
)

// Component is a contiguous block of degrees of freedom attached to one kind of mesh entity
type Component struct {
	Name  string    // name of component; e.g. "cell", "boundary_face"
	Kind  mesh.Kind // kind of entity
	Width int       // number of degrees of freedom per entity
}

// String returns a short representation; e.g. cell(cell,1)
func (o Component) String() string {
	return io.Sf("%s(%v,%d)", o.Name, o.Kind, o.Width)
}

// Layout holds the mesh and components of a field
//  Note: layouts only grow; existing components are never changed
type Layout struct {
	Mesh  string      // name of mesh; empty means not yet declared
	Comps []Component // components in order of declaration
}

// NewLayout returns a layout with the given mesh and components
func NewLayout(meshName string, comps ...Component) Layout {
	return Layout{Mesh: meshName, Comps: comps}
}

// CellLayout returns a layout with a single cell component of width 1
func CellLayout(meshName string) Layout {
	return NewLayout(meshName, Component{"cell", mesh.Cell, 1})
}

// Find returns the component named name
func (o Layout) Find(name string) (c Component, found bool) {
	for _, c = range o.Comps {
		if c.Name == name {
			return c, true
		}
	}
	return
}

// Names returns the names of all components
func (o Layout) Names() (names []string) {
	names = make([]string, len(o.Comps))
	for i, c := range o.Comps {
		names[i] = c.Name
	}
	return
}

// Copy returns a copy of this layout
func (o Layout) Copy() Layout {
	return Layout{Mesh: o.Mesh, Comps: append([]Component{}, o.Comps...)}
}

// Equal tells whether both layouts have the same mesh and the same components in the same order
func (o Layout) Equal(other Layout) bool {
	if o.Mesh != other.Mesh || len(o.Comps) != len(other.Comps) {
		return false
	}
	for i, c := range o.Comps {
		if c != other.Comps[i] {
			return false
		}
	}
	return true
}

// String returns a representation used in messages
func (o Layout) String() string {
	s := make([]string, len(o.Comps))
	for i, c := range o.Comps {
		s[i] = c.String()
	}
	return io.Sf("%s{%s}", o.Mesh, strings.Join(s, ","))
}

// Merge adds the requirements in other to this layout (union)
//  Errors: different meshes or components with the same name but different kind or width
func (o *Layout) Merge(key string, other Layout) (grown bool, err error) {
	if other.Mesh != "" {
		if o.Mesh == "" {
			o.Mesh = other.Mesh
			grown = true
		} else if o.Mesh != other.Mesh {
			return false, errs.Configf(key, "incompatible layout requested: mesh %q differs from existing mesh %q", other.Mesh, o.Mesh)
		}
	}
	for _, c := range other.Comps {
		if c.Width < 1 {
			return false, errs.Configf(key, "component %q must have a positive width; got %d", c.Name, c.Width)
		}
		old, found := o.Find(c.Name)
		if !found {
			o.Comps = append(o.Comps, c)
			grown = true
			continue
		}
		if old != c {
			return false, errs.Configf(key, "incompatible layout requested: component %v conflicts with existing %v", c, old)
		}
	}
	return
}
