// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package state implements the field store: named fields on mesh entities at several time tags
package state

import (
	"sort"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/mesh"
)

// Tag identifies a time level
type Tag string

const (
	Current Tag = "current" // last committed state (read-only for process kernels)
	Inter   Tag = "inter"   // basis of the next predictor; equal to current after a commit
	Next    Tag = "next"    // state under construction
)

// Tags holds all tags in the order they are allocated
var Tags = []Tag{Current, Inter, Next}

// record holds the data of one field key across all tags
type record struct {
	key         string         // field key
	owner       string         // name of the owner (PK or evaluator); may be empty
	layout      Layout         // merged requirements
	fields      map[Tag]*Field // allocated copies
	initialized bool           // initial values were set
}

// State holds all fields and scalars
type State struct {
	meshes    map[string]mesh.Mesh       // all meshes
	records   map[string]*record         // all field records
	scalars   map[Tag]map[string]float64 // scalars by tag
	times     map[Tag]float64            // time of each tag
	allocated bool                       // Setup was called
	Cycle     int                        // number of committed steps
}

// New returns a new State
func New(meshes ...mesh.Mesh) (o *State) {
	o = &State{
		meshes:  make(map[string]mesh.Mesh),
		records: make(map[string]*record),
		scalars: make(map[Tag]map[string]float64),
		times:   make(map[Tag]float64),
	}
	for _, tag := range Tags {
		o.scalars[tag] = make(map[string]float64)
	}
	for _, m := range meshes {
		o.meshes[m.Name()] = m
	}
	return
}

// AddMesh registers a mesh
func (o *State) AddMesh(m mesh.Mesh) {
	o.meshes[m.Name()] = m
}

// Mesh returns the mesh named name
func (o *State) Mesh(name string) (mesh.Mesh, error) {
	m, ok := o.meshes[name]
	if !ok {
		return nil, errs.Configf(name, "mesh %q does not exist", name)
	}
	return m, nil
}

// RequireField declares that key must exist and returns a builder to declare its layout
//  Note: calling RequireField many times with the same key is allowed
func (o *State) RequireField(key, owner string) *Builder {
	rec, ok := o.records[key]
	if !ok {
		rec = &record{key: key, fields: make(map[Tag]*Field)}
		o.records[key] = rec
	}
	b := &Builder{st: o, rec: rec}
	if owner != "" {
		if rec.owner != "" && rec.owner != owner {
			b.err = errs.Configf(key, "field is owned by %q and cannot be claimed by %q", rec.owner, owner)
		} else {
			rec.owner = owner
		}
	}
	return b
}

// Require merges layout into the requirements of key
func (o *State) Require(key, owner string, layout Layout) error {
	return o.RequireField(key, owner).Merge(layout).Err()
}

// Has tells whether key was required
func (o *State) Has(key string) bool {
	_, ok := o.records[key]
	return ok
}

// Owner returns the owner of key
func (o *State) Owner(key string) string {
	if rec, ok := o.records[key]; ok {
		return rec.owner
	}
	return ""
}

// Layout returns the merged layout of key
func (o *State) Layout(key string) (Layout, bool) {
	rec, ok := o.records[key]
	if !ok {
		return Layout{}, false
	}
	return rec.layout.Copy(), true
}

// Keys returns all field keys sorted
func (o *State) Keys() (keys []string) {
	for k := range o.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}

// Setup allocates all required fields at all tags
func (o *State) Setup() (err error) {
	for _, key := range o.Keys() {
		if err = o.allocate(o.records[key]); err != nil {
			return
		}
	}
	o.allocated = true
	return
}

// allocate allocates (or grows) the copies of one field
func (o *State) allocate(rec *record) error {
	if rec.layout.Mesh == "" {
		return errs.Configf(rec.key, "field was required without a mesh")
	}
	if len(rec.layout.Comps) == 0 {
		return errs.Configf(rec.key, "field was required without components")
	}
	m, err := o.Mesh(rec.layout.Mesh)
	if err != nil {
		return errs.Wrap(errs.Config, rec.key, err, "cannot allocate field")
	}
	for _, tag := range Tags {
		if f, ok := rec.fields[tag]; ok {
			f.grow(rec.layout)
			continue
		}
		rec.fields[tag] = newField(rec.key, rec.layout, m)
	}
	return nil
}

// GetFieldData returns the mutable copy of key at tag
func (o *State) GetFieldData(key string, tag Tag) (*Field, error) {
	rec, ok := o.records[key]
	if !ok {
		return nil, errs.Configf(key, "field does not exist")
	}
	f, ok := rec.fields[tag]
	if !ok {
		return nil, errs.Configf(key, "field has not been allocated at tag %q; State.Setup must be called first", tag)
	}
	return f, nil
}

// Read returns a read-only view of key at tag
func (o *State) Read(key string, tag Tag) (ReadView, error) {
	f, err := o.GetFieldData(key, tag)
	if err != nil {
		return ReadView{}, err
	}
	return ReadView{f}, nil
}

// SetInitialized marks key as initialized
func (o *State) SetInitialized(key string) {
	if rec, ok := o.records[key]; ok {
		rec.initialized = true
	}
}

// Initialized tells whether key was marked as initialized
func (o *State) Initialized(key string) bool {
	rec, ok := o.records[key]
	return ok && rec.initialized
}

// CheckInitialized returns an error if any of the keys was not initialized
func (o *State) CheckInitialized(keys ...string) error {
	for _, key := range keys {
		if !o.Initialized(key) {
			return errs.Configf(key, "field was never initialized")
		}
	}
	return nil
}

// CheckAllInitialized returns an error if any required field was not initialized
func (o *State) CheckAllInitialized() error {
	for _, key := range o.Keys() {
		if !o.records[key].initialized {
			if owner := o.records[key].owner; owner != "" {
				return errs.Configf(key, "field owned by %q was never initialized", owner)
			}
			return errs.Configf(key, "field has no evaluator and was never initialized")
		}
	}
	return nil
}

// Scalar returns the scalar named name at tag
func (o *State) Scalar(name string, tag Tag) (float64, error) {
	v, ok := o.scalars[tag][name]
	if !ok {
		return 0, errs.Configf(name, "scalar does not exist at tag %q", tag)
	}
	return v, nil
}

// SetScalar sets the scalar named name at tag
func (o *State) SetScalar(name string, tag Tag, v float64) {
	o.scalars[tag][name] = v
}

// SetScalarAll sets the scalar named name at all tags
func (o *State) SetScalarAll(name string, v float64) {
	for _, tag := range Tags {
		o.scalars[tag][name] = v
	}
}

// Time returns the time of tag
func (o *State) Time(tag Tag) float64 { return o.times[tag] }

// SetTime sets the time of tag
func (o *State) SetTime(tag Tag, t float64) { o.times[tag] = t }

// Assign copies all fields, scalars and the time of src into dst
func (o *State) Assign(dst, src Tag) {
	if dst == src {
		return
	}
	for _, rec := range o.records {
		d, okd := rec.fields[dst]
		s, oks := rec.fields[src]
		if okd && oks {
			d.CopyFrom(s)
		}
	}
	for name, v := range o.scalars[src] {
		o.scalars[dst][name] = v
	}
	o.times[dst] = o.times[src]
}

// Commit copies next into current and inter and increments the cycle
func (o *State) Commit() {
	o.CopyNext()
	o.Cycle++
}

// Restore copies inter back into next; e.g. after a rejected step
func (o *State) Restore() {
	o.Assign(Next, Inter)
}

// CopyNext copies next into current and inter; e.g. after initial conditions are set
func (o *State) CopyNext() {
	o.Assign(Current, Next)
	o.Assign(Inter, Next)
}

// Builder declares the layout of a required field
type Builder struct {
	st  *State  // the state
	rec *record // the field record
	err error   // first error
}

// SetMesh declares the mesh of the field
func (o *Builder) SetMesh(name string) *Builder {
	return o.Merge(Layout{Mesh: name})
}

// AddComponent declares one component
func (o *Builder) AddComponent(name string, kind mesh.Kind, width int) *Builder {
	return o.Merge(Layout{Comps: []Component{{name, kind, width}}})
}

// AddComponents declares many components
func (o *Builder) AddComponents(names []string, kinds []mesh.Kind, widths []int) *Builder {
	if len(names) != len(kinds) || len(names) != len(widths) {
		if o.err == nil {
			o.err = errs.Configf(o.rec.key, "AddComponents needs names, kinds and widths with the same length")
		}
		return o
	}
	for i, name := range names {
		o.AddComponent(name, kinds[i], widths[i])
	}
	return o
}

// Merge merges a layout into the requirements
func (o *Builder) Merge(layout Layout) *Builder {
	if o.err != nil {
		return o
	}
	grown, err := o.rec.layout.Merge(o.rec.key, layout)
	if err != nil {
		o.err = err
		return o
	}
	if grown && o.st.allocated && o.rec.layout.Mesh != "" && len(o.rec.layout.Comps) > 0 {
		o.err = o.st.allocate(o.rec)
	}
	return o
}

// Err returns the first error found while building
func (o *Builder) Err() error { return o.err }

// Layout returns the current merged layout
func (o *Builder) Layout() Layout { return o.rec.layout.Copy() }
