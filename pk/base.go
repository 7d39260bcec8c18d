// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pk

import (
	"math"

	"github.com/a-hamm/ats/comm"
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/state"
	"github.com/a-hamm/ats/telemetry"
	"github.com/rs/zerolog"
)

// Base holds the data shared by all process kernels
//  Physical kernels embed Base and add their own equations.
type Base struct {
	name     string             // name of this kernel
	cycle    Lifecycle          // order of calls
	Plist    *inp.ParameterList // parameters of this kernel
	Env      *Env               // shared environment
	G        *eval.Graph        // evaluators at the next tag
	S        *state.State       // field store
	Comm     comm.Comm          // communicator
	Log      zerolog.Logger     // logger of this kernel
	Metrics  *telemetry.Metrics // metrics; may be nil
	Domain   string             // name of the mesh; e.g. "domain" or "surface"
	dt       float64            // step size
	solution *state.TreeVector  // primary unknowns; set by Setup of the kernel
}

// NewBase returns the common data of a kernel named name
//  "domain name" gives the mesh (default "domain"); "initial time step" gives the first dt (default 1);
//  "verbose object: verbosity level" sets the level of the logger of this kernel
func NewBase(name string, plist *inp.ParameterList, env *Env) Base {
	if plist == nil {
		plist = inp.NewParameterList(name)
	}
	c := env.Comm
	if c == nil {
		c = comm.Serial{}
	}
	log := telemetry.Component(env.Log, name)
	if plist.IsSublist("verbose object") {
		log = log.Level(telemetry.ParseLevel(plist.Sublist("verbose object").String("verbosity level", "medium")))
	}
	return Base{
		name:    name,
		cycle:   NewLifecycle(name),
		Plist:   plist,
		Env:     env,
		G:       env.G,
		S:       env.G.S,
		Comm:    c,
		Log:     log,
		Metrics: env.Metrics,
		Domain:  plist.String("domain name", "domain"),
		dt:      plist.Float("initial time step", 1),
	}
}

// Name returns the name of this kernel
func (o *Base) Name() string { return o.name }

// Lifecycle returns the lifecycle of this kernel
func (o *Base) Lifecycle() *Lifecycle { return &o.cycle }

// GetDt returns the step size
func (o *Base) GetDt() float64 { return o.dt }

// SetDt sets the step size
func (o *Base) SetDt(dt float64) { o.dt = dt }

// Solution returns the primary unknowns
func (o *Base) Solution() *state.TreeVector { return o.solution }

// SetSolution sets the primary unknowns
func (o *Base) SetSolution(u *state.TreeVector) { o.solution = u }

// Key returns the name of a field of this kernel read from "<name> key" with the domain prefix
func (o *Base) Key(name string) string {
	return o.Plist.ReadKey(o.Domain, name, name)
}

// RequirePrimary declares key as a primary variable owned by this kernel
//  A primary evaluator is added unless key already has an evaluator.
func (o *Base) RequirePrimary(key string, layout state.Layout) error {
	if _, ok := o.G.Evaluator(key); !ok {
		if err := o.G.Add(eval.NewPrimary(key)); err != nil {
			return err
		}
	}
	return o.S.Require(key, o.name, layout)
}

// Mesh returns the name of the mesh of this kernel
func (o *Base) Mesh() string { return o.Domain }

// GetMesh returns the mesh of this kernel
func (o *Base) GetMesh() (mesh.Mesh, error) {
	return o.S.Mesh(o.Domain)
}

// Next returns the field key at the next tag
func (o *Base) Next(key string) (*state.Field, error) {
	return o.S.GetFieldData(key, state.Next)
}

// Inter returns a read-only view of key at the intermediate tag
func (o *Base) Inter(key string) (state.ReadView, error) {
	return o.S.Read(key, state.Inter)
}

// Commit copies the next tag into current and inter
//  Copying is idempotent; couplers may commit each child.
func (o *Base) Commit() {
	o.S.CopyNext()
}

// InitialCondition sets field f from the sublist "initial condition" of this kernel
//  The condition is a function of time and centroid evaluated at the time of the next tag.
func (o *Base) InitialCondition(key string, f *state.Field) (err error) {
	if !o.Plist.IsSublist("initial condition") {
		return errs.Configf(key, "PK %q has no initial condition", o.name)
	}
	fcn, err := o.Plist.Sublist("initial condition").Function(o.Env.Funcs)
	if err != nil {
		return
	}
	t := o.S.Time(state.Next)
	for _, c := range f.Layout.Comps {
		for e := 0; e < f.Size(c.Name); e++ {
			x := Centroid(f.Mesh, c.Kind, e)
			for i := 0; i < c.Width; i++ {
				f.Set(c.Name, e, i, fcn.F(t, x))
			}
		}
	}
	o.S.SetInitialized(key)
	return
}

// Centroid returns the centroid of entity e of kind k
func Centroid(m mesh.Mesh, k mesh.Kind, e int) []float64 {
	switch k {
	case mesh.Cell:
		return m.CellCentroid(e)
	case mesh.BoundaryFace:
		return m.FaceCentroid(m.BoundaryFaceToFace(e))
	}
	return m.FaceCentroid(e)
}

// GlobalMinMax returns the minimum and maximum of the given components of f over all ranks
func (o *Base) GlobalMinMax(f *state.Field, comps ...string) (vmin, vmax float64) {
	vmin, vmax = f.MinMax(comps...)
	return o.Comm.AllReduceMin(vmin), o.Comm.AllReduceMax(vmax)
}

// ScaledNorm returns max |du| / (atol + rtol |u|) over all leaves and ranks
//  NaN values give +Inf.
func (o *Base) ScaledNorm(u, du *state.TreeVector, atol, rtol float64) float64 {
	n := u.Len()
	uu, dd := make([]float64, n), make([]float64, n)
	u.Flatten(uu)
	du.Flatten(dd)
	var res float64
	for i := 0; i < n; i++ {
		v := math.Abs(dd[i]) / (atol + rtol*math.Abs(uu[i]))
		if math.IsNaN(v) {
			v = math.Inf(1)
		}
		res = math.Max(res, v)
	}
	return o.Comm.AllReduceMax(res)
}

// CellFaceLayout returns the layout of primary variables: one value per cell and per boundary face
func CellFaceLayout(meshName string) state.Layout {
	return state.NewLayout(meshName,
		state.Component{Name: "cell", Kind: mesh.Cell, Width: 1},
		state.Component{Name: "boundary_face", Kind: mesh.BoundaryFace, Width: 1})
}
