// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inp implements the input data read from a (.yaml) simulation file
package inp

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/a-hamm/ats/errs"
	"github.com/cpmech/gosl/io"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Data holds global data for simulations
type Data struct {
	Desc     string `yaml:"desc"`     // description of simulation
	LogLevel string `yaml:"loglevel"` // level of structured logs: debug, info, warn or error
	ShowMsg  bool   `yaml:"showmsg"`  // show messages on the console
}

// MeshData holds the definition of one mesh
//  column: Ncol columns of cells with thicknesses Dz (top to bottom), horizontal Area and top
//  elevation Ztop. surface: one cell per entry of Areas.
type MeshData struct {
	Name  string    `yaml:"name" validate:"required"`                            // name of mesh; e.g. domain, surface
	Type  string    `yaml:"type" validate:"required,oneof=column surface"`       // type of mesh
	Ncol  int       `yaml:"ncol" validate:"gte=0"`                               // number of columns; 0 means 1
	Dz    []float64 `yaml:"dz" validate:"required_if=Type column,dive,gt=0"`     // thickness of cells in one column
	Area  float64   `yaml:"area" validate:"gte=0"`                               // horizontal area of columns; 0 means 1
	Ztop  float64   `yaml:"ztop"`                                                // elevation of the top of columns
	Areas []float64 `yaml:"areas" validate:"required_if=Type surface,dive,gt=0"` // area of surface cells
}

// TimeControl holds data for defining the simulation time stepping
type TimeControl struct {
	Tini     float64  `yaml:"tini"`                                        // initial time
	Tf       float64  `yaml:"tf" validate:"gtfield=Tini"`                  // final time
	DtMin    float64  `yaml:"dtmin" validate:"gte=0"`                      // steps below this size abort the run; 0 means 1e-10
	DtMax    float64  `yaml:"dtmax" validate:"gte=0"`                      // largest step size; 0 means no limit
	MaxFail  int      `yaml:"maxfail" validate:"gte=0"`                    // maximum number of consecutive failed attempts; 0 means 10
	MaxSteps int      `yaml:"maxsteps" validate:"gte=0"`                   // maximum number of accepted steps; 0 means no limit
	PKs      []string `yaml:"pks" validate:"required,min=1,dive,required"` // names of the top-level process kernels
}

// Simulation holds all simulation data
type Simulation struct {

	// input
	Data      Data        `yaml:"data"`                                  // global simulation data
	Functions FuncsData   `yaml:"functions" validate:"dive"`             // functions of time and space
	Meshes    []*MeshData `yaml:"meshes" validate:"required,min=1,dive"` // meshes
	Control   TimeControl `yaml:"control"`                               // time control

	// parameter lists
	PKs        *ParameterList `yaml:"-"` // parameters of process kernels by name
	Evaluators *ParameterList `yaml:"-"` // evaluators by key

	// derived
	Key string `yaml:"-"` // simulation key; e.g. mysim01.yaml => mysim01
}

// validate is shared by all simulations
var validate = validator.New()

// ReadSim reads all simulation data from a .yaml file
func ReadSim(simfilepath string) (o *Simulation, err error) {
	b, err := os.ReadFile(os.ExpandEnv(simfilepath))
	if err != nil {
		return nil, errs.Wrap(errs.Config, simfilepath, err, "cannot read simulation file")
	}
	if o, err = ParseSim(b); err != nil {
		return nil, err
	}
	o.Key = io.FnKey(filepath.Base(simfilepath))
	return
}

// ParseSim parses and validates YAML simulation data
//  The sections "PKs" and "evaluators" are read as parameter lists.
func ParseSim(data []byte) (o *Simulation, err error) {
	var doc yaml.Node
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.Config, "simulation", err, "cannot parse simulation file")
	}
	if len(doc.Content) == 0 {
		return nil, errs.Configf("simulation", "simulation file is empty")
	}
	root := doc.Content[0]
	o = new(Simulation)
	if err = root.Decode(o); err != nil {
		return nil, errs.Wrap(errs.Config, "simulation", err, "cannot decode simulation file")
	}
	o.PKs, o.Evaluators = NewParameterList("PKs"), NewParameterList("evaluators")
	for i := 0; i+1 < len(root.Content); i += 2 {
		switch root.Content[i].Value {
		case "PKs":
			err = o.PKs.fromNode(root.Content[i+1])
		case "evaluators":
			err = o.Evaluators.fromNode(root.Content[i+1])
		}
		if err != nil {
			return nil, err
		}
	}
	if err = o.Validate(); err != nil {
		return nil, err
	}
	o.SetDefault()
	return
}

// Validate checks the typed fields and the parameter lists of the top-level kernels
func (o *Simulation) Validate() error {
	if err := validate.Struct(o); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range verrs {
				msgs = append(msgs, io.Sf("%s fails %q", e.Namespace(), e.Tag()))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
		return errs.Configf("simulation", "invalid simulation data: %s", strings.Join(msgs, "; "))
	}
	names := make(map[string]bool)
	for _, m := range o.Meshes {
		if names[m.Name] {
			return errs.Configf(m.Name, "mesh is defined twice")
		}
		names[m.Name] = true
	}
	for _, name := range o.Control.PKs {
		if !o.PKs.IsSublist(name) {
			return errs.Configf(name, "PK in control.pks has no parameter list in \"PKs\"")
		}
	}
	return nil
}

// SetDefault sets the defaults of zero values
func (o *Simulation) SetDefault() {
	if o.Data.LogLevel == "" {
		o.Data.LogLevel = "info"
	}
	for _, m := range o.Meshes {
		if m.Ncol == 0 {
			m.Ncol = 1
		}
		if m.Area == 0 {
			m.Area = 1
		}
	}
	c := &o.Control
	if c.DtMin == 0 {
		c.DtMin = 1e-10
	}
	if c.MaxFail == 0 {
		c.MaxFail = 10
	}
}
