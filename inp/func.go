// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"github.com/a-hamm/ats/errs"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
)

// FuncData holds function definition
type FuncData struct {
	Name string      `yaml:"name" validate:"required"` // name of function. ex: zero, load, myfunction1, etc.
	Type string      `yaml:"type" validate:"required"` // type of function. ex: cte, rmp
	Prms dbf.Params  `yaml:"-"`                        // parameters
	Raw  []ParamData `yaml:"prms" validate:"dive"`     // parameters as read from file
}

// ParamData holds one parameter of a function
type ParamData struct {
	N string  `yaml:"n" validate:"required"` // name
	V float64 `yaml:"v"`                     // value
}

// FuncsData holds functions
type FuncsData []*FuncData

// params converts the raw parameters
func (o *FuncData) params() dbf.Params {
	if o.Prms == nil {
		for _, p := range o.Raw {
			o.Prms = append(o.Prms, &dbf.P{N: p.N, V: p.V})
		}
	}
	return o.Prms
}

// Get returns function by name
func (o FuncsData) Get(name string) (fcn dbf.T, err error) {
	if name == "zero" || name == "none" {
		return Constant(0), nil
	}
	for _, f := range o {
		if f.Name == name {
			fcn, err = NewFunction(f.Type, f.params())
			if err != nil {
				err = chk.Err("cannot get function named %q because of the following error:\n%v", name, err)
			}
			return
		}
	}
	err = chk.Err("cannot find function named %q\n", name)
	return
}

// NewFunction allocates a function of the dbf database
//  unknown types and invalid parameters are ConfigErrors
func NewFunction(kind string, prms dbf.Params) (fcn dbf.T, err error) {
	defer func() {
		if r := recover(); r != nil {
			fcn, err = nil, errs.Configf(kind, "cannot allocate function: %v", r)
		}
	}()
	return dbf.New(kind, prms), nil
}

// Constant returns the function f(t, x) = c
func Constant(c float64) dbf.T {
	return &dbf.Cte{C: c}
}

// Function reads a function of time and space from this list
//  "value" gives a constant; otherwise "function type" and "function parameters" are passed to dbf.New.
//  "function name" refers to one of funcs.
func (o *ParameterList) Function(funcs FuncsData) (fcn dbf.T, err error) {
	switch {
	case o.Has("value"):
		fcn = Constant(o.Float("value", 0))
	case o.Has("function name"):
		fcn, err = funcs.Get(o.String("function name", ""))
	case o.Has("function type"):
		fcn, err = NewFunction(o.String("function type", ""), o.Params("function parameters"))
	default:
		return nil, errs.Configf(o.name, "a value, function name or function type is required")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Config, o.name, err, "cannot allocate function")
	}
	return fcn, o.Err()
}

// String prints one function
func (o FuncData) String() string {
	return io.Sf("    {\"name\":%q, \"type\":%q, \"prms\":%v}", o.Name, o.Type, o.Raw)
}
