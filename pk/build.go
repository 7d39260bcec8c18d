// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pk

import (
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/state"
)

// Build allocates the evaluators in evaluators (may be nil) and the process kernels named names,
// then sets up the State and initializes all kernels. On return, all tags hold the initial values.
//  Order: New → Setup → EnsureCompatibility → State.Setup → Initialize → UpdateAll → CheckAllInitialized → CopyNext
func Build(env *Env, evaluators *inp.ParameterList, names ...string) (pks []PK, err error) {
	if evaluators != nil {
		if err = env.G.AddFromList(evaluators); err != nil {
			return
		}
	}
	pks = make([]PK, len(names))
	for i, name := range names {
		if pks[i], err = New(name, env); err != nil {
			return nil, err
		}
	}
	for _, p := range pks {
		if err = p.Setup(); err != nil {
			return nil, err
		}
	}
	if err = env.G.EnsureCompatibility(); err != nil {
		return nil, err
	}
	s := env.G.S
	if err = s.Setup(); err != nil {
		return nil, err
	}
	for _, p := range pks {
		if err = p.Initialize(); err != nil {
			return nil, err
		}
	}
	if err = env.G.UpdateAll("initialization"); err != nil {
		return nil, err
	}
	if err = s.CheckAllInitialized(); err != nil {
		return nil, err
	}
	s.CopyNext()
	env.Log.Debug().Strs("PKs", names).Float64("time", s.Time(state.Next)).Msg("initialized")
	return
}
