// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eval

import (
	"sort"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/cpmech/gosl/chk"
)

// Factory allocates a fresh evaluator of key configured by plist
type Factory func(key string, plist *inp.ParameterList) (Evaluator, error)

// allocators holds all available evaluator types
var allocators = map[string]Factory{}

// Register adds an evaluator type; registering the same name twice is a programming error
func Register(kind string, factory Factory) {
	if _, ok := allocators[kind]; ok {
		chk.Panic("evaluator type %q is already registered", kind)
	}
	allocators[kind] = factory
}

// New allocates an evaluator of key with the type given by "evaluator type" in plist
func New(key string, plist *inp.ParameterList) (Evaluator, error) {
	kind, err := plist.RequiredString("evaluator type")
	if err != nil {
		return nil, errs.Wrap(errs.Config, key, err, "cannot allocate evaluator")
	}
	factory, ok := allocators[kind]
	if !ok {
		return nil, errs.Configf(key, "evaluator type %q is not available in 'eval' database", kind)
	}
	return factory(key, plist)
}

// Types returns the names of all registered evaluator types
func Types() (names []string) {
	for k := range allocators {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}

// AddFromList allocates and adds one evaluator per sublist of plist; sublist names are the keys
func (o *Graph) AddFromList(plist *inp.ParameterList) error {
	for _, key := range plist.Keys() {
		if !plist.IsSublist(key) {
			continue
		}
		ev, err := New(key, plist.Sublist(key))
		if err != nil {
			return err
		}
		if err = o.Add(ev); err != nil {
			return err
		}
	}
	return nil
}
