// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eval

import (
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/state"
)

// Chain computes the total derivative dkey/dwrt by the chain rule over direct partial derivatives
//  The result is a new field with the layout of key. It is zero if key does not depend on wrt.
//  All fields along the paths from key to wrt must share the components of key.
func (o *Graph) Chain(key, wrt, requester string) (res *state.Field, err error) {
	f, err := o.Update(key, requester)
	if err != nil {
		return
	}
	res = f.Clone()
	if key == wrt {
		res.Fill(1)
		return
	}
	res.Fill(0)
	n := o.nodes[key]
	if _, ok := n.ev.(Secondary); !ok {
		return
	}
	done := make(map[string]bool)
	for _, dep := range n.ev.Dependencies() {
		if done[dep] || (dep != wrt && !o.IsDependency(dep, wrt)) {
			continue
		}
		done[dep] = true
		partial, err := o.Derivative(key, dep, requester)
		if err != nil {
			return nil, err
		}
		inner, err := o.Chain(dep, wrt, requester)
		if err != nil {
			return nil, err
		}
		for _, c := range res.Layout.Comps {
			if !inner.Has(c.Name) {
				return nil, errs.Configf(key, "cannot apply chain rule through %q: component %q is missing", dep, c.Name)
			}
			for e := 0; e < res.Size(c.Name); e++ {
				for i := 0; i < c.Width; i++ {
					v := res.Get(c.Name, e, i) + partial.Get(c.Name, e, i)*inner.Get(c.Name, e, i)
					res.Set(c.Name, e, i, v)
				}
			}
		}
	}
	return
}
