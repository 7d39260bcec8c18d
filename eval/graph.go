// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eval

import (
	"sort"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/state"
	"github.com/a-hamm/ats/telemetry"
	"github.com/rs/zerolog"
)

// token holds the change stamp of a computed quantity and what each requester has seen
type token struct {
	stamp    uint64            // incremented whenever the quantity is recomputed
	computed bool              // computed at least once
	count    int               // number of computations
	seen     map[string]uint64 // stamp last observed by each requester
}

// observe records that requester saw the current stamp and tells whether it is new to it
func (o *token) observe(requester string) bool {
	last, ok := o.seen[requester]
	o.seen[requester] = o.stamp
	return !ok || last != o.stamp
}

// bump records a recomputation
func (o *token) bump() {
	o.stamp++
	o.count++
	o.computed = true
}

// node holds an evaluator and its change state
type node struct {
	ev     Evaluator         // the evaluator
	value  token             // change state of the value
	derivs map[string]*token // change state of partial derivatives by wrt key
}

// Graph holds all evaluators working on one tag of a State
type Graph struct {
	S       *state.State       // the State
	Tag     state.Tag          // tag where fields are evaluated
	Log     zerolog.Logger     // logger
	Metrics *telemetry.Metrics // metrics; may be nil
	nodes   map[string]*node   // evaluators by key
}

// NewGraph returns a new Graph evaluating fields of s at tag
func NewGraph(s *state.State, tag state.Tag) *Graph {
	return &Graph{S: s, Tag: tag, Log: telemetry.Nop(), nodes: make(map[string]*node)}
}

// Add adds an evaluator; its key must not have another evaluator
func (o *Graph) Add(ev Evaluator) error {
	key := ev.Key()
	if _, ok := o.nodes[key]; ok {
		return errs.Configf(key, "field already has an evaluator")
	}
	o.nodes[key] = &node{ev: ev, value: newToken(), derivs: make(map[string]*token)}
	if s, ok := ev.(Setupper); ok {
		if err := s.Setup(o); err != nil {
			return err
		}
	}
	return nil
}

// Evaluator returns the evaluator of key
func (o *Graph) Evaluator(key string) (Evaluator, bool) {
	n, ok := o.nodes[key]
	if !ok {
		return nil, false
	}
	return n.ev, true
}

// Keys returns the keys of all evaluators sorted
func (o *Graph) Keys() (keys []string) {
	for k := range o.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}

// Require declares that key must exist with (at least) layout; requirements are merged
func (o *Graph) Require(key string, layout state.Layout) error {
	return o.S.Require(key, "", layout)
}

// RequireEvaluator declares key with layout and returns its evaluator; missing evaluators are ConfigErrors
func (o *Graph) RequireEvaluator(key string, layout state.Layout) (Evaluator, error) {
	n, ok := o.nodes[key]
	if !ok {
		return nil, errs.Configf(key, "no evaluator for field")
	}
	if err := o.Require(key, layout); err != nil {
		return nil, err
	}
	return n.ev, nil
}

// EnsureCompatibility propagates layout requirements from each evaluator to its dependencies
//  Each evaluator is processed once per pass; passes are repeated until no layout grows.
//  Self-dependencies, cycles and dependencies without an evaluator are ConfigErrors.
func (o *Graph) EnsureCompatibility() (err error) {
	for pass := 0; pass <= len(o.nodes); pass++ {
		grown := false
		visited := make(map[string]bool)
		onstack := make(map[string]bool)
		for _, key := range o.Keys() {
			g, err := o.visit(key, visited, onstack)
			if err != nil {
				return err
			}
			grown = grown || g
		}
		if !grown {
			return nil
		}
	}
	return nil
}

// visit processes key and its dependencies depth-first
func (o *Graph) visit(key string, visited, onstack map[string]bool) (grown bool, err error) {
	if visited[key] {
		return
	}
	n := o.nodes[key]
	onstack[key] = true
	own, required := o.S.Layout(key)
	for _, dep := range n.ev.Dependencies() {
		if dep == key {
			return false, errs.Configf(key, "Evaluator for key %q depends upon itself.", key)
		}
		if onstack[dep] {
			return false, errs.Configf(key, "cyclic dependency: %q depends on %q which depends on %q", key, dep, key)
		}
		if _, ok := o.nodes[dep]; !ok {
			return false, errs.Configf(dep, "no evaluator for field required by %q", key)
		}
		if required {
			layout := own
			if p, ok := n.ev.(LayoutPropagator); ok {
				layout = p.DependencyLayout(dep, own)
			}
			before, _ := o.S.Layout(dep)
			if err = o.Require(dep, layout); err != nil {
				return false, errs.Wrap(errs.Config, dep, err, "incompatible requirement from %q", key)
			}
			after, _ := o.S.Layout(dep)
			grown = grown || !before.Equal(after)
		}
		g, err := o.visit(dep, visited, onstack)
		if err != nil {
			return false, err
		}
		grown = grown || g
	}
	onstack[key] = false
	visited[key] = true
	return
}

// Field returns the field of key at the tag of this graph
func (o *Graph) Field(key string) (*state.Field, error) {
	return o.S.GetFieldData(key, o.Tag)
}

// HasChanged tells whether key changed since requester last asked; recomputes key if needed
func (o *Graph) HasChanged(key, requester string) (changed bool, err error) {
	n, ok := o.nodes[key]
	if !ok {
		return false, errs.Configf(key, "no evaluator for field required by %q", requester)
	}
	result, err := o.Field(key)
	if err != nil {
		return
	}
	switch ev := n.ev.(type) {
	case Independent:
		updated, err := ev.Update(o, result)
		if err != nil {
			return false, err
		}
		if updated || !n.value.computed {
			o.recomputed(key, &n.value)
		}
	case Secondary:
		update := !n.value.computed
		for _, dep := range ev.Dependencies() {
			ch, err := o.HasChanged(dep, key)
			if err != nil {
				return false, err
			}
			update = update || ch
		}
		if update {
			if err = ev.Evaluate(o, result); err != nil {
				return false, err
			}
			o.recomputed(key, &n.value)
		}
	default:
		return false, errs.Configf(key, "evaluator of type %T is neither independent nor secondary", ev)
	}
	return n.value.observe(requester), nil
}

// Update brings key up to date on behalf of requester and returns its field
func (o *Graph) Update(key, requester string) (*state.Field, error) {
	if _, err := o.HasChanged(key, requester); err != nil {
		return nil, err
	}
	return o.Field(key)
}

// UpdateAll brings every required field with an evaluator up to date on behalf of requester
//  Fields computed by secondary and independent evaluators are marked as initialized.
func (o *Graph) UpdateAll(requester string) error {
	for _, key := range o.Keys() {
		if !o.S.Has(key) {
			continue
		}
		if _, err := o.HasChanged(key, requester); err != nil {
			return err
		}
		if _, primary := o.nodes[key].ev.(*Primary); !primary {
			o.S.SetInitialized(key)
		}
	}
	return nil
}

// DerivKey returns the key of the field holding ∂key/∂wrt
func DerivKey(key, wrt string) string {
	return "d" + key + "_d" + wrt
}

// HasDerivativeChanged tells whether ∂key/∂wrt changed since requester last asked; recomputes it if needed
//  Only direct partial derivatives are available: wrt must be a dependency of key (or key itself for
//  independent evaluators). See Chain for total derivatives.
func (o *Graph) HasDerivativeChanged(key, requester, wrt string) (changed bool, err error) {
	n, ok := o.nodes[key]
	if !ok {
		return false, errs.Configf(key, "no evaluator for field required by %q", requester)
	}
	dkey := DerivKey(key, wrt)
	tok, ok := n.derivs[wrt]
	if !ok {
		if err = o.checkPartial(n, wrt); err != nil {
			return
		}
		layout, _ := o.S.Layout(key)
		if err = o.Require(dkey, layout); err != nil {
			return
		}
		tok = newTokenPtr()
		n.derivs[wrt] = tok
	}
	result, err := o.Field(dkey)
	if err != nil {
		return
	}
	switch ev := n.ev.(type) {
	case Independent:
		if !tok.computed {
			result.Fill(1)
			o.recomputed(dkey, tok)
		}
	case Secondary:
		update := !tok.computed
		for _, dep := range ev.Dependencies() {
			ch, err := o.HasChanged(dep, dkey)
			if err != nil {
				return false, err
			}
			update = update || ch
		}
		if update {
			if err = ev.EvaluatePartial(o, wrt, result); err != nil {
				return false, err
			}
			o.recomputed(dkey, tok)
		}
	}
	o.S.SetInitialized(dkey)
	return tok.observe(requester), nil
}

// Derivative brings ∂key/∂wrt up to date on behalf of requester and returns its field
func (o *Graph) Derivative(key, wrt, requester string) (*state.Field, error) {
	if _, err := o.HasDerivativeChanged(key, requester, wrt); err != nil {
		return nil, err
	}
	return o.Field(DerivKey(key, wrt))
}

// checkPartial returns a ConfigError if ∂key/∂wrt is not a direct partial derivative
func (o *Graph) checkPartial(n *node, wrt string) error {
	key := n.ev.Key()
	if _, ok := n.ev.(Independent); ok {
		if wrt != key {
			return errs.Configf(key, "independent field has no derivative with respect to %q", wrt)
		}
		return nil
	}
	if index(n.ev.Dependencies(), wrt) < 0 {
		return errs.Configf(key, "%q is not a direct dependency; only direct partial derivatives are available", wrt)
	}
	return nil
}

// IsDependency tells whether key depends (directly or not) on dep
func (o *Graph) IsDependency(key, dep string) bool {
	n, ok := o.nodes[key]
	if !ok {
		return false
	}
	for _, d := range n.ev.Dependencies() {
		if d == dep || o.IsDependency(d, dep) {
			return true
		}
	}
	return false
}

// Recomputes returns the number of times key (or a derivative key) was computed
func (o *Graph) Recomputes(key string) int {
	if n, ok := o.nodes[key]; ok {
		return n.value.count
	}
	for _, n := range o.nodes {
		for wrt, tok := range n.derivs {
			if DerivKey(n.ev.Key(), wrt) == key {
				return tok.count
			}
		}
	}
	return 0
}

// MarkChanged forces independent key to report a change on its next query
func (o *Graph) MarkChanged(key string) error {
	n, ok := o.nodes[key]
	if !ok {
		return errs.Configf(key, "no evaluator for field")
	}
	if m, ok := n.ev.(interface{ MarkChanged() }); ok {
		m.MarkChanged()
		return nil
	}
	return errs.Configf(key, "evaluator of type %T cannot be marked as changed", n.ev)
}

// recomputed bumps tok and records the event
func (o *Graph) recomputed(key string, tok *token) {
	tok.bump()
	o.Metrics.Recompute(key)
	o.Log.Debug().Str("key", key).Uint64("token", tok.stamp).Msg("recomputed")
}

func newToken() token {
	return token{seen: make(map[string]uint64)}
}

func newTokenPtr() *token {
	t := newToken()
	return &t
}
