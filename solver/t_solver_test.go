// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"
	"testing"

	"github.com/a-hamm/ats/comm"
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/state"
	"github.com/a-hamm/ats/telemetry"
	"github.com/cpmech/gosl/chk"
)

func verbose() {
	chk.Verbose = true
}

// problem solves a_i u_i^p = b_i entry by entry; the preconditioner divides by d (or by the exact
// derivative if d is zero)
type problem struct {
	p, d     float64
	a, b     []float64
	jac      []float64
	positive bool // admissible iff all values are positive
	changes  int
}

func (o *problem) Residual(tOld, tNew float64, u, r *state.TreeVector) error {
	x := make([]float64, u.Len())
	u.Flatten(x)
	res := make([]float64, len(x))
	for i := range x {
		res[i] = o.a[i]*math.Pow(x[i], o.p) - o.b[i]
	}
	r.Scatter(res)
	return nil
}

func (o *problem) UpdatePreconditioner(t float64, u *state.TreeVector, h float64) error {
	x := make([]float64, u.Len())
	u.Flatten(x)
	o.jac = make([]float64, len(x))
	for i := range x {
		o.jac[i] = o.d
		if o.d == 0 {
			o.jac[i] = o.p * o.a[i] * math.Pow(x[i], o.p-1)
		}
	}
	return nil
}

func (o *problem) ApplyPreconditioner(r, pu *state.TreeVector) error {
	x := make([]float64, r.Len())
	r.Flatten(x)
	for i := range x {
		x[i] /= o.jac[i]
	}
	pu.Scatter(x)
	return nil
}

func (o *problem) ErrorNorm(u, du *state.TreeVector) float64 { return du.NormInf() }

func (o *problem) IsAdmissible(u *state.TreeVector) bool {
	if !o.positive {
		return true
	}
	x := make([]float64, u.Len())
	u.Flatten(x)
	for _, v := range x {
		if v <= 0 {
			return false
		}
	}
	return true
}

func (o *problem) ModifyCorrection(h float64, r, u, du *state.TreeVector) CorrectionResult {
	return NotModified
}

func (o *problem) ChangedSolution() { o.changes++ }

// solution returns a leaf with n cells filled with v
func solution(tst *testing.T, n int, v float64) *state.TreeVector {
	dz := make([]float64, n)
	for i := range dz {
		dz[i] = 1
	}
	m, err := mesh.NewColumn("domain", 1, dz, 1, 0)
	if err != nil {
		tst.Fatalf("NewColumn failed: %v\n", err)
	}
	s := state.New(m)
	s.Require("u", "test", state.CellLayout("domain"))
	if err = s.Setup(); err != nil {
		tst.Fatalf("Setup failed: %v\n", err)
	}
	f, _ := s.GetFieldData("u", state.Next)
	f.Fill(v)
	return state.NewLeaf("u", f)
}

func newSolver(tst *testing.T, yaml string) Solver {
	plist, err := inp.ParseParameterList("solver", []byte(yaml))
	if err != nil {
		tst.Fatalf("ParseParameterList failed: %v\n", err)
	}
	s, err := New(plist, telemetry.Nop(), comm.Serial{})
	if err != nil {
		tst.Fatalf("New failed: %v\n", err)
	}
	return s
}

func Test_newton01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton01. cubic roots")

	s := newSolver(tst, `
solver type: newton
nonlinear tolerance: 1.0e-12
`)
	p := &problem{p: 3, a: []float64{1, 1, 1}, b: []float64{8, 27, 1}}
	u := solution(tst, 3, 2.5)
	it, err := s.Solve(p, 0, 1, u)
	if err != nil {
		tst.Errorf("Solve failed: %v\n", err)
		return
	}
	x := make([]float64, 3)
	u.Flatten(x)
	chk.Array(tst, "u", 1e-12, x, []float64{2, 3, 1})
	if it > 12 {
		tst.Errorf("Newton iterations must converge quickly; it = %d\n", it)
		return
	}
	chk.Int(tst, "changes", p.changes, it)
}

func Test_anderson01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("anderson01. linear problem with a poor preconditioner")

	// plain iterations contract by 0.75 only
	plain := newSolver(tst, `
solver type: newton
nonlinear tolerance: 1.0e-8
limit iterations: 20
`)
	p := &problem{p: 1, d: 4, a: []float64{1, 2, 3}, b: []float64{1, 4, 9}}
	u := solution(tst, 3, 0)
	_, err := plain.Solve(p, 0, 1, u)
	if !errs.Is(err, errs.LocalConvergence) {
		tst.Errorf("plain iterations must fail to converge; got %v\n", err)
		return
	}

	// acceleration converges like a Krylov method
	acc := newSolver(tst, `
solver type: anderson
nonlinear tolerance: 1.0e-8
limit iterations: 20
max acceleration vectors: 5
`)
	u = solution(tst, 3, 0)
	it, err := acc.Solve(p, 0, 1, u)
	if err != nil {
		tst.Errorf("Solve failed: %v\n", err)
		return
	}
	x := make([]float64, 3)
	u.Flatten(x)
	chk.Array(tst, "u", 1e-7, x, []float64{1, 2, 3})
	if it > 8 {
		tst.Errorf("accelerated iterations must converge in a few iterations; it = %d\n", it)
		return
	}
}

func Test_newton02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton02. errors")

	// inadmissible iterate
	s := newSolver(tst, `{}`)
	p := &problem{p: 1, d: 1, a: []float64{1}, b: []float64{-1}, positive: true}
	u := solution(tst, 1, 1)
	_, err := s.Solve(p, 0, 1, u)
	if !errs.Is(err, errs.PhysicalBounds) {
		tst.Errorf("inadmissible iterate must be a PhysicalBoundsViolation; got %v\n", err)
		return
	}

	// divergence: u := u - (u² - 2)/0.1 blows up
	p = &problem{p: 2, d: 0.1, a: []float64{1}, b: []float64{2}}
	u = solution(tst, 1, 3)
	_, err = s.Solve(p, 0, 1, u)
	if !errs.Is(err, errs.LocalConvergence) {
		tst.Errorf("divergence must be a LocalConvergenceFailure; got %v\n", err)
		return
	}

	// unknown type
	plist := inp.NewParameterList("solver")
	plist.Set("solver type", "magic")
	if _, err = New(plist, telemetry.Nop(), nil); !errs.Is(err, errs.Config) {
		tst.Errorf("unknown solver type must be a ConfigError; got %v\n", err)
		return
	}
	chk.Strings(tst, "types", Types(), []string{"anderson", "newton"})
}
