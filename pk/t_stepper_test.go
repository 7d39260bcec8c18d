// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pk

import (
	"math"
	"testing"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/state"
	"github.com/cpmech/gosl/chk"
)

// decay implements du/dt = -λ u^p on cells
type decay struct {
	Base
	stepper *Stepper
	rate    float64 // λ
	power   float64 // p
	umin    float64 // admissible values are above umin
	key     string
	jac     []float64
}

func newDecay(name string, plist *inp.ParameterList, env *Env) (PK, error) {
	o := &decay{Base: NewBase(name, plist, env)}
	o.rate = plist.Float("decay rate", 1)
	o.power = plist.Float("power", 1)
	o.umin = plist.Float("min value", -1e10)
	o.key = o.Key("u")
	var err error
	if o.stepper, err = NewStepper(plist, env, o.Log); err != nil {
		return nil, err
	}
	o.SetDt(o.stepper.Dt)
	return o, plist.Err()
}

func (o *decay) Setup() error {
	if err := o.Lifecycle().To(SetUp); err != nil {
		return err
	}
	return o.RequirePrimary(o.key, state.CellLayout(o.Domain))
}

func (o *decay) Initialize() (err error) {
	if err = o.Lifecycle().To(Initialized); err != nil {
		return
	}
	u, err := o.Next(o.key)
	if err != nil {
		return
	}
	if err = o.InitialCondition(o.key, u); err != nil {
		return
	}
	o.SetSolution(state.NewLeaf(o.Name(), u))
	o.jac = make([]float64, u.Size("cell"))
	return
}

func (o *decay) GetDt() float64 { return o.stepper.Dt }

func (o *decay) AdvanceStep(tOld, tNew float64, reinit bool) (failed bool, err error) {
	if err = Transition(Predicting, o); err != nil {
		return
	}
	return o.stepper.Advance(o, tOld, tNew)
}

func (o *decay) CommitStep(tOld, tNew float64) error {
	if err := Transition(Committing, o); err != nil {
		return err
	}
	o.stepper.Commit(tNew - tOld)
	o.Commit()
	return nil
}

func (o *decay) ChangedSolution() { o.G.MarkChanged(o.key) }

func (o *decay) Residual(tOld, tNew float64, u, r *state.TreeVector) error {
	old, err := o.Inter(o.key)
	if err != nil {
		return err
	}
	h := tNew - tOld
	uc, rc := u.Field().Comp("cell"), r.Field().Comp("cell")
	for i := range uc {
		rc[i] = (uc[i]-old.Get("cell", i, 0))/h + o.rate*math.Pow(uc[i], o.power)
	}
	return nil
}

func (o *decay) UpdatePreconditioner(t float64, u *state.TreeVector, h float64) error {
	for i, v := range u.Field().Comp("cell") {
		o.jac[i] = 1/h + o.rate*o.power*math.Pow(v, o.power-1)
	}
	return nil
}

func (o *decay) ApplyPreconditioner(r, pu *state.TreeVector) error {
	rc, pc := r.Field().Comp("cell"), pu.Field().Comp("cell")
	for i := range rc {
		pc[i] = rc[i] / o.jac[i]
	}
	return nil
}

func (o *decay) ErrorNorm(u, du *state.TreeVector) float64 { return o.ScaledNorm(u, du, 1e-6, 1e-6) }

func (o *decay) IsAdmissible(u *state.TreeVector) bool {
	vmin, _ := o.GlobalMinMax(u.Field(), "cell")
	return vmin > o.umin
}

func (o *decay) ModifyCorrection(h float64, r, u, du *state.TreeVector) CorrectionResult {
	return NotModified
}

func (o *decay) ModifyPredictor(h float64, u0, u *state.TreeVector) (bool, error) {
	return false, nil
}

func init() {
	Register("test decay", newDecay)
}

func decayEnv(tst *testing.T, yaml string) (*Env, PK) {
	plist, err := inp.ParseParameterList("PKs", []byte(yaml))
	if err != nil {
		tst.Fatalf("ParseParameterList failed: %v\n", err)
	}
	m, _ := mesh.NewColumn("domain", 1, []float64{1, 1}, 1, 0)
	env := NewEnv(eval.NewGraph(state.New(m), state.Next), plist)
	p, err := New("decay", env)
	if err != nil {
		tst.Fatalf("New failed: %v\n", err)
	}
	if err = p.Setup(); err != nil {
		tst.Fatalf("Setup failed: %v\n", err)
	}
	if err = env.G.EnsureCompatibility(); err != nil {
		tst.Fatalf("EnsureCompatibility failed: %v\n", err)
	}
	if err = env.G.S.Setup(); err != nil {
		tst.Fatalf("State Setup failed: %v\n", err)
	}
	if err = p.Initialize(); err != nil {
		tst.Fatalf("Initialize failed: %v\n", err)
	}
	env.G.S.CopyNext()
	return env, p
}

func Test_stepper01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stepper01. backward Euler on linear decay")

	env, p := decayEnv(tst, `
decay:
  PK type: test decay
  decay rate: 0.5
  initial condition: {value: 2}
  time integrator:
    initial time step: 0.1
    min iterations: 2
    extrapolate initial guess: false
`)
	s := env.G.S
	t, λ := 0.0, 0.5
	expected := 2.0
	for step := 0; step < 5; step++ {
		h := p.GetDt()
		failed, err := p.AdvanceStep(t, t+h, false)
		if err != nil || failed {
			tst.Errorf("AdvanceStep failed: %v (failed=%v)\n", err, failed)
			return
		}
		if err = p.CommitStep(t, t+h); err != nil {
			tst.Errorf("CommitStep failed: %v\n", err)
			return
		}
		s.Commit()
		t += h
		expected /= 1 + λ*h
	}
	u, _ := s.Read("u", state.Current)
	chk.Float64(tst, "u", 1e-10, u.Get("cell", 0, 0), expected)
	chk.Float64(tst, "u", 1e-10, u.Get("cell", 1, 0), expected)
	chk.Int(tst, "cycle", s.Cycle, 5)

	// linear problems converge in one or two iterations: dt grows
	if p.GetDt() <= 0.1 {
		tst.Errorf("dt must have grown; got %g\n", p.GetDt())
		return
	}
	chk.Float64(tst, "time", 1e-15, s.Time(state.Next), t)
}

func Test_stepper02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stepper02. failures and step reduction")

	_, p := decayEnv(tst, `
decay:
  PK type: test decay
  decay rate: 100
  power: 3
  min value: 0
  initial condition: {value: 1}
  time integrator:
    initial time step: 10
    min time step: 1
    nonlinear solver: {limit iterations: 3}
`)

	// three iterations are not enough
	failed, err := p.AdvanceStep(0, 10, false)
	if err != nil {
		tst.Errorf("failures must not be errors: %v\n", err)
		return
	}
	if !failed {
		tst.Errorf("step must fail\n")
		return
	}
	chk.Float64(tst, "dt", 1e-15, p.GetDt(), 5)

	// bad parameters
	for _, yaml := range []string{
		"decay: {PK type: test decay, time integrator: {min time step: 0}}",
		"decay: {PK type: test decay, time integrator: {time step reduction factor: 1}}",
		"decay: {PK type: test decay, time integrator: {nonlinear solver: {solver type: magic}}}",
		"decay: {PK type: magic}",
		"other: {PK type: test decay}",
	} {
		plist, _ := inp.ParseParameterList("PKs", []byte(yaml))
		m, _ := mesh.NewColumn("domain", 1, []float64{1}, 1, 0)
		env := NewEnv(eval.NewGraph(state.New(m), state.Next), plist)
		if _, err = New("decay", env); !errs.Is(err, errs.Config) {
			tst.Errorf("%q must give a ConfigError; got %v\n", yaml, err)
			return
		}
	}
}

func Test_lifecycle01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("lifecycle01. call sequence")

	env, p := decayEnv(tst, `
decay:
  PK type: test decay
  initial condition: {value: 1}
`)
	chk.String(tst, p.Lifecycle().Phase().String(), "Initialized")

	// solving before predicting
	if err := Transition(Solving, p); !errs.Is(err, errs.Config) {
		tst.Errorf("Initialized → Solving must be a ConfigError; got %v\n", err)
		return
	}
	if _, err := p.AdvanceStep(0, 1, false); err != nil {
		tst.Errorf("AdvanceStep failed: %v\n", err)
		return
	}
	chk.String(tst, p.Lifecycle().Phase().String(), "Solving")
	if err := p.CommitStep(0, 1); err != nil {
		tst.Errorf("CommitStep failed: %v\n", err)
		return
	}
	env.G.S.Commit()
	chk.String(tst, p.Lifecycle().Phase().String(), "Committing")

	// setup after initialization
	if err := p.Setup(); !errs.Is(err, errs.Config) {
		tst.Errorf("Setup after Initialize must be a ConfigError; got %v\n", err)
		return
	}
	if err := Transition(Finalized, p); err != nil {
		tst.Errorf("Finalized failed: %v\n", err)
		return
	}
	if err := Transition(Predicting, p); !errs.Is(err, errs.Config) {
		tst.Errorf("calls after Finalized must be ConfigErrors; got %v\n", err)
		return
	}
	chk.Strings(tst, "names", []string{Constructed.String(), Phase(99).String()}, []string{"Constructed", "Unknown"})
}
