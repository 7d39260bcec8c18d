// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sim implements the cycle driver: it builds the process kernels of a simulation and
// advances them in time, rejecting and retrying failed steps
package sim

import (
	"context"
	"math"
	"time"

	"github.com/a-hamm/ats/comm"
	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mesh"
	"github.com/a-hamm/ats/pk"
	"github.com/a-hamm/ats/state"
	"github.com/a-hamm/ats/telemetry"
	"github.com/cpmech/gosl/io"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Summary holds the history of a run
type Summary struct {
	Times    []float64 // time at the end of each accepted step
	Dts      []float64 // size of each accepted step
	Rejected int       // number of rejected attempts
}

// Main holds all data for a simulation
type Main struct {
	Sim     *inp.Simulation // simulation data
	Env     *pk.Env         // data shared by all process kernels
	PKs     []pk.PK         // top-level process kernels
	Summary *Summary        // accepted steps
	RunID   string          // identifier of this run
	Log     zerolog.Logger  // logger of the cycle driver
	ShowMsg bool            // show messages
}

// NewMain returns a new Main structure with all process kernels initialized
//  Input:
//   sim     -- simulation data
//   c       -- communicator; nil means serial
//   log     -- logger
//   metrics -- metrics; may be nil
//   verbose -- show messages
func NewMain(sim *inp.Simulation, c comm.Comm, log zerolog.Logger, metrics *telemetry.Metrics, verbose bool) (o *Main, err error) {

	// new Main object
	if c == nil {
		c = comm.Serial{}
	}
	o = &Main{Sim: sim, Summary: new(Summary), RunID: uuid.NewString()}
	o.ShowMsg = verbose && c.Rank() == 0
	log = log.With().Str("run", o.RunID).Int("rank", c.Rank()).Logger()
	o.Log = telemetry.Component(log, "cycle driver")

	// meshes
	meshes, err := Meshes(sim.Meshes)
	if err != nil {
		return nil, err
	}
	s := state.New(meshes...)
	for _, tag := range state.Tags {
		s.SetTime(tag, sim.Control.Tini)
	}

	// evaluators and environment
	g := eval.NewGraph(s, state.Next)
	g.Log = telemetry.Component(log, "graph")
	g.Metrics = metrics
	o.Env = pk.NewEnv(g, sim.PKs)
	o.Env.Comm = c
	o.Env.Log = log
	o.Env.Metrics = metrics
	o.Env.Funcs = sim.Functions

	// process kernels
	o.PKs, err = pk.Build(o.Env, sim.Evaluators, sim.Control.PKs...)
	if err != nil {
		return nil, err
	}

	// message
	if o.ShowMsg {
		io.Pf("> Simulation %q read\n", sim.Key)
		io.Pf("> Process kernels %v initialized at t = %g\n", sim.Control.PKs, sim.Control.Tini)
	}
	o.Log.Info().Str("sim", sim.Key).Strs("PKs", sim.Control.PKs).Msg("initialized")
	return
}

// Meshes allocates the meshes given in the simulation data
func Meshes(data []*inp.MeshData) (meshes []mesh.Mesh, err error) {
	for _, m := range data {
		switch m.Type {
		case "column":
			col, err := mesh.NewColumn(m.Name, m.Ncol, m.Dz, m.Area, m.Ztop)
			if err != nil {
				return nil, errs.Wrap(errs.Config, m.Name, err, "cannot allocate mesh")
			}
			meshes = append(meshes, col)
		case "surface":
			meshes = append(meshes, mesh.NewSurface(m.Name, m.Areas))
		default:
			return nil, errs.Configf(m.Name, "mesh type %q is not available", m.Type)
		}
	}
	return
}

// S returns the field store
func (o *Main) S() *state.State { return o.Env.G.S }

// Run advances all process kernels from the current time to the final time
func (o *Main) Run(ctx context.Context) (err error) {

	// exit commands
	cputime := time.Now()
	defer func() { err = o.onexit(cputime, err) }()

	// time loop
	ctrl := o.Sim.Control
	s := o.S()
	tol := 1e-12 * math.Max(1, math.Abs(ctrl.Tf))
	nfail := 0
	dtFailed := 0.0
	for t := s.Time(state.Current); t < ctrl.Tf-tol; t = s.Time(state.Current) {
		if err = ctx.Err(); err != nil {
			return
		}
		if ctrl.MaxSteps > 0 && len(o.Summary.Times) >= ctrl.MaxSteps {
			o.Log.Warn().Int("steps", ctrl.MaxSteps).Float64("t", t).Msg("maximum number of steps reached")
			break
		}

		// step size
		dt := o.SelectDt(t, dtFailed)
		if dt < ctrl.DtMin {
			return errs.Singularf("cycle driver", "time step %g at t = %g is smaller than the minimum %g", dt, t, ctrl.DtMin)
		}

		// attempt
		var failed bool
		failed, err = o.Advance(ctx, t, t+dt)
		if err != nil {
			return
		}
		if failed {
			o.Summary.Rejected++
			o.Env.Metrics.Step(false, 0)
			nfail++
			if nfail > ctrl.MaxFail {
				return errs.Singularf("cycle driver", "step from t = %g failed %d consecutive times", t, nfail)
			}
			dtFailed = dt
			o.Log.Warn().Float64("t", t).Float64("dt", dt).Int("attempt", nfail).Msg("step rejected")
			if o.ShowMsg {
				io.Pfyel("> step rejected: t = %g dt = %g\n", t, dt)
			}
			continue
		}
		nfail, dtFailed = 0, 0
		if err = o.Commit(ctx, t, t+dt); err != nil {
			return
		}
		o.Summary.Times = append(o.Summary.Times, t+dt)
		o.Summary.Dts = append(o.Summary.Dts, dt)
		o.Env.Metrics.Step(true, o.iterations())
		if o.ShowMsg {
			io.Pf("> cycle %4d: t = %13.6e dt = %13.6e\n", s.Cycle, t+dt, dt)
		}
	}
	return pk.Transition(pk.Finalized, o.PKs...)
}

// SelectDt returns the step size starting at t: the smallest proposal of all kernels on all ranks,
// limited by the maximum step size and the final time
//  After a failure, the step is also at most half of the failed step.
func (o *Main) SelectDt(t, dtFailed float64) (dt float64) {
	dt = math.Inf(1)
	for _, p := range o.PKs {
		dt = math.Min(dt, p.GetDt())
	}
	dt = o.Env.Comm.AllReduceMin(dt)
	ctrl := o.Sim.Control
	if ctrl.DtMax > 0 {
		dt = math.Min(dt, ctrl.DtMax)
	}
	if dtFailed > 0 {
		dt = math.Min(dt, 0.5*dtFailed)
	}
	if rest := ctrl.Tf - t; dt > rest || rest-dt < ctrl.DtMin {
		dt = rest
	}
	return
}

// Advance attempts one step from tOld to tNew with all kernels
//  A failed attempt restores the next tag from the intermediate tag. The failure is agreed by all ranks.
func (o *Main) Advance(ctx context.Context, tOld, tNew float64) (failed bool, err error) {
	_, span := telemetry.StartSpan(ctx, "advance", tOld, tNew)
	defer func() { telemetry.EndSpan(span, failed, err) }()
	s := o.S()
	s.SetTime(state.Next, tNew)
	for _, p := range o.PKs {
		p.SetDt(tNew - tOld)
	}
	for _, p := range o.PKs {
		failed, err = p.AdvanceStep(tOld, tNew, false)
		if err != nil {
			if class := errs.ClassOf(err); class == 0 || class.Fatal() {
				return
			}
			o.Log.Warn().Err(err).Str("pk", p.Name()).Msg("step failed")
			failed, err = true, nil
		}
		if failed {
			break
		}
	}
	flag := 0.0
	if failed {
		flag = 1
	}
	failed = o.Env.Comm.AllReduceMax(flag) > 0
	if failed {
		s.Restore()
		for _, p := range o.PKs {
			p.ChangedSolution()
		}
	}
	return
}

// Commit commits an accepted step from tOld to tNew
func (o *Main) Commit(ctx context.Context, tOld, tNew float64) (err error) {
	_, span := telemetry.StartSpan(ctx, "commit", tOld, tNew)
	defer func() { telemetry.EndSpan(span, false, err) }()
	for _, p := range o.PKs {
		if err = p.CommitStep(tOld, tNew); err != nil {
			return
		}
	}
	o.S().Commit()
	o.Log.Debug().Float64("t", tNew).Float64("dt", tNew-tOld).Int("cycle", o.S().Cycle).Msg("step accepted")
	return
}

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// iterations returns the largest number of nonlinear iterations of the last step
func (o *Main) iterations() (n int) {
	for _, p := range o.PKs {
		if st, ok := p.(interface{ Stepper() *pk.Stepper }); ok && st.Stepper() != nil {
			n = max(n, st.Stepper().Iterations)
		}
	}
	return
}

// onexit prints the final message with simulation and cpu times
func (o *Main) onexit(cputime time.Time, prevErr error) error {
	t := o.S().Time(state.Current)
	if prevErr != nil {
		o.Log.Error().Err(prevErr).Float64("t", t).Msg("run failed")
	} else {
		o.Log.Info().Float64("t", t).Int("steps", len(o.Summary.Times)).Int("rejected", o.Summary.Rejected).Msg("run finished")
	}
	if o.ShowMsg {
		if prevErr == nil {
			io.PfGreen("> Success\n")
			io.Pf("> %d steps (%d rejected) up to t = %g\n", len(o.Summary.Times), o.Summary.Rejected, t)
			io.Pf("> CPU time = %v\n", time.Now().Sub(cputime))
		} else {
			io.PfRed("> Failed\n")
		}
	}
	return prevErr
}
