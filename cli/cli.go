// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cli implements the command line interface
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-hamm/ats/errs"
	"github.com/a-hamm/ats/eval"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/mdl/ewc"
	"github.com/a-hamm/ats/mpc"
	"github.com/a-hamm/ats/pk"
	"github.com/a-hamm/ats/pk/biophys"
	"github.com/a-hamm/ats/sim"
	"github.com/a-hamm/ats/solver"
	"github.com/a-hamm/ats/telemetry"
	"github.com/spf13/cobra"
)

// Version is the version of the program
const Version = "0.3.1"

// runFlags holds the options of the run command
type runFlags struct {
	ranks    int    // number of in-process ranks
	trace    bool   // export spans
	metrics  bool   // print counters at the end
	verbose  bool   // show messages
	logLevel string // overrides the level of the input file
	pretty   bool   // human readable logs
}

// NewRoot returns the root command with all subcommands
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "ats",
		Short:         "Multi-physics time stepping of coupled thermal and hydrological process kernels",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newListCmd(), newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run <input.yaml>",
		Short: "Runs a simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], f)
		},
	}
	cmd.Flags().IntVarP(&f.ranks, "ranks", "n", 1, "number of in-process ranks")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "write spans of steps and commits to stderr")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "print counters at the end of the run")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "show messages")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "level of logs: debug, info, warn, error or none (default from input file)")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "human readable logs")
	return cmd
}

// run reads and runs the simulation in simfilepath
func run(ctx context.Context, stdout, stderr io.Writer, simfilepath string, f runFlags) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.ranks < 1 {
		return errs.Configf("ranks", "number of ranks must be positive; %d is invalid", f.ranks)
	}
	data, err := inp.ReadSim(simfilepath)
	if err != nil {
		return
	}
	level := data.Data.LogLevel
	if f.logLevel != "" {
		level = f.logLevel
	}
	log := telemetry.NewLogger(stderr, level, f.pretty)
	verbose := f.verbose || data.Data.ShowMsg

	// tracing
	if f.trace {
		var shutdown func(context.Context) error
		if shutdown, err = telemetry.SetupTracing(stderr); err != nil {
			return
		}
		defer func() {
			if e := shutdown(context.Background()); err == nil {
				err = e
			}
		}()
	}

	// run
	metrics := telemetry.NewMetrics("ats")
	if f.ranks == 1 {
		var o *sim.Main
		if o, err = sim.NewMain(data, nil, log, metrics, verbose); err != nil {
			return
		}
		err = o.Run(ctx)
	} else {
		_, err = sim.RunRanks(ctx, simfilepath, f.ranks, log, metrics, verbose)
	}

	// counters
	if f.metrics {
		lines, e := metrics.Summary()
		if e != nil && err == nil {
			err = e
		}
		fmt.Fprintln(stdout, strings.Join(lines, "\n"))
	}
	return
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the available evaluators, process kernels, preconditioners and models",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			section(w, "evaluator types", eval.Types())
			section(w, "PK types", pk.Types())
			section(w, "preconditioner types", mpc.Preconditioners())
			section(w, "nonlinear solvers", solver.Types())
			section(w, "coupling delegate models", ewc.Names())
			section(w, "biophysical models", biophys.Models())
		},
	}
}

// section prints a title and one name per line
func section(w io.Writer, title string, names []string) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, n := range names {
		fmt.Fprintf(w, "  %s\n", n)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ats version %s\n", Version)
		},
	}
}
