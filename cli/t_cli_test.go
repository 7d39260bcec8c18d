// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"testing"

	"github.com/a-hamm/ats/errs"
	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verbose() {
	chk.Verbose = true
}

// execute runs the root command with args and returns stdout and stderr
func execute(args ...string) (stdout, stderr string, err error) {
	var out, serr bytes.Buffer
	root := NewRoot()
	root.SetOut(&out)
	root.SetErr(&serr)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), serr.String(), err
}

func Test_cli01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cli01. version and list")

	out, _, err := execute("version")
	require.NoError(tst, err)
	assert.Equal(tst, "ats version "+Version+"\n", out)

	out, _, err = execute("list")
	require.NoError(tst, err)
	for _, name := range []string{
		"evaluator types:", "liquid ice energy", "cell volume",
		"PK types:", "strong mpc", "weak mpc", "energy", "richards", "biophysics",
		"preconditioner types:", "smart ewc", "block diagonal",
		"nonlinear solvers:", "newton",
		"coupling delegate models:", "permafrost",
		"biophysical models:", "light use efficiency",
	} {
		assert.Contains(tst, out, name)
	}

	_, _, err = execute("version", "extra")
	assert.Error(tst, err)
}

func Test_cli02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cli02. run")

	out, _, err := execute("run", "../sim/data/cooling.yaml", "--metrics")
	require.NoError(tst, err)
	assert.Contains(tst, out, `ats_steps_total{outcome="accepted"}`)
	assert.Contains(tst, out, "ats_nonlinear_iterations")

	out, _, err = execute("run", "../sim/data/cooling.yaml", "--ranks", "2", "--metrics")
	require.NoError(tst, err)
	assert.Contains(tst, out, `ats_steps_total{outcome="accepted"}`)

	_, serr, err := execute("run", "../sim/data/cooling.yaml", "--trace", "--log-level", "none")
	require.NoError(tst, err)
	assert.Contains(tst, serr, `"advance"`)
	assert.Contains(tst, serr, `"commit"`)

	_, _, err = execute("run")
	assert.Error(tst, err)

	_, _, err = execute("run", "data/nonexistent.yaml")
	assert.True(tst, errs.Is(err, errs.Config))

	_, _, err = execute("run", "../sim/data/cooling.yaml", "--ranks", "0")
	assert.True(tst, errs.Is(err, errs.Config), "ranks 0")
}
