// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"context"

	"github.com/a-hamm/ats/comm"
	"github.com/a-hamm/ats/inp"
	"github.com/a-hamm/ats/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunRanks runs the simulation in simfilepath on nranks in-process ranks
//  Each rank reads its own copy of the input and owns a separate field store; step sizes and step
//  failures are agreed through the communicator. The returned slice is indexed by rank.
func RunRanks(ctx context.Context, simfilepath string, nranks int, log zerolog.Logger, metrics *telemetry.Metrics, verbose bool) (mains []*Main, err error) {
	mains = make([]*Main, nranks)
	log = log.With().Str("group", uuid.NewString()).Logger()
	err = comm.NewGroup(nranks).Run(ctx, func(ctx context.Context, c comm.Comm) error {
		sim, err := inp.ReadSim(simfilepath)
		if err != nil {
			return err
		}
		o, err := NewMain(sim, c, log, metrics, verbose)
		if err != nil {
			return err
		}
		mains[c.Rank()] = o
		return o.Run(ctx)
	})
	return
}
