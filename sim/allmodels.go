// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"github.com/a-hamm/ats/mdl/conduct"
	"github.com/a-hamm/ats/mdl/energy"
	"github.com/a-hamm/ats/mdl/porosity"
	"github.com/a-hamm/ats/mdl/wc"
	"github.com/a-hamm/ats/mdl/wrm"
	"github.com/a-hamm/ats/mpc"
	"github.com/a-hamm/ats/pk/biophys"
	pkenergy "github.com/a-hamm/ats/pk/energy"
	"github.com/a-hamm/ats/pk/flow"
)

// enforce loading of all models and process kernels
func init() {
	_ = conduct.Power{}
	_ = energy.LiquidIce{}
	_ = porosity.Compressible{}
	_ = wc.LiquidIce{}
	_ = wrm.VanGen{}
	_ = mpc.Strong{}
	_ = biophys.LightUse{}
	_ = pkenergy.Energy{}
	_ = flow.Richards{}
}
