// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package comm implements collective reductions among ranks
//  Serial is the one-rank communicator; Group runs many ranks in one process.
package comm

import (
	"context"
	"math"
	"sync"

	"github.com/cpmech/gosl/chk"
	"golang.org/x/sync/errgroup"
)

// Comm defines collective operations; all ranks must call the same operations in the same order
type Comm interface {
	Rank() int                      // rank of this process
	Size() int                      // number of ranks
	AllReduceMin(x float64) float64 // global minimum
	AllReduceMax(x float64) float64 // global maximum
	AllReduceSum(x float64) float64 // global sum
}

// Serial implements a communicator with one rank
type Serial struct{}

func (Serial) Rank() int                      { return 0 }
func (Serial) Size() int                      { return 1 }
func (Serial) AllReduceMin(x float64) float64 { return x }
func (Serial) AllReduceMax(x float64) float64 { return x }
func (Serial) AllReduceSum(x float64) float64 { return x }

// Group runs a number of ranks as goroutines sharing reductions
type Group struct {
	size    int        // number of ranks
	mu      sync.Mutex // protects the fields below
	cond    *sync.Cond // signals the end of a reduction
	gen     uint64     // reduction counter
	count   int        // number of contributions to the current reduction
	acc     float64    // accumulated value
	result  float64    // result of the last reduction
	aborted bool       // a rank failed; reductions return NaN
}

// NewGroup returns a new group with size ranks
func NewGroup(size int) (o *Group) {
	if size < 1 {
		chk.Panic("comm: number of ranks must be positive; %d is invalid", size)
	}
	o = &Group{size: size}
	o.cond = sync.NewCond(&o.mu)
	return
}

// Size returns the number of ranks
func (o *Group) Size() int { return o.size }

// Run runs fcn on every rank and waits for all of them; the first error is returned
func (o *Group) Run(ctx context.Context, fcn func(ctx context.Context, c Comm) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for rank := 0; rank < o.size; rank++ {
		c := &rankComm{rank: rank, g: o}
		g.Go(func() error {
			err := fcn(ctx, c)
			if err != nil {
				o.abort()
			}
			return err
		})
	}
	return g.Wait()
}

// reduce combines x from all ranks with op
func (o *Group) reduce(x float64, op func(a, b float64) float64) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.aborted {
		return math.NaN()
	}
	gen := o.gen
	if o.count == 0 {
		o.acc = x
	} else {
		o.acc = op(o.acc, x)
	}
	o.count++
	if o.count == o.size {
		o.result, o.count = o.acc, 0
		o.gen++
		o.cond.Broadcast()
		return o.result
	}
	for gen == o.gen && !o.aborted {
		o.cond.Wait()
	}
	if o.aborted {
		return math.NaN()
	}
	return o.result
}

// abort releases all ranks waiting in reductions
func (o *Group) abort() {
	o.mu.Lock()
	o.aborted = true
	o.cond.Broadcast()
	o.mu.Unlock()
}

// rankComm implements Comm for one rank of a Group
type rankComm struct {
	rank int
	g    *Group
}

func (o *rankComm) Rank() int { return o.rank }
func (o *rankComm) Size() int { return o.g.size }

func (o *rankComm) AllReduceMin(x float64) float64 { return o.g.reduce(x, math.Min) }
func (o *rankComm) AllReduceMax(x float64) float64 { return o.g.reduce(x, math.Max) }
func (o *rankComm) AllReduceSum(x float64) float64 {
	return o.g.reduce(x, func(a, b float64) float64 { return a + b })
}
