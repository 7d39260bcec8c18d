// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"

	"github.com/a-hamm/ats/comm"
	"github.com/a-hamm/ats/state"
)

// anderson implements Anderson acceleration of fixed-point steps f = -du
//  x_{k+1} = x_k + f_k - Σ γ_j (Δx_j + Δf_j) with γ minimising |f_k - Σ γ_j Δf_j|
//  The least-squares problem is solved by modified Gram-Schmidt; nearly dependent differences are dropped.
type anderson struct {
	m    int         // maximum number of differences kept
	comm comm.Comm   // reductions of inner products
	xs   [][]float64 // previous iterates (flat)
	fs   [][]float64 // previous steps (flat)
}

// newAnderson returns a new accelerator keeping m differences
func newAnderson(m int, c comm.Comm) *anderson {
	return &anderson{m: m, comm: c}
}

// Restart discards the history
func (o *anderson) Restart() {
	o.xs, o.fs = o.xs[:0], o.fs[:0]
}

// Correction replaces du by the accelerated correction
func (o *anderson) Correction(u, du *state.TreeVector) {

	// record iterate and step
	n := u.Len()
	x := make([]float64, n)
	f := make([]float64, n)
	u.Flatten(x)
	du.Flatten(f)
	for i := range f {
		f[i] = -f[i]
	}
	o.xs = append(o.xs, x)
	o.fs = append(o.fs, f)
	if len(o.xs) > o.m+1 {
		o.xs, o.fs = o.xs[1:], o.fs[1:]
	}
	k := len(o.xs) - 1
	if k == 0 {
		return
	}

	// orthogonalise differences; newest first
	var keep []int
	var qs [][]float64
	R := make([][]float64, k)
	for i := range R {
		R[i] = make([]float64, k)
	}
	for j := k - 1; j >= 0; j-- {
		v := make([]float64, n)
		for i := 0; i < n; i++ {
			v[i] = o.fs[j+1][i] - o.fs[j][i]
		}
		norm0 := math.Sqrt(o.dot(v, v))
		for l, q := range qs {
			r := o.dot(q, v)
			R[l][len(qs)] = r
			for i := range v {
				v[i] -= r * q[i]
			}
		}
		nv := math.Sqrt(o.dot(v, v))
		if norm0 == 0 || nv <= 1e-10*norm0 {
			continue
		}
		for i := range v {
			v[i] /= nv
		}
		R[len(qs)][len(qs)] = nv
		qs = append(qs, v)
		keep = append(keep, j)
	}
	if len(keep) == 0 {
		o.xs, o.fs = o.xs[k:], o.fs[k:]
		return
	}

	// γ = R⁻¹ Qᵀ f
	nk := len(keep)
	γ := make([]float64, nk)
	for l := nk - 1; l >= 0; l-- {
		s := o.dot(qs[l], f)
		for m := l + 1; m < nk; m++ {
			s -= R[l][m] * γ[m]
		}
		γ[l] = s / R[l][l]
	}

	// accelerated correction: du = -(x_{k+1} - x_k)
	step := make([]float64, n)
	for i := 0; i < n; i++ {
		s := f[i]
		for l, j := range keep {
			dx := o.xs[j+1][i] - o.xs[j][i]
			df := o.fs[j+1][i] - o.fs[j][i]
			s -= γ[l] * (dx + df)
		}
		step[i] = -s
	}
	du.Scatter(step)
}

// dot returns the global inner product
func (o *anderson) dot(a, b []float64) (res float64) {
	for i := range a {
		res += a[i] * b[i]
	}
	return o.comm.AllReduceSum(res)
}
