// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_column01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("column01")

	m, err := NewColumn("domain", 2, []float64{0.1, 0.2, 0.3}, 2.0, 1.0)
	if err != nil {
		tst.Errorf("NewColumn failed: %v\n", err)
		return
	}
	chk.Int(tst, "ncells", m.NumEntities(Cell), 6)
	chk.Int(tst, "nfaces", m.NumEntities(Face), 8)
	chk.Int(tst, "nbfaces", m.NumEntities(BoundaryFace), 4)

	chk.Ints(tst, "faces of cell 4", m.CellFaces(4), []int{5, 6})
	chk.Ints(tst, "cells of face 5", m.FaceCells(5), []int{3, 4})
	chk.Ints(tst, "cells of face 6", m.FaceCells(6), []int{4, 5})
	chk.Ints(tst, "cells of face 7", m.FaceCells(7), []int{5})
	chk.Int(tst, "bf 3 => face", m.BoundaryFaceToFace(3), 7)
	chk.Int(tst, "face 4 => bf", m.FaceToBoundaryFace(4), 2)
	chk.Int(tst, "face 2 => bf", m.FaceToBoundaryFace(2), -1)

	chk.Float64(tst, "volume of cell 5", 1e-15, m.CellVolume(5), 0.6)
	chk.Array(tst, "centroid of cell 1", 1e-14, m.CellCentroid(1), []float64{0, 0, 0.8})
	chk.Float64(tst, "distance", 1e-14, Distance(m, 1, 2), 0.1)
	chk.Int(tst, "neighbour", Neighbour(m, 1, 2), 2)
	chk.Int(tst, "no neighbour", Neighbour(m, 0, 0), -1)

	cols := m.Columns()
	chk.Int(tst, "ncols", len(cols), 2)
	chk.Ints(tst, "column 1", cols[1], []int{3, 4, 5})

	_, err = NewColumn("bad", 1, []float64{0.1, -0.1}, 1, 0)
	if err == nil {
		tst.Errorf("NewColumn should have failed with negative thickness\n")
		return
	}

	k, err := ParseKind("boundary_face")
	if err != nil {
		tst.Errorf("ParseKind failed: %v\n", err)
		return
	}
	chk.String(tst, k.String(), "boundary_face")
}
