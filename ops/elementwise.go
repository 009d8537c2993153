// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ops

import (
	"fmt"

	"github.com/emer/learnrules/signal"
)

// ElementwiseInc increments Y by the elementwise product A * X,
// with row / column broadcasting over up to 2 dimensions.
// A column (n x 1) times a row (1 x m) into an n x m Y is an outer product.
type ElementwiseInc struct {
	OpBase
	A signal.Signal
	X signal.Signal
	Y signal.Signal

	ash, xsh, ysh [2]int
}

// NewElementwiseInc returns a new ElementwiseInc operator, or a shape error
// if A and X do not broadcast to the shape of Y.
func NewElementwiseInc(a, x, y signal.Signal, tag string) (*ElementwiseInc, error) {
	op := &ElementwiseInc{A: a, X: x, Y: y}
	var err error
	if op.ash, err = shape2D(a); err != nil {
		return nil, err
	}
	if op.xsh, err = shape2D(x); err != nil {
		return nil, err
	}
	if op.ysh, err = shape2D(y); err != nil {
		return nil, err
	}
	for d := 0; d < 2; d++ {
		if !broadcasts(op.ash[d], op.ysh[d]) || !broadcasts(op.xsh[d], op.ysh[d]) {
			return nil, fmt.Errorf("%w: ElementwiseInc %v * %v cannot broadcast to %v", signal.ErrShape, a, x, y)
		}
	}
	op.Tg = tag
	op.Dp.Incs = []signal.Signal{y}
	op.Dp.Reads = []signal.Signal{a, x}
	return op, nil
}

func (op *ElementwiseInc) String() string {
	return fmt.Sprintf("ElementwiseInc(%s, %s -> %s%s)", op.A.Name, op.X.Name, op.Y.Name, op.TagStr())
}

func (op *ElementwiseInc) MakeStep(ar *signal.Arena, dt float32) StepFunc {
	a := ar.Values(op.A)
	x := ar.Values(op.X)
	y := ar.Values(op.Y)
	nr, nc := op.ysh[0], op.ysh[1]
	ast := strides2D(op.ash)
	xst := strides2D(op.xsh)
	return func() {
		for r := 0; r < nr; r++ {
			ai := r * ast[0]
			xi := r * xst[0]
			yi := r * nc
			for c := 0; c < nc; c++ {
				y[yi+c] += a[ai+c*ast[1]] * x[xi+c*xst[1]]
			}
		}
	}
}

// shape2D returns the shape of sg padded on the left to 2 dims
func shape2D(sg signal.Signal) ([2]int, error) {
	switch sg.NDim() {
	case 0:
		return [2]int{1, 1}, nil
	case 1:
		return [2]int{1, sg.Dim(0)}, nil
	case 2:
		return [2]int{sg.Dim(0), sg.Dim(1)}, nil
	}
	return [2]int{}, fmt.Errorf("%w: %v has more than 2 dims", signal.ErrShape, sg)
}

// strides2D returns the row-major strides of a 2D shape, with
// broadcast (size 1) dims having stride 0
func strides2D(sh [2]int) [2]int {
	st := [2]int{sh[1], 1}
	if sh[0] == 1 {
		st[0] = 0
	}
	if sh[1] == 1 {
		st[1] = 0
	}
	return st
}

func broadcasts(n, to int) bool {
	return n == to || n == 1
}
