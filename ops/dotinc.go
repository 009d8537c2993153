// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ops

import (
	"fmt"

	"github.com/emer/learnrules/signal"
)

// DotInc increments Y by the dot product A . X, where A is either
// a scalar (scaled accumulate) or an m x n matrix applied to an n vector.
type DotInc struct {
	OpBase
	A signal.Signal
	X signal.Signal
	Y signal.Signal

	scalar bool
	m, n   int
}

// NewDotInc returns a new DotInc operator, or a shape error
func NewDotInc(a, x, y signal.Signal, tag string) (*DotInc, error) {
	op := &DotInc{A: a, X: x, Y: y}
	switch {
	case a.Size() == 1 && a.NDim() <= 1:
		if x.Size() != y.Size() {
			return nil, fmt.Errorf("%w: DotInc scalar %v . %v -> %v", signal.ErrShape, a, x, y)
		}
		op.scalar = true
		op.m = y.Size()
	case a.NDim() == 2:
		op.m, op.n = a.Dim(0), a.Dim(1)
		if x.Size() != op.n || y.Size() != op.m {
			return nil, fmt.Errorf("%w: DotInc %v . %v -> %v", signal.ErrShape, a, x, y)
		}
	default:
		return nil, fmt.Errorf("%w: DotInc %v . %v -> %v", signal.ErrShape, a, x, y)
	}
	op.Tg = tag
	op.Dp.Incs = []signal.Signal{y}
	op.Dp.Reads = []signal.Signal{a, x}
	return op, nil
}

func (op *DotInc) String() string {
	return fmt.Sprintf("DotInc(%s, %s -> %s%s)", op.A.Name, op.X.Name, op.Y.Name, op.TagStr())
}

func (op *DotInc) MakeStep(ar *signal.Arena, dt float32) StepFunc {
	a := ar.Values(op.A)
	x := ar.Values(op.X)
	y := ar.Values(op.Y)
	if op.scalar {
		return func() {
			av := a[0]
			for i := range y {
				y[i] += av * x[i]
			}
		}
	}
	m, n := op.m, op.n
	return func() {
		for i := 0; i < m; i++ {
			arow := a[i*n : (i+1)*n]
			sum := float32(0)
			for j, xv := range x {
				sum += arow[j] * xv
			}
			y[i] += sum
		}
	}
}
