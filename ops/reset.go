// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ops

import (
	"fmt"

	"github.com/emer/learnrules/signal"
)

// Reset sets Dst to a constant Value on every step
type Reset struct {
	OpBase
	Dst   signal.Signal
	Value float32
}

// NewReset returns a new Reset operator
func NewReset(dst signal.Signal, value float32, tag string) *Reset {
	op := &Reset{Dst: dst, Value: value}
	op.Tg = tag
	op.Dp.Sets = []signal.Signal{dst}
	return op
}

func (op *Reset) String() string {
	return fmt.Sprintf("Reset(%s%s)", op.Dst.Name, op.TagStr())
}

func (op *Reset) MakeStep(ar *signal.Arena, dt float32) StepFunc {
	dst := ar.Values(op.Dst)
	val := op.Value
	return func() {
		for i := range dst {
			dst[i] = val
		}
	}
}

// Copy sets Dst to the values of Src on every step
type Copy struct {
	OpBase
	Src signal.Signal
	Dst signal.Signal
}

// NewCopy returns a new Copy operator. Src and Dst must have the same size.
func NewCopy(src, dst signal.Signal, tag string) (*Copy, error) {
	if src.Size() != dst.Size() {
		return nil, fmt.Errorf("%w: Copy %v -> %v", signal.ErrShape, src, dst)
	}
	op := &Copy{Src: src, Dst: dst}
	op.Tg = tag
	op.Dp.Sets = []signal.Signal{dst}
	op.Dp.Reads = []signal.Signal{src}
	return op, nil
}

func (op *Copy) String() string {
	return fmt.Sprintf("Copy(%s -> %s%s)", op.Src.Name, op.Dst.Name, op.TagStr())
}

func (op *Copy) MakeStep(ar *signal.Arena, dt float32) StepFunc {
	src := ar.Values(op.Src)
	dst := ar.Values(op.Dst)
	return func() {
		copy(dst, src)
	}
}
