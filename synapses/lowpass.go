// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package synapses provides the temporal filters that are applied to
activity signals before they drive learning.
*/
package synapses

import (
	"fmt"

	"github.com/emer/learnrules/ops"
	"github.com/emer/learnrules/signal"
	"github.com/goki/mat32"
)

// Lowpass is a first-order exponential low-pass filter with time constant Tau
type Lowpass struct {

	// time constant in seconds -- 0 = no filtering (output = input)
	Tau float32 `def:"0.005" min:"0"`
}

// Decay returns the per-step decay factor exp(-dt/tau) (0 for Tau == 0)
func (lp *Lowpass) Decay(dt float32) float32 {
	if lp.Tau <= 0 {
		return 0
	}
	return mat32.Exp(-dt / lp.Tau)
}

func (lp *Lowpass) String() string {
	return fmt.Sprintf("Lowpass(%g)", lp.Tau)
}

// SimLowpass filters In into Out: Out = a * Out + (1 - a) * In,
// where a = exp(-dt / Tau). Out is an update, so readers of Out
// in the same step see the previous step's value.
type SimLowpass struct {
	ops.OpBase
	Filt Lowpass
	In   signal.Signal
	Out  signal.Signal
}

// NewSimLowpass returns a new filter operator. In and Out must have the same size.
func NewSimLowpass(filt Lowpass, in, out signal.Signal) (*SimLowpass, error) {
	if in.Size() != out.Size() {
		return nil, fmt.Errorf("%w: %v: in %v, out %v", signal.ErrShape, filt.String(), in, out)
	}
	op := &SimLowpass{Filt: filt, In: in, Out: out}
	op.Dp.Reads = []signal.Signal{in}
	op.Dp.Updates = []signal.Signal{out}
	return op, nil
}

func (op *SimLowpass) String() string {
	return fmt.Sprintf("SimLowpass(%s, %s -> %s%s)", op.Filt.String(), op.In.Name, op.Out.Name, op.TagStr())
}

func (op *SimLowpass) MakeStep(ar *signal.Arena, dt float32) ops.StepFunc {
	in := ar.Values(op.In)
	out := ar.Values(op.Out)
	a := op.Filt.Decay(dt)
	b := 1 - a
	return func() {
		for i, x := range in {
			out[i] = a*out[i] + b*x
		}
	}
}
