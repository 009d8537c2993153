// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package learn

import (
	"fmt"

	"github.com/emer/learnrules/ops"
	"github.com/emer/learnrules/signal"
)

// SimVoja computes delta according to a simplified version of Oja's rule
// in the vector space, which moves the encoders of active neurons toward
// the decoded value. This is an analog to Oja's rule in the vector space,
// making it suitable for memory.
//
// Let y be the post-synaptic activity, a the pre-synaptic activity,
// s the normalization factor, W the connection weight matrix,
// x the decoded pre-synaptic activity, and e the encoders.
// Oja's rule is W += outer(y, a) - s y^2 W. Substituting W -> e and
// a -> x gives e += outer(y, x) - s y^2 e, so when s = 1/y, for each
// neuron i: e_i += y_i (x - e_i).
//
// The encoders here are scaled by gain / radius, so the per-step delta is
//
//	delta[i] = alpha * learning * (scale[i] * y[i] * x - y[i] * e[i])
//
// where learning is an external scalar gating signal in [0, 1].
type SimVoja struct {
	ops.OpBase

	// decoded activity from the pre-synaptic ensemble
	PreDecoded signal.Signal

	// filtered post-synaptic activity (y)
	PostFiltered signal.Signal

	// encoders multiplied by Scale
	ScaledEncoders signal.Signal

	// the change to the encoders, overwritten each step
	Delta signal.Signal

	// length of each encoder: gain / radius per neuron
	Scale []float32

	// scalar gating signal multiplied into the learning rate
	LearningSignal signal.Signal

	LearningRate float32
}

// NewSimVoja returns a new SimVoja operator. ScaledEncoders and Delta
// must be post neurons x dims, and Scale must have one value per post neuron.
func NewSimVoja(preDecoded, postFiltered, scaledEncoders, delta signal.Signal, scale []float32, learningSignal signal.Signal, learningRate float32) (*SimVoja, error) {
	nn, nd := postFiltered.Size(), preDecoded.Size()
	if scaledEncoders.Size() != nn*nd || delta.Size() != nn*nd || len(scale) != nn || learningSignal.Size() != 1 {
		return nil, fmt.Errorf("%w: SimVoja decoded %v, post %v, encoders %v, delta %v, scale %d, learning %v", signal.ErrShape, preDecoded, postFiltered, scaledEncoders, delta, len(scale), learningSignal)
	}
	op := &SimVoja{PreDecoded: preDecoded, PostFiltered: postFiltered, ScaledEncoders: scaledEncoders, Delta: delta, LearningSignal: learningSignal, LearningRate: learningRate}
	op.Scale = append([]float32{}, scale...)
	op.Dp.Reads = []signal.Signal{preDecoded, postFiltered, scaledEncoders, learningSignal}
	op.Dp.Updates = []signal.Signal{delta}
	return op, nil
}

func (op *SimVoja) String() string {
	return fmt.Sprintf("SimVoja(pre=%s, post=%s -> %s%s)", op.PreDecoded.Name, op.PostFiltered.Name, op.Delta.Name, op.TagStr())
}

func (op *SimVoja) MakeStep(ar *signal.Arena, dt float32) ops.StepFunc {
	x := ar.Values(op.PreDecoded)
	post := ar.Values(op.PostFiltered)
	enc := ar.Values(op.ScaledEncoders)
	delta := ar.Values(op.Delta)
	learning := ar.Values(op.LearningSignal)
	scale := op.Scale
	alpha := op.LearningRate * dt
	nd := len(x)
	return func() {
		al := alpha * learning[0]
		for i, y := range post {
			sy := scale[i] * y
			erow := enc[i*nd : (i+1)*nd]
			drow := delta[i*nd : (i+1)*nd]
			for j, xv := range x {
				drow[j] = al * (sy*xv - y*erow[j])
			}
		}
	}
}
