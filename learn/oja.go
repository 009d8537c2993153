// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package learn

import (
	"fmt"

	"github.com/emer/learnrules/ops"
	"github.com/emer/learnrules/signal"
)

// SimOja computes delta according to Oja's rule, in two phases:
// forgetting, delta[i][j] = -beta * weights[i][j] * alpha * post[i]^2,
// then the Hebbian term, delta[i][j] += alpha * post[i] * pre[j].
type SimOja struct {
	ops.OpBase
	PreFiltered  signal.Signal
	PostFiltered signal.Signal
	Weights      signal.Signal
	Delta        signal.Signal
	LearningRate float32
	Beta         float32
}

// NewSimOja returns a new SimOja operator. Weights and Delta must be post x pre.
func NewSimOja(preFiltered, postFiltered, weights, delta signal.Signal, learningRate, beta float32, tag string) (*SimOja, error) {
	nw := postFiltered.Size() * preFiltered.Size()
	if weights.Size() != nw || delta.Size() != nw {
		return nil, fmt.Errorf("%w: SimOja pre %v, post %v, weights %v, delta %v", signal.ErrShape, preFiltered, postFiltered, weights, delta)
	}
	op := &SimOja{PreFiltered: preFiltered, PostFiltered: postFiltered, Weights: weights, Delta: delta, LearningRate: learningRate, Beta: beta}
	op.Tg = tag
	op.Dp.Reads = []signal.Signal{preFiltered, postFiltered, weights}
	op.Dp.Updates = []signal.Signal{delta}
	return op, nil
}

func (op *SimOja) String() string {
	return fmt.Sprintf("SimOja(pre=%s, post=%s -> %s%s)", op.PreFiltered.Name, op.PostFiltered.Name, op.Delta.Name, op.TagStr())
}

func (op *SimOja) MakeStep(ar *signal.Arena, dt float32) ops.StepFunc {
	pre := ar.Values(op.PreFiltered)
	post := ar.Values(op.PostFiltered)
	weights := ar.Values(op.Weights)
	delta := ar.Values(op.Delta)
	alpha := op.LearningRate * dt
	beta := op.Beta
	nq := len(pre)
	return func() {
		// forgetting
		for i, pv := range post {
			psq := alpha * pv * pv
			wrow := weights[i*nq : (i+1)*nq]
			drow := delta[i*nq : (i+1)*nq]
			for j, wv := range wrow {
				drow[j] = -beta * wv * psq
			}
		}
		// hebbian
		for i, pv := range post {
			ap := alpha * pv
			drow := delta[i*nq : (i+1)*nq]
			for j, qv := range pre {
				drow[j] += ap * qv
			}
		}
	}
}
