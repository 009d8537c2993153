// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package learn

import (
	"fmt"

	"github.com/emer/learnrules/ops"
	"github.com/emer/learnrules/signal"
)

// SimBCM computes delta according to the BCM rule:
//
//	delta[i][j] = alpha * post[i] * (post[i] - theta[i]) * pre[j]
//
// with alpha = learning rate * dt. Delta is fully overwritten each step.
type SimBCM struct {
	ops.OpBase
	PreFiltered  signal.Signal
	PostFiltered signal.Signal
	Theta        signal.Signal
	Delta        signal.Signal
	LearningRate float32
}

// NewSimBCM returns a new SimBCM operator. Delta must be post x pre
// and Theta the same size as PostFiltered.
func NewSimBCM(preFiltered, postFiltered, theta, delta signal.Signal, learningRate float32, tag string) (*SimBCM, error) {
	np, nq := postFiltered.Size(), preFiltered.Size()
	if theta.Size() != np || delta.Size() != np*nq {
		return nil, fmt.Errorf("%w: SimBCM pre %v, post %v, theta %v, delta %v", signal.ErrShape, preFiltered, postFiltered, theta, delta)
	}
	op := &SimBCM{PreFiltered: preFiltered, PostFiltered: postFiltered, Theta: theta, Delta: delta, LearningRate: learningRate}
	op.Tg = tag
	op.Dp.Reads = []signal.Signal{preFiltered, postFiltered, theta}
	op.Dp.Updates = []signal.Signal{delta}
	return op, nil
}

func (op *SimBCM) String() string {
	return fmt.Sprintf("SimBCM(pre=%s, post=%s -> %s%s)", op.PreFiltered.Name, op.PostFiltered.Name, op.Delta.Name, op.TagStr())
}

func (op *SimBCM) MakeStep(ar *signal.Arena, dt float32) ops.StepFunc {
	pre := ar.Values(op.PreFiltered)
	post := ar.Values(op.PostFiltered)
	theta := ar.Values(op.Theta)
	delta := ar.Values(op.Delta)
	alpha := op.LearningRate * dt
	nq := len(pre)
	return func() {
		for i, pv := range post {
			pf := alpha * pv * (pv - theta[i])
			drow := delta[i*nq : (i+1)*nq]
			for j, qv := range pre {
				drow[j] = pf * qv
			}
		}
	}
}
