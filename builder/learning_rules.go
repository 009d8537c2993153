// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package builder

import (
	"fmt"
	"log"

	"github.com/emer/learnrules/learn"
	"github.com/emer/learnrules/ops"
	"github.com/emer/learnrules/signal"
)

// GetPreEns returns the ensemble whose neurons are the pre of given
// connection: the pre itself if an Ensemble, the owning ensemble of Neurons.
func GetPreEns(cn *Connection) (*Ensemble, error) {
	switch cn.Pre.ObjKind() {
	case EnsembleObj:
		return cn.Pre.(*Ensemble), nil
	case NeuronsObj:
		return cn.Pre.(*Neurons).Ens, nil
	case NodeObj:
		return nil, fmt.Errorf("%w: %v", ErrUnsuitablePre, cn.Pre)
	}
	return nil, fmt.Errorf("%w: %v: unknown object kind %v", ErrUnsuitablePre, cn.Pre, cn.Pre.ObjKind())
}

// GetPostEns returns the ensemble whose neurons are the post of given connection
func GetPostEns(cn *Connection) (*Ensemble, error) {
	switch cn.Post.ObjKind() {
	case EnsembleObj:
		return cn.Post.(*Ensemble), nil
	case NeuronsObj:
		return cn.Post.(*Neurons).Ens, nil
	case NodeObj:
		return nil, fmt.Errorf("%w: %v", ErrUnsuitablePost, cn.Post)
	}
	return nil, fmt.Errorf("%w: %v: unknown object kind %v", ErrUnsuitablePost, cn.Post, cn.Post.ObjKind())
}

// ruleBuildFunc adds the operators computing the delta of one rule kind
type ruleBuildFunc func(m *Model, rule *LearningRule) error

// ruleBuilders is indexed by learn.RuleKinds
var ruleBuilders = [learn.RuleKindsN]ruleBuildFunc{
	learn.BCMRule:  buildBCM,
	learn.OjaRule:  buildOja,
	learn.VojaRule: buildVoja,
	learn.PESRule:  buildPES,
}

// BuildLearningRule builds the generic parts of a learning rule: a delta
// signal with the shape of the modified target, and an operator adding
// delta into the target each step. It then calls the builder for the rule
// kind, which adds the operators computing delta.
// If anything fails, every operator, signal and map entry added for the
// rule is removed and the model is as it was before the call.
func (m *Model) BuildLearningRule(rule *LearningRule) (err error) {
	if _, has := m.Sig[rule]; has {
		return fmt.Errorf("%w: %v", ErrAlreadyBuilt, rule)
	}
	nops, nbufs := len(m.Ops), m.Arena.Len()
	defer func() {
		if err != nil {
			m.Ops = m.Ops[:nops]
			m.Arena.Truncate(nbufs)
			delete(m.Sig, rule)
			delete(m.Params, rule)
			if m.Verbose {
				log.Println(err)
			}
		}
	}()

	cn := rule.Conn
	var target signal.Signal
	var deltaShape []int
	var tag string
	switch rule.Modifies {
	case learn.Encoders:
		if !cn.IsFactored {
			return fmt.Errorf("%w: %v", ErrUnfactoredEncoders, cn)
		}
		post, err := GetPostEns(cn)
		if err != nil {
			return err
		}
		target, err = m.SigTry(post, "encoders")
		if err != nil {
			return err
		}
		deltaShape = []int{post.NNeurons, post.Dims}
		tag = "encoders += delta"
	case learn.Decoders, learn.Weights:
		pre, err := GetPreEns(cn)
		if err != nil {
			return err
		}
		target, err = m.SigTry(cn, "weights")
		if err != nil {
			return err
		}
		if cn.IsFactored {
			deltaShape = []int{rule.SizeIn, pre.NNeurons}
		} else {
			post, err := GetPostEns(cn)
			if err != nil {
				return err
			}
			deltaShape = []int{post.NNeurons, pre.NNeurons}
		}
		tag = "weights += delta"
	default:
		return fmt.Errorf("%w: %v", ErrUnknownTarget, rule.Modifies)
	}
	if !signal.ShapeEqual(deltaShape, target.Shape) {
		return fmt.Errorf("%w: %v: delta %s does not match target %v", ErrShapeMismatch, rule, signal.ShapeString(deltaShape), target)
	}

	kind := rule.Type.Kind()
	if kind < 0 || kind >= learn.RuleKindsN || ruleBuilders[kind] == nil {
		return fmt.Errorf("%w: %v", ErrUnknownRule, kind)
	}

	delta := m.Arena.Add(fmt.Sprintf("%s.%s.delta", cn.Nm, rule.Type.TypeName()), deltaShape, nil)
	acc, err := ops.NewElementwiseInc(m.Common1, delta, target, tag)
	if err != nil {
		return err
	}
	m.AddOp(acc)
	m.SigOf(rule)["delta"] = delta

	if err = ruleBuilders[kind](m, rule); err != nil {
		return err
	}
	m.Rules = append(m.Rules, rule)
	if m.Verbose {
		log.Printf("BuildLearningRule: %v\n", rule)
	}
	return nil
}

// shapeErr wraps an operator construction error as ErrShapeMismatch
func shapeErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrShapeMismatch, err)
}

///////////////////////////////////////////////////////////////////////
//  BCM

func buildBCM(m *Model, rule *LearningRule) error {
	bcm := rule.Type.(*learn.BCM)
	pre, err := GetPreEns(rule.Conn)
	if err != nil {
		return err
	}
	post, err := GetPostEns(rule.Conn)
	if err != nil {
		return err
	}
	preActs, err := m.SigTry(pre.Neurons, "out")
	if err != nil {
		return err
	}
	postActs, err := m.SigTry(post.Neurons, "out")
	if err != nil {
		return err
	}
	preFiltered, err := m.BuildLowpass(bcm.PreTau, preActs)
	if err != nil {
		return err
	}
	postFiltered, err := m.BuildLowpass(bcm.PostTauEff, postActs)
	if err != nil {
		return err
	}
	theta, err := m.BuildLowpass(bcm.ThetaTau, postFiltered)
	if err != nil {
		return err
	}
	sm := m.SigOf(rule)
	op, err := learn.NewSimBCM(preFiltered, postFiltered, theta, sm["delta"], bcm.LearningRate, "")
	if err != nil {
		return shapeErr(err)
	}
	m.AddOp(op)

	sm["theta"] = theta
	sm["pre_filtered"] = preFiltered
	sm["post_filtered"] = postFiltered
	m.Params[rule] = nil
	return nil
}

///////////////////////////////////////////////////////////////////////
//  Oja

func buildOja(m *Model, rule *LearningRule) error {
	oja := rule.Type.(*learn.Oja)
	pre, err := GetPreEns(rule.Conn)
	if err != nil {
		return err
	}
	post, err := GetPostEns(rule.Conn)
	if err != nil {
		return err
	}
	preActs, err := m.SigTry(pre.Neurons, "out")
	if err != nil {
		return err
	}
	postActs, err := m.SigTry(post.Neurons, "out")
	if err != nil {
		return err
	}
	weights, err := m.SigTry(rule.Conn, "weights")
	if err != nil {
		return err
	}
	preFiltered, err := m.BuildLowpass(oja.PreTau, preActs)
	if err != nil {
		return err
	}
	postFiltered, err := m.BuildLowpass(oja.PostTauEff, postActs)
	if err != nil {
		return err
	}
	sm := m.SigOf(rule)
	op, err := learn.NewSimOja(preFiltered, postFiltered, weights, sm["delta"], oja.LearningRate, oja.Beta, "")
	if err != nil {
		return shapeErr(err)
	}
	m.AddOp(op)

	sm["pre_filtered"] = preFiltered
	sm["post_filtered"] = postFiltered
	m.Params[rule] = nil
	return nil
}

///////////////////////////////////////////////////////////////////////
//  Voja

func buildVoja(m *Model, rule *LearningRule) error {
	voja := rule.Type.(*learn.Voja)
	cn := rule.Conn
	if cn.Post.ObjKind() != EnsembleObj {
		return fmt.Errorf("%w: %v: Voja requires an ensemble post", ErrUnsuitablePost, cn.Post)
	}
	post := cn.Post.(*Ensemble)
	if rule.SizeIn != 1 {
		return fmt.Errorf("%w: %v: Voja learning signal size_in must be 1, is %d", ErrShapeMismatch, rule, rule.SizeIn)
	}
	be, ok := m.Params[post].(*BuiltEnsemble)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotBuilt, post)
	}
	postActs, err := m.SigTry(post, "out")
	if err != nil {
		return err
	}
	scaledEncoders, err := m.SigTry(post, "encoders")
	if err != nil {
		return err
	}
	preDecoded, err := m.SigTry(cn, "out")
	if err != nil {
		return err
	}

	scale := make([]float32, len(be.Gain))
	for i, g := range be.Gain {
		scale[i] = g / post.Radius
	}
	if len(scale) != postActs.Size() {
		return fmt.Errorf("%w: %v: scale len %d, post activities %v", ErrShapeMismatch, rule, len(scale), postActs)
	}

	postFiltered := postActs
	if voja.PostTau > 0 {
		postFiltered, err = m.BuildLowpass(voja.PostTau, postActs)
		if err != nil {
			return err
		}
	}

	learning := m.Arena.Add(cn.Nm+".Voja.learning", []int{rule.SizeIn}, nil)
	m.AddOp(ops.NewReset(learning, 1.0, ""))

	sm := m.SigOf(rule)
	op, err := learn.NewSimVoja(preDecoded, postFiltered, scaledEncoders, sm["delta"], scale, learning, voja.LearningRate)
	if err != nil {
		return shapeErr(err)
	}
	m.AddOp(op)

	sm["in"] = learning
	sm["scaled_encoders"] = scaledEncoders
	sm["post_filtered"] = postFiltered
	m.Params[rule] = nil
	return nil
}

///////////////////////////////////////////////////////////////////////
//  PES

// buildPES computes delta = outer(local_error, activities) where the
// correction is -lr * dt / n_neurons * error, and local_error is the
// correction for factored connections or the correction projected
// through the post encoders for unfactored ones.
func buildPES(m *Model, rule *LearningRule) error {
	pes := rule.Type.(*learn.PES)
	cn := rule.Conn

	var nNeurons int
	switch cn.Pre.ObjKind() {
	case EnsembleObj:
		nNeurons = cn.Pre.(*Ensemble).NNeurons
	case NeuronsObj:
		nNeurons = cn.Pre.SizeOut()
	case NodeObj:
		return fmt.Errorf("%w: %v: PES requires neural pre activities", ErrUnsuitablePre, cn.Pre)
	}
	var encoders signal.Signal
	if !cn.IsFactored {
		post, err := GetPostEns(cn)
		if err != nil {
			return err
		}
		encoders, err = m.SigTry(post, "encoders")
		if err != nil {
			return err
		}
	}
	preActs, err := m.SigTry(cn.Pre, "out")
	if err != nil {
		return err
	}

	errSig := m.Arena.Add(cn.Nm+".PES.error", []int{rule.SizeIn}, nil)
	m.AddOp(ops.NewReset(errSig, 0, ""))

	acts, err := m.BuildLowpass(pes.PreTau, preActs)
	if err != nil {
		return err
	}

	correction := m.Arena.Add(cn.Nm+".PES.correction", errSig.Shape, nil)
	m.AddOp(ops.NewReset(correction, 0, ""))
	lr := m.Arena.AddConst(cn.Nm+".PES.learning_rate", nil, []float32{-pes.LearningRate * m.Dt / float32(nNeurons)})
	corr, err := ops.NewDotInc(lr, errSig, correction, "PES:correct")
	if err != nil {
		return shapeErr(err)
	}
	m.AddOp(corr)

	localError := correction
	if !cn.IsFactored {
		encoded := m.Arena.Add(cn.Nm+".PES.encoded", []int{encoders.Dim(0)}, nil)
		m.AddOp(ops.NewReset(encoded, 0, ""))
		enc, err := ops.NewDotInc(encoders, correction, encoded, "PES:encode")
		if err != nil {
			return shapeErr(err)
		}
		m.AddOp(enc)
		localError = encoded
	}

	sm := m.SigOf(rule)
	delta := sm["delta"]
	m.AddOp(ops.NewReset(delta, 0, ""))
	inc, err := ops.NewElementwiseInc(localError.Column(), acts.Row(), delta, "PES:Inc Delta")
	if err != nil {
		return shapeErr(err)
	}
	m.AddOp(inc)

	sm["in"] = errSig
	sm["error"] = errSig
	sm["correction"] = correction
	sm["local_error"] = localError
	sm["activities"] = acts
	m.Params[rule] = nil
	return nil
}
