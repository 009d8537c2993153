// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package builder turns a description of ensembles, nodes, connections and
learning rules into signals in a signal.Arena and the operators that
update them, ready to be run by a sim.Stepper.
*/
package builder

import (
	"fmt"
	"log"

	"github.com/emer/emergent/v2/params"
	"github.com/emer/learnrules/ops"
	"github.com/emer/learnrules/signal"
	"github.com/emer/learnrules/sim"
	"github.com/emer/learnrules/synapses"
)

// SigMap maps signal names ("out", "encoders", "delta" ...) to signals
// for one object.
type SigMap map[string]signal.Signal

// BuiltEnsemble holds the build-time parameters of an ensemble
type BuiltEnsemble struct {

	// per-neuron gain
	Gain []float32

	// unit-length encoders, neurons x dims
	Encoders []float32

	// encoders multiplied by gain / radius, neurons x dims
	ScaledEncoders []float32
}

// Model accumulates the signals and operators of a built network
type Model struct {

	// backing storage for all signals
	Arena *signal.Arena

	// signals of each built object, keyed by the object pointer
	Sig map[any]SigMap

	// build-time parameters of each built object (nil for learning rules)
	Params map[any]any

	// operators in the order they were added
	Ops []ops.Operator

	// simulation time step in seconds
	Dt float32 `def:"0.001"`

	// read-only scalar 0
	Common0 signal.Signal

	// read-only scalar 1
	Common1 signal.Signal

	// learning rules that have been built, in order
	Rules []*LearningRule

	// print build steps to the log
	Verbose bool
}

// NewModel returns a new empty model with given time step
func NewModel(dt float32) *Model {
	m := &Model{Dt: dt}
	m.Arena = signal.NewArena()
	m.Sig = make(map[any]SigMap)
	m.Params = make(map[any]any)
	m.Common0 = m.Arena.AddConst("Common[0]", nil, []float32{0})
	m.Common1 = m.Arena.AddConst("Common[1]", nil, []float32{1})
	return m
}

// SigOf returns the signal map for given object, creating it if needed
func (m *Model) SigOf(obj any) SigMap {
	sm, ok := m.Sig[obj]
	if !ok {
		sm = make(SigMap)
		m.Sig[obj] = sm
	}
	return sm
}

// SigTry returns the named signal of given object, or ErrNotBuilt
func (m *Model) SigTry(obj any, name string) (signal.Signal, error) {
	if sm, ok := m.Sig[obj]; ok {
		if sg, has := sm[name]; has {
			return sg, nil
		}
	}
	return signal.Signal{}, fmt.Errorf("%w: %v has no signal %q", ErrNotBuilt, obj, name)
}

// AddOp appends an operator to the model
func (m *Model) AddOp(op ops.Operator) {
	if m.Verbose {
		log.Printf("AddOp: %v\n", op)
	}
	m.Ops = append(m.Ops, op)
}

// BuildLowpass allocates a signal with the shape of in, and adds a
// SimLowpass operator filtering in into it, returning the filtered signal.
// Tau of 0 passes the input through each step.
func (m *Model) BuildLowpass(tau float32, in signal.Signal) (signal.Signal, error) {
	filt := synapses.Lowpass{Tau: tau}
	out := m.Arena.Add(fmt.Sprintf("%s.%s", in.Name, filt.String()), in.Shape, nil)
	op, err := synapses.NewSimLowpass(filt, in, out)
	if err != nil {
		return out, err
	}
	m.AddOp(op)
	return out, nil
}

///////////////////////////////////////////////////////////////////////
//  Objects

// AddEnsemble builds the signals of an ensemble: neuron output, the
// ensemble output (an alias of the neuron output), and the encoders
// scaled by gain / radius. gain may be nil for all 1s, and encoders may
// be nil for axis-aligned encoders alternating in sign.
func (m *Model) AddEnsemble(ens *Ensemble, gain, encoders []float32) error {
	nn, nd := ens.NNeurons, ens.Dims
	if gain == nil {
		gain = make([]float32, nn)
		for i := range gain {
			gain[i] = 1
		}
	}
	if encoders == nil {
		encoders = AxisEncoders(nn, nd)
	}
	if len(gain) != nn || len(encoders) != nn*nd {
		return fmt.Errorf("%w: %v: gain len %d, encoders len %d", ErrShapeMismatch, ens, len(gain), len(encoders))
	}
	if ens.Radius <= 0 {
		return fmt.Errorf("%v: radius must be positive, is %g", ens, ens.Radius)
	}
	be := &BuiltEnsemble{Gain: append([]float32{}, gain...), Encoders: append([]float32{}, encoders...)}
	be.ScaledEncoders = make([]float32, nn*nd)
	for i := 0; i < nn; i++ {
		sc := gain[i] / ens.Radius
		for j := 0; j < nd; j++ {
			be.ScaledEncoders[i*nd+j] = sc * encoders[i*nd+j]
		}
	}
	out := m.Arena.Add(ens.Neurons.Name()+".out", []int{nn}, nil)
	m.SigOf(ens.Neurons)["out"] = out
	sm := m.SigOf(ens)
	sm["out"] = out
	sm["encoders"] = m.Arena.Add(ens.Nm+".scaled_encoders", []int{nn, nd}, be.ScaledEncoders)
	m.Params[ens] = be
	if m.Verbose {
		log.Printf("AddEnsemble: %v\n", ens)
	}
	return nil
}

// AxisEncoders returns unit encoders for n neurons in d dims, with
// neuron i along axis i % d and sign alternating every d neurons.
func AxisEncoders(n, d int) []float32 {
	enc := make([]float32, n*d)
	if d == 0 {
		return enc
	}
	for i := 0; i < n; i++ {
		sgn := float32(1)
		if (i/d)%2 == 1 {
			sgn = -1
		}
		enc[i*d+i%d] = sgn
	}
	return enc
}

// AddNode builds the output signal of a node
func (m *Model) AddNode(nd *Node) {
	m.SigOf(nd)["out"] = m.Arena.Add(nd.Nm+".out", []int{nd.Out}, nil)
	if m.Verbose {
		log.Printf("AddNode: %v\n", nd)
	}
}

// ConnWeightShape returns the shape of the weights of given connection:
// SizeOut x pre outputs for factored, post neurons x pre neurons otherwise.
func ConnWeightShape(cn *Connection) ([]int, error) {
	if cn.IsFactored {
		return []int{cn.SizeOut(), preNeuronsOrOut(cn.Pre)}, nil
	}
	pre, err := GetPreEns(cn)
	if err != nil {
		return nil, err
	}
	post, err := GetPostEns(cn)
	if err != nil {
		return nil, err
	}
	return []int{post.NNeurons, pre.NNeurons}, nil
}

// preNeuronsOrOut is the number of pre neurons if neural, else output size
func preNeuronsOrOut(obj Object) int {
	switch obj.ObjKind() {
	case EnsembleObj:
		return obj.(*Ensemble).NNeurons
	default:
		return obj.SizeOut()
	}
}

// AddConnection builds the weights and decoded output signals of a
// connection. weights may be nil for zeros. Pre and post must already be built.
func (m *Model) AddConnection(cn *Connection, weights []float32) error {
	if _, err := m.SigTry(cn.Pre, "out"); err != nil {
		return err
	}
	if _, err := m.SigTry(cn.Post, "out"); err != nil {
		return err
	}
	shp, err := ConnWeightShape(cn)
	if err != nil {
		return err
	}
	if weights != nil && len(weights) != signal.ShapeSize(shp) {
		return fmt.Errorf("%w: %v: weights len %d, shape %s", ErrShapeMismatch, cn, len(weights), signal.ShapeString(shp))
	}
	sm := m.SigOf(cn)
	sm["weights"] = m.Arena.Add(cn.Nm+".weights", shp, weights)
	sm["out"] = m.Arena.Add(cn.Nm+".out", []int{cn.SizeOut()}, nil)
	if m.Verbose {
		log.Printf("AddConnection: %v weights %s\n", cn, signal.ShapeString(shp))
	}
	return nil
}

///////////////////////////////////////////////////////////////////////
//  Params, stepping

// ApplyParams applies given params sheet to the rule types of given
// learning rules, and calls Update on each. Selectors match the rule
// TypeName ("PES"), .Class or #Name. Rules must be re-built after
// changing their params, as operators capture values at build time.
func ApplyParams(rules []*LearningRule, sheet *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	for _, rule := range rules {
		app, err := sheet.Apply(rule.Type, setMsg)
		if app {
			applied = true
			rule.Type.Update()
		}
		if err != nil {
			rerr = err
		}
	}
	return applied, rerr
}

// ApplyParams applies given params sheet to the learning rules built so far
func (m *Model) ApplyParams(sheet *params.Sheet, setMsg bool) (bool, error) {
	return ApplyParams(m.Rules, sheet, setMsg)
}

// NewStepper returns a stepper running the operators of this model
func (m *Model) NewStepper(nThreads int) (*sim.Stepper, error) {
	return sim.NewStepper(m.Arena, m.Ops, m.Dt, nThreads)
}
