// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package builder

import (
	"fmt"

	"github.com/emer/learnrules/learn"
	"github.com/goki/ki/kit"
)

// ObjKinds are the kinds of connectable objects
type ObjKinds int32

//go:generate stringer -type=ObjKinds

var KiT_ObjKinds = kit.Enums.AddEnum(ObjKindsN, kit.NotBitFlag, nil)

func (ev ObjKinds) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ObjKinds) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The object kinds
const (
	// EnsembleObj is an *Ensemble
	EnsembleObj ObjKinds = iota

	// NeuronsObj is the *Neurons of an ensemble
	NeuronsObj

	// NodeObj is a non-neural *Node
	NodeObj

	ObjKindsN
)

// Object is anything that can be the pre or post of a Connection.
// The set of objects is closed: *Ensemble, *Neurons, *Node.
type Object interface {
	fmt.Stringer

	// ObjKind returns the kind of object
	ObjKind() ObjKinds

	// Name returns the name of the object
	Name() string

	// SizeIn is the dimensionality of input to the object
	SizeIn() int

	// SizeOut is the dimensionality of output from the object
	SizeOut() int
}

// Ensemble is a population of neurons representing a vector of Dims dimensions
type Ensemble struct {

	// name of the ensemble
	Nm string

	// number of neurons
	NNeurons int

	// dimensionality of the represented vector
	Dims int

	// representational radius -- encoders are scaled by gain / radius
	Radius float32 `def:"1"`

	// the neurons of this ensemble, as a connectable object
	Neurons *Neurons
}

// NewEnsemble returns a new ensemble with radius 1
func NewEnsemble(name string, nNeurons, dims int) *Ensemble {
	ens := &Ensemble{Nm: name, NNeurons: nNeurons, Dims: dims, Radius: 1}
	ens.Neurons = &Neurons{Ens: ens}
	return ens
}

func (ens *Ensemble) Name() string { return ens.Nm }
func (ens *Ensemble) SizeIn() int  { return ens.Dims }
func (ens *Ensemble) SizeOut() int { return ens.Dims }
func (ens *Ensemble) String() string {
	return fmt.Sprintf("Ensemble(%s, n=%d, d=%d)", ens.Nm, ens.NNeurons, ens.Dims)
}
func (ens *Ensemble) ObjKind() ObjKinds { return EnsembleObj }

// Neurons are the neurons of an Ensemble, connected to directly
// (bypassing encoders / decoders)
type Neurons struct {
	Ens *Ensemble
}

func (nr *Neurons) Name() string      { return nr.Ens.Nm + ".neurons" }
func (nr *Neurons) SizeIn() int       { return nr.Ens.NNeurons }
func (nr *Neurons) SizeOut() int      { return nr.Ens.NNeurons }
func (nr *Neurons) String() string    { return fmt.Sprintf("Neurons(%s)", nr.Ens.Nm) }
func (nr *Neurons) ObjKind() ObjKinds { return NeuronsObj }

// Node is a non-neural object that provides or receives values
type Node struct {
	Nm  string
	In  int
	Out int
}

// NewNode returns a new node with given input and output sizes
func NewNode(name string, sizeIn, sizeOut int) *Node {
	return &Node{Nm: name, In: sizeIn, Out: sizeOut}
}

func (nd *Node) Name() string      { return nd.Nm }
func (nd *Node) SizeIn() int       { return nd.In }
func (nd *Node) SizeOut() int      { return nd.Out }
func (nd *Node) String() string    { return fmt.Sprintf("Node(%s, in=%d, out=%d)", nd.Nm, nd.In, nd.Out) }
func (nd *Node) ObjKind() ObjKinds { return NodeObj }

// Connection connects Pre to Post. If IsFactored, its weights are
// decoders (SizeOut x pre outputs) and the post encoders are applied
// separately; otherwise its weights are a dense post neurons x pre neurons matrix.
type Connection struct {
	Nm         string
	Pre        Object
	Post       Object
	IsFactored bool

	// learning rules attached to this connection
	Rules []*LearningRule
}

// NewConnection returns a new connection
func NewConnection(name string, pre, post Object, factored bool) *Connection {
	return &Connection{Nm: name, Pre: pre, Post: post, IsFactored: factored}
}

func (cn *Connection) Name() string { return cn.Nm }

// SizeOut is the dimensionality of the connection output, i.e., post input
func (cn *Connection) SizeOut() int { return cn.Post.SizeIn() }

func (cn *Connection) String() string {
	return fmt.Sprintf("Connection(%s: %s -> %s)", cn.Nm, cn.Pre.Name(), cn.Post.Name())
}

// AddLearningRule attaches a learning rule of given type to the connection,
// with target and input size set from the rule type.
func (cn *Connection) AddLearningRule(rt learn.Rule) *LearningRule {
	rule := &LearningRule{Conn: cn, Type: rt, Modifies: rt.Modifies(), SizeIn: rt.SizeIn(cn.SizeOut())}
	cn.Rules = append(cn.Rules, rule)
	return rule
}

// LearningRule is one learning rule type applied to one connection
type LearningRule struct {

	// connection being learned
	Conn *Connection

	// the learning rule type and its parameters
	Type learn.Rule

	// which matrix is modified
	Modifies learn.Targets

	// width of the rule input signal (error for PES, gating for Voja)
	SizeIn int
}

func (rule *LearningRule) String() string {
	return fmt.Sprintf("LearningRule(%v modifies %v on %s)", rule.Type.TypeName(), rule.Modifies, rule.Conn.Nm)
}
