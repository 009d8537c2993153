// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package learn provides the learning rule descriptors (BCM, Oja, Voja, PES)
and the operators that compute each step's delta for the rules that
have a dedicated update law (SimBCM, SimOja, SimVoja). PES is composed
from the generic operators in package ops by the builder.

The set of rules is closed: RuleKinds enumerates them, and builders
dispatch on Kind().
*/
package learn

import (
	"fmt"
	"strings"

	"github.com/goki/ki/kit"
)

///////////////////////////////////////////////////////////////////////
//  RuleKinds

// RuleKinds are the kinds of learning rule
type RuleKinds int32

//go:generate stringer -type=RuleKinds

var KiT_RuleKinds = kit.Enums.AddEnum(RuleKindsN, kit.NotBitFlag, nil)

func (ev RuleKinds) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *RuleKinds) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The learning rule kinds
const (
	// BCMRule is Bienenstock-Cooper-Munro Hebbian learning with a sliding threshold
	BCMRule RuleKinds = iota

	// OjaRule is normalized Hebbian learning with multiplicative forgetting
	OjaRule

	// VojaRule is the vector-space analog of Oja's rule, applied to encoders
	VojaRule

	// PESRule is Prescribed Error Sensitivity: supervised, error-driven learning
	PESRule

	RuleKindsN
)

///////////////////////////////////////////////////////////////////////
//  Targets

// Targets are the connection matrices a learning rule can modify
type Targets int32

//go:generate stringer -type=Targets

var KiT_Targets = kit.Enums.AddEnum(TargetsN, kit.NotBitFlag, nil)

func (ev Targets) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Targets) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The learning targets
const (
	// Encoders of the post-synaptic ensemble (factored connections only)
	Encoders Targets = iota

	// Decoders of a factored connection
	Decoders

	// Weights of the connection: full matrix if unfactored, decoders if factored
	Weights

	TargetsN
)

// ParseTargets returns the target named by s, which is
// case-insensitive (e.g., "encoders")
func ParseTargets(s string) (Targets, error) {
	nm := strings.ToLower(strings.TrimSpace(s))
	if nm != "" {
		nm = strings.ToUpper(nm[:1]) + nm[1:]
	}
	var tg Targets
	if err := tg.FromString(nm); err != nil {
		return TargetsN, fmt.Errorf("unknown learning target %q", s)
	}
	return tg, nil
}

///////////////////////////////////////////////////////////////////////
//  Rule

// Rule is the interface for all learning rule descriptors.
// The set of implementations is closed: BCM, Oja, Voja, PES.
type Rule interface {
	fmt.Stringer

	// Kind returns the kind of rule, used for builder dispatch
	Kind() RuleKinds

	// Modifies returns the default target matrix for the rule
	Modifies() Targets

	// Rate returns the learning rate
	Rate() float32

	// SizeIn returns the width of the rule's input signal, given the
	// size_out of the connection it is attached to
	SizeIn(connSizeOut int) int

	// Defaults sets default parameter values
	Defaults()

	// Update must be called after any changes to parameters
	Update()

	// TypeName, Class and Name are used for params styling
	TypeName() string
	Class() string
	Name() string
}

// Style has the name and class used to select a rule in a params.Sheet
type Style struct {

	// name of this rule instance -- selected by #Name
	Nm string

	// space-separated classes -- selected by .Class
	Cls string
}

func (st *Style) Name() string  { return st.Nm }
func (st *Style) Class() string { return st.Cls }

// SetName sets the name for params selection
func (st *Style) SetName(nm string) { st.Nm = nm }

// AddClass adds a class for params selection
func (st *Style) AddClass(cls string) {
	if st.Cls == "" {
		st.Cls = cls
		return
	}
	st.Cls += " " + cls
}

// NewRule returns a new rule of given kind with default parameters
func NewRule(kind RuleKinds) (Rule, error) {
	var rl Rule
	switch kind {
	case BCMRule:
		rl = &BCM{}
	case OjaRule:
		rl = &Oja{}
	case VojaRule:
		rl = &Voja{}
	case PESRule:
		rl = &PES{}
	default:
		return nil, fmt.Errorf("unknown learning rule kind: %v", kind)
	}
	rl.Defaults()
	return rl, nil
}

///////////////////////////////////////////////////////////////////////
//  BCM

// BCM is the Bienenstock-Cooper-Munro learning rule: Hebbian learning
// gated by a sliding threshold on post-synaptic activity.
type BCM struct {
	Style

	// learning rate
	LearningRate float32 `def:"1e-9" min:"0"`

	// time constant for filtering pre-synaptic activity
	PreTau float32 `def:"0.005" min:"0"`

	// time constant for filtering post-synaptic activity -- 0 = same as PreTau
	PostTau float32 `def:"0" min:"0"`

	// time constant for filtering filtered post activity into the sliding threshold theta
	ThetaTau float32 `def:"1" min:"0"`

	// effective post-synaptic time constant
	PostTauEff float32 `inactive:"+" view:"-" json:"-" xml:"-"`
}

func (rl *BCM) Defaults() {
	rl.LearningRate = 1e-9
	rl.PreTau = 0.005
	rl.PostTau = 0
	rl.ThetaTau = 1.0
	rl.Update()
}

func (rl *BCM) Update() {
	rl.PostTauEff = rl.PostTau
	if rl.PostTauEff == 0 {
		rl.PostTauEff = rl.PreTau
	}
}

func (rl *BCM) Kind() RuleKinds            { return BCMRule }
func (rl *BCM) Modifies() Targets          { return Weights }
func (rl *BCM) Rate() float32              { return rl.LearningRate }
func (rl *BCM) SizeIn(connSizeOut int) int { return 0 }
func (rl *BCM) TypeName() string           { return "BCM" }

func (rl *BCM) String() string {
	return fmt.Sprintf("BCM(learning_rate=%g, pre_tau=%g, post_tau=%g, theta_tau=%g)", rl.LearningRate, rl.PreTau, rl.PostTauEff, rl.ThetaTau)
}

///////////////////////////////////////////////////////////////////////
//  Oja

// Oja is Oja's learning rule: Hebbian learning with a multiplicative
// forgetting term that keeps weights bounded.
type Oja struct {
	Style

	// learning rate
	LearningRate float32 `def:"1e-6" min:"0"`

	// time constant for filtering pre-synaptic activity
	PreTau float32 `def:"0.005" min:"0"`

	// time constant for filtering post-synaptic activity -- 0 = same as PreTau
	PostTau float32 `def:"0" min:"0"`

	// weight of the forgetting term relative to the Hebbian term
	Beta float32 `def:"1" min:"0"`

	// effective post-synaptic time constant
	PostTauEff float32 `inactive:"+" view:"-" json:"-" xml:"-"`
}

func (rl *Oja) Defaults() {
	rl.LearningRate = 1e-6
	rl.PreTau = 0.005
	rl.PostTau = 0
	rl.Beta = 1.0
	rl.Update()
}

func (rl *Oja) Update() {
	rl.PostTauEff = rl.PostTau
	if rl.PostTauEff == 0 {
		rl.PostTauEff = rl.PreTau
	}
}

func (rl *Oja) Kind() RuleKinds            { return OjaRule }
func (rl *Oja) Modifies() Targets          { return Weights }
func (rl *Oja) Rate() float32              { return rl.LearningRate }
func (rl *Oja) SizeIn(connSizeOut int) int { return 0 }
func (rl *Oja) TypeName() string           { return "Oja" }

func (rl *Oja) String() string {
	return fmt.Sprintf("Oja(learning_rate=%g, pre_tau=%g, post_tau=%g, beta=%g)", rl.LearningRate, rl.PreTau, rl.PostTauEff, rl.Beta)
}

///////////////////////////////////////////////////////////////////////
//  Voja

// Voja is the vector-space version of Oja's rule, which moves the
// encoders of active post-synaptic neurons toward the decoded input.
type Voja struct {
	Style

	// learning rate
	LearningRate float32 `def:"0.01" min:"0"`

	// time constant for filtering post-synaptic activity -- 0 = use raw activity
	PostTau float32 `def:"0.005" min:"0"`
}

func (rl *Voja) Defaults() {
	rl.LearningRate = 1e-2
	rl.PostTau = 0.005
	rl.Update()
}

func (rl *Voja) Update() {
}

func (rl *Voja) Kind() RuleKinds            { return VojaRule }
func (rl *Voja) Modifies() Targets          { return Encoders }
func (rl *Voja) Rate() float32              { return rl.LearningRate }
func (rl *Voja) SizeIn(connSizeOut int) int { return 1 }
func (rl *Voja) TypeName() string           { return "Voja" }

func (rl *Voja) String() string {
	return fmt.Sprintf("Voja(learning_rate=%g, post_tau=%g)", rl.LearningRate, rl.PostTau)
}

///////////////////////////////////////////////////////////////////////
//  PES

// PES is the Prescribed Error Sensitivity rule: decoders (or weights)
// are moved to reduce an externally supplied error signal.
type PES struct {
	Style

	// learning rate
	LearningRate float32 `def:"1e-4" min:"0"`

	// time constant for filtering pre-synaptic activity
	PreTau float32 `def:"0.005" min:"0"`
}

func (rl *PES) Defaults() {
	rl.LearningRate = 1e-4
	rl.PreTau = 0.005
	rl.Update()
}

func (rl *PES) Update() {
}

func (rl *PES) Kind() RuleKinds            { return PESRule }
func (rl *PES) Modifies() Targets          { return Decoders }
func (rl *PES) Rate() float32              { return rl.LearningRate }
func (rl *PES) SizeIn(connSizeOut int) int { return connSizeOut }
func (rl *PES) TypeName() string           { return "PES" }

func (rl *PES) String() string {
	return fmt.Sprintf("PES(learning_rate=%g, pre_tau=%g)", rl.LearningRate, rl.PreTau)
}
