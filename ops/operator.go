// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package ops defines the Operator contract: a unit of per-step computation
that declares how it touches each Signal (Sets, Incs, Reads, Updates),
separately from the step function closed over the resolved buffers.
The declared sets can be checked (Validate, Conflict) before anything
runs, and are what a scheduler uses to order operators.

It also provides the generic operators (Reset, Copy, ElementwiseInc,
DotInc) that learning rules compose.
*/
package ops

import (
	"errors"
	"fmt"

	"github.com/emer/learnrules/signal"
)

var (
	// ErrContract is returned when an operator's declared dependencies are inconsistent
	ErrContract = errors.New("operator dependency contract violated")
)

// StepFunc is the per-step function for an operator, closed over its buffers
type StepFunc func()

// Operator is one unit of per-step computation with declared signal dependencies.
type Operator interface {
	fmt.Stringer

	// Deps returns the declared dependency sets
	Deps() *Deps

	// Tag returns the optional descriptive tag
	Tag() string

	// MakeStep resolves the operator's signals in the arena and returns
	// the step function. dt is the simulation timestep.
	// Step functions may only read from Reads and Updates, and only write
	// to Sets, Incs and Updates.
	MakeStep(ar *signal.Arena, dt float32) StepFunc
}

// Deps are the four dependency sets of an operator
type Deps struct {

	// exclusive writes, first touch of the signal each step
	Sets []signal.Signal

	// additive writes
	Incs []signal.Signal

	// read-only access
	Reads []signal.Signal

	// read, then overwritten for the next step
	Updates []signal.Signal
}

// Of returns the signals for given access kind
func (dp *Deps) Of(ak AccessKinds) []signal.Signal {
	switch ak {
	case Sets:
		return dp.Sets
	case Incs:
		return dp.Incs
	case Reads:
		return dp.Reads
	case Updates:
		return dp.Updates
	}
	return nil
}

// All returns all of the signals, in Sets, Incs, Reads, Updates order
func (dp *Deps) All() []signal.Signal {
	all := make([]signal.Signal, 0, len(dp.Sets)+len(dp.Incs)+len(dp.Reads)+len(dp.Updates))
	all = append(all, dp.Sets...)
	all = append(all, dp.Incs...)
	all = append(all, dp.Reads...)
	all = append(all, dp.Updates...)
	return all
}

// Writes returns all of the written signals: Sets, Incs, Updates
func (dp *Deps) Writes() []signal.Signal {
	wr := make([]signal.Signal, 0, len(dp.Sets)+len(dp.Incs)+len(dp.Updates))
	wr = append(wr, dp.Sets...)
	wr = append(wr, dp.Incs...)
	wr = append(wr, dp.Updates...)
	return wr
}

// Bases returns the base buffer indexes touched with given access kind
func (dp *Deps) Bases(ak AccessKinds) map[int]bool {
	bs := make(map[int]bool)
	for _, sg := range dp.Of(ak) {
		bs[sg.Idx] = true
	}
	return bs
}

// Access lists the signals an operator touches with one access kind
type Access struct {
	Kind    AccessKinds
	Signals []string
}

// Accesses returns the non-empty access kinds, in Sets, Incs, Reads, Updates order
func (dp *Deps) Accesses() []Access {
	var acs []Access
	for ak := Sets; ak < AccessKindsN; ak++ {
		sgs := dp.Of(ak)
		if len(sgs) == 0 {
			continue
		}
		ac := Access{Kind: ak, Signals: make([]string, len(sgs))}
		for i, sg := range sgs {
			ac.Signals[i] = sg.String()
		}
		acs = append(acs, ac)
	}
	return acs
}

// OpBase provides the Deps and Tag for embedding in operator types
type OpBase struct {

	// declared dependencies
	Dp Deps

	// optional descriptive tag
	Tg string
}

func (ob *OpBase) Deps() *Deps { return &ob.Dp }
func (ob *OpBase) Tag() string { return ob.Tg }

// TagStr returns the tag formatted for inclusion in String output
func (ob *OpBase) TagStr() string {
	if ob.Tg == "" {
		return ""
	}
	return fmt.Sprintf(" %q", ob.Tg)
}

//////////////////////////////////////////////////////////////////////////////////////
//  Contract checks

// Validate checks that the declared dependencies of op are consistent:
// Sets and Incs are disjoint by base buffer, no base buffer is set twice,
// and no read-only signal is written.
func Validate(op Operator) error {
	dp := op.Deps()
	sets := make(map[int]bool, len(dp.Sets))
	for _, sg := range dp.Sets {
		if sets[sg.Idx] {
			return fmt.Errorf("%w: %v sets %v more than once", ErrContract, op, sg.Name)
		}
		sets[sg.Idx] = true
	}
	for _, sg := range dp.Incs {
		if sets[sg.Idx] {
			return fmt.Errorf("%w: %v both sets and incs %v", ErrContract, op, sg.Name)
		}
	}
	for _, sg := range dp.Writes() {
		if sg.ReadOnly {
			return fmt.Errorf("%w: %v writes read-only signal %v", ErrContract, op, sg.Name)
		}
	}
	return nil
}

// Conflict returns true if a and b cannot safely run concurrently:
// a write (Sets, Incs, Updates) of one touches any signal of the other,
// unless every such intersection is between Incs of both.
func Conflict(a, b Operator) bool {
	return writeConflict(a.Deps(), b.Deps()) || writeConflict(b.Deps(), a.Deps())
}

func writeConflict(w, o *Deps) bool {
	oAll := make(map[int]bool)
	for _, sg := range o.All() {
		oAll[sg.Idx] = true
	}
	for _, sg := range w.Writes() {
		if !oAll[sg.Idx] {
			continue
		}
		if onlyInc(w, sg.Idx) && onlyInc(o, sg.Idx) {
			continue
		}
		return true
	}
	return false
}

// onlyInc returns true if base idx appears in dp only as an Inc
func onlyInc(dp *Deps, idx int) bool {
	for _, ak := range []AccessKinds{Sets, Reads, Updates} {
		for _, sg := range dp.Of(ak) {
			if sg.Idx == idx {
				return false
			}
		}
	}
	return true
}
