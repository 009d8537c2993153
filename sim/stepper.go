// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sim runs a list of operators over a signal.Arena, one time step
at a time, in an order consistent with their declared signal accesses:
for each base buffer, all sets happen before all incs, which happen
before all reads, which happen before all updates.
*/
package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/v2/timer"
	"github.com/emer/learnrules/ops"
	"github.com/emer/learnrules/signal"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

var (
	// ErrCycle is returned when the operator dependencies cannot be ordered
	ErrCycle = errors.New("operator dependency cycle")

	// ErrMultipleWriters is more than one operator setting, or updating, the same buffer
	ErrMultipleWriters = errors.New("signal written by more than one operator")
)

// Stepper runs operators in dependency order
type Stepper struct {

	// signal storage
	Arena *signal.Arena

	// operators, in the order given
	Ops []ops.Operator

	// time step in seconds
	Dt float32

	// number of goroutines to use within a level -- 1 = run everything in order on the calling goroutine
	NThreads int `min:"1"`

	// operator indexes in execution order
	Order []int

	// levels of the execution order: ops in a level have no dependencies on each other.
	// Each level is a list of groups, and each group is run in order by one goroutine.
	Levels [][][]int

	// number of steps taken since the last Reset
	NSteps int

	// simulated time since the last Reset, in seconds
	Time float32

	// timers for each major function
	FunTimes map[string]*timer.Time `view:"-"`

	steps []ops.StepFunc
}

// NewStepper validates each operator, orders them, and makes their step functions.
func NewStepper(ar *signal.Arena, opl []ops.Operator, dt float32, nThreads int) (*Stepper, error) {
	if nThreads < 1 {
		nThreads = 1
	}
	st := &Stepper{Arena: ar, Ops: opl, Dt: dt, NThreads: nThreads}
	st.FunTimes = make(map[string]*timer.Time)
	for _, op := range opl {
		if err := ops.Validate(op); err != nil {
			return nil, err
		}
	}
	if err := st.checkWriters(); err != nil {
		return nil, err
	}
	order, level, err := TopoSort(DepGraph(opl))
	if err != nil {
		return nil, err
	}
	st.Order = order
	st.Levels = st.groupLevels(order, level)
	st.steps = make([]ops.StepFunc, len(opl))
	for i, op := range opl {
		st.steps[i] = op.MakeStep(ar, dt)
	}
	return st, nil
}

// checkWriters ensures that each base buffer is set by at most one
// operator, and updated by at most one operator.
func (st *Stepper) checkWriters() error {
	for _, ak := range []ops.AccessKinds{ops.Sets, ops.Updates} {
		owner := make(map[int]int)
		for i, op := range st.Ops {
			for idx := range op.Deps().Bases(ak) {
				if j, has := owner[idx]; has && j != i {
					return fmt.Errorf("%w: %v and %v both %v buffer %d", ErrMultipleWriters, st.Ops[j], op, ak, idx)
				}
				owner[idx] = i
			}
		}
	}
	return nil
}

// DepGraph returns the operator dependency graph: node i is opl[i], and
// an edge from a to b means a must run before b.
func DepGraph(opl []ops.Operator) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for i := range opl {
		g.AddNode(simple.Node(i))
	}
	// per base buffer: ops accessing it by each kind
	byBase := make(map[int]*[ops.AccessKindsN][]int)
	for i, op := range opl {
		dp := op.Deps()
		for ak := ops.Sets; ak < ops.AccessKindsN; ak++ {
			for idx := range dp.Bases(ak) {
				acc, ok := byBase[idx]
				if !ok {
					acc = &[ops.AccessKindsN][]int{}
					byBase[idx] = acc
				}
				acc[ak] = append(acc[ak], i)
			}
		}
	}
	for _, acc := range byBase {
		for ak := ops.Sets; ak < ops.AccessKindsN; ak++ {
			for bk := ak + 1; bk < ops.AccessKindsN; bk++ {
				for _, a := range acc[ak] {
					for _, b := range acc[bk] {
						if a == b {
							continue
						}
						g.SetEdge(g.NewEdge(simple.Node(a), simple.Node(b)))
					}
				}
			}
		}
	}
	return g
}

// TopoSort orders the operator nodes of g (ids 0..n-1), breaking ties by
// id so the result is deterministic. It returns the order and the level of
// each node: 0 for no predecessors, else one more than its deepest predecessor.
func TopoSort(g *simple.DirectedGraph) (order, level []int, err error) {
	sorted, err := topo.SortStabilized(g, nil)
	if err != nil {
		var cyc topo.Unorderable
		if !errors.As(err, &cyc) {
			return nil, nil, fmt.Errorf("%w: %w", ErrCycle, err)
		}
		sets := make([]string, len(cyc))
		for ci, c := range cyc {
			ids := make([]string, len(c))
			for i, nd := range c {
				ids[i] = fmt.Sprint(nd.ID())
			}
			sets[ci] = "{" + strings.Join(ids, ", ") + "}"
		}
		return nil, nil, fmt.Errorf("%w: ops %s", ErrCycle, strings.Join(sets, " "))
	}
	order = make([]int, len(sorted))
	level = make([]int, len(sorted))
	for i, nd := range sorted {
		id := nd.ID()
		order[i] = int(id)
		for _, pn := range graph.NodesOf(g.To(id)) {
			if lv := level[pn.ID()] + 1; lv > level[id] {
				level[id] = lv
			}
		}
	}
	return order, level, nil
}

// groupLevels splits the order into levels, and joins ops within a level
// that touch a common buffer in a conflicting way into one group.
// Groups, and the ops within them, keep their position in the order.
func (st *Stepper) groupLevels(order, level []int) [][][]int {
	nlev := 0
	pos := make([]int, len(order))
	for i, oi := range order {
		pos[oi] = i
		if level[oi]+1 > nlev {
			nlev = level[oi] + 1
		}
	}
	byLev := make([][]int, nlev)
	for _, oi := range order {
		byLev[level[oi]] = append(byLev[level[oi]], oi)
	}
	levs := make([][][]int, nlev)
	for li, lops := range byLev {
		cg := simple.NewUndirectedGraph()
		for _, oi := range lops {
			cg.AddNode(simple.Node(oi))
		}
		for a := 0; a < len(lops); a++ {
			for b := a + 1; b < len(lops); b++ {
				if ops.Conflict(st.Ops[lops[a]], st.Ops[lops[b]]) || sharesWrite(st.Ops[lops[a]], st.Ops[lops[b]]) {
					cg.SetEdge(cg.NewEdge(simple.Node(lops[a]), simple.Node(lops[b])))
				}
			}
		}
		comps := topo.ConnectedComponents(cg)
		groups := make([][]int, len(comps))
		for ci, c := range comps {
			grp := make([]int, len(c))
			for i, nd := range c {
				grp[i] = int(nd.ID())
			}
			sort.Slice(grp, func(i, j int) bool { return pos[grp[i]] < pos[grp[j]] })
			groups[ci] = grp
		}
		sort.Slice(groups, func(i, j int) bool { return pos[groups[i][0]] < pos[groups[j][0]] })
		levs[li] = groups
	}
	return levs
}

// sharesWrite returns true if both ops write the same base buffer
func sharesWrite(a, b ops.Operator) bool {
	aw := make(map[int]bool)
	for _, sg := range a.Deps().Writes() {
		aw[sg.Idx] = true
	}
	for _, sg := range b.Deps().Writes() {
		if aw[sg.Idx] {
			return true
		}
	}
	return false
}

///////////////////////////////////////////////////////////////////////
//  Stepping

// Step runs every operator once, advancing time by Dt
func (st *Stepper) Step() {
	st.FunTimerStart("Step")
	for _, lev := range st.Levels {
		if st.NThreads <= 1 || len(lev) == 1 {
			for _, grp := range lev {
				st.runGroup(grp)
			}
			continue
		}
		var wg sync.WaitGroup
		sem := make(chan struct{}, st.NThreads)
		for _, grp := range lev {
			wg.Add(1)
			sem <- struct{}{}
			go func(grp []int) {
				st.runGroup(grp)
				<-sem
				wg.Done()
			}(grp)
		}
		wg.Wait()
	}
	st.NSteps++
	st.Time = float32(st.NSteps) * st.Dt
	st.FunTimerStop("Step")
}

func (st *Stepper) runGroup(grp []int) {
	for _, oi := range grp {
		st.steps[oi]()
	}
}

// Run takes n steps
func (st *Stepper) Run(n int) {
	for i := 0; i < n; i++ {
		st.Step()
	}
}

// Reset restores all signals to their initial values and zeros time
func (st *Stepper) Reset() {
	st.Arena.Reset()
	st.NSteps = 0
	st.Time = 0
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (st *Stepper) FunTimerStart(fun string) {
	ft, ok := st.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		st.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (st *Stepper) FunTimerStop(fun string) {
	ft := st.FunTimes[fun]
	ft.Stop()
}

// TimerReport reports the amount of time spent in each function
func (st *Stepper) TimerReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TimerReport: NSteps: %v, NThreads: %v\n", st.NSteps, st.NThreads)
	fmt.Fprintf(&b, "\t%13s \t%7s\t%7s\n", "Function Name", "Secs", "Pct")
	fnms := make([]string, 0, len(st.FunTimes))
	for k := range st.FunTimes {
		fnms = append(fnms, k)
	}
	sort.Strings(fnms)
	secs := make([]float64, len(fnms))
	tot := 0.0
	for i, fn := range fnms {
		secs[i] = st.FunTimes[fn].TotalSecs()
		tot += secs[i]
	}
	for i, fn := range fnms {
		pct := 0.0
		if tot > 0 {
			pct = 100 * secs[i] / tot
		}
		fmt.Fprintf(&b, "\t%13s \t%7.3f\t%7.1f\n", fn, secs[i], pct)
	}
	fmt.Fprintf(&b, "\t%13s \t%7.3f\n", "Total", tot)
	return b.String()
}

// SizeReport returns a string reporting the number of operators, levels
// and signal buffers, and the memory used by the buffers.
func (st *Stepper) SizeReport() string {
	var b strings.Builder
	ngrp := 0
	for _, lev := range st.Levels {
		ngrp += len(lev)
	}
	fmt.Fprintf(&b, "Ops: %d\t Levels: %d\t Groups: %d\n", len(st.Ops), len(st.Levels), ngrp)
	fmt.Fprintf(&b, "Signals: %d\t SigMem: %v\n", st.Arena.Len(), (datasize.ByteSize)(st.Arena.NBytes()).HumanReadable())
	return b.String()
}

// OpInfo is the schedule of one operator, for WriteOpsJSON
type OpInfo struct {
	Op     string
	Level  int
	Access []ops.Access
}

// WriteOpsJSON writes the operators in execution order, with their level
// and signal accesses, in an indented JSON format.
func (st *Stepper) WriteOpsJSON(w io.Writer) error {
	infos := make([]OpInfo, 0, len(st.Order))
	for li, lev := range st.Levels {
		for _, grp := range lev {
			for _, oi := range grp {
				op := st.Ops[oi]
				infos = append(infos, OpInfo{Op: fmt.Sprint(op), Level: li, Access: op.Deps().Accesses()})
			}
		}
	}
	b, err := json.MarshalIndent(infos, "", " ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
