// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/emer/learnrules/ops"
	"github.com/emer/learnrules/signal"
	"github.com/emer/learnrules/synapses"
	"github.com/goki/mat32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-6)

func cmpVals(t *testing.T, what string, got, cor []float32) {
	t.Helper()
	if len(got) != len(cor) {
		t.Fatalf("%s: len %d != %d", what, len(got), len(cor))
	}
	for i := range got {
		dif := mat32.Abs(got[i] - cor[i])
		if dif > difTol {
			t.Errorf("%s err: idx: %v, val: %v, cor: %v, dif: %v", what, i, got[i], cor[i], dif)
		}
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// chain: x = 2; y = 0; y += 3 * x; z = y
func chainOps(t *testing.T, ar *signal.Arena) (x, y, z signal.Signal, opl []ops.Operator) {
	x = ar.Add("x", []int{2}, nil)
	y = ar.Add("y", []int{2}, nil)
	z = ar.Add("z", []int{2}, nil)
	three := ar.AddConst("three", nil, []float32{3})
	opl = []ops.Operator{
		must(ops.NewCopy(y, z, "")),
		must(ops.NewDotInc(three, x, y, "")),
		ops.NewReset(y, 0, ""),
		ops.NewReset(x, 2, ""),
	}
	return
}

func TestStepOrder(t *testing.T) {
	ar := signal.NewArena()
	_, y, z, opl := chainOps(t, ar)
	st, err := NewStepper(ar, opl, 0.001, 1)
	if err != nil {
		t.Fatal(err)
	}
	st.Step()
	cmpVals(t, "y", ar.Values(y), []float32{6, 6})
	cmpVals(t, "z", ar.Values(z), []float32{6, 6})
	st.Step()
	cmpVals(t, "y 2nd", ar.Values(y), []float32{6, 6})
	if st.NSteps != 2 || mat32.Abs(st.Time-0.002) > difTol {
		t.Errorf("steps %v time %v", st.NSteps, st.Time)
	}
	if len(st.Order) != 4 || st.Order[len(st.Order)-1] != 0 {
		t.Errorf("copy must run last: %v", st.Order)
	}

	st.Reset()
	cmpVals(t, "z reset", ar.Values(z), []float32{0, 0})
	if st.NSteps != 0 || st.Time != 0 {
		t.Errorf("reset did not zero time")
	}
}

func TestUpdateSeesPrevious(t *testing.T) {
	ar := signal.NewArena()
	in := ar.Add("in", []int{1}, []float32{1})
	out := ar.Add("out", []int{1}, nil)
	seen := ar.Add("seen", []int{1}, nil)
	lp := must(synapses.NewSimLowpass(synapses.Lowpass{Tau: 0}, in, out))
	cp := must(ops.NewCopy(out, seen, ""))
	st, err := NewStepper(ar, []ops.Operator{lp, cp}, 0.001, 1)
	if err != nil {
		t.Fatal(err)
	}
	st.Step()
	cmpVals(t, "out", ar.Values(out), []float32{1})
	cmpVals(t, "seen", ar.Values(seen), []float32{0})
	st.Step()
	cmpVals(t, "seen 2nd", ar.Values(seen), []float32{1})
}

func TestCycle(t *testing.T) {
	ar := signal.NewArena()
	p := ar.Add("p", []int{1}, nil)
	q := ar.Add("q", []int{1}, nil)
	lp1 := must(synapses.NewSimLowpass(synapses.Lowpass{Tau: 0.01}, p, q))
	lp2 := must(synapses.NewSimLowpass(synapses.Lowpass{Tau: 0.01}, q, p))
	_, err := NewStepper(ar, []ops.Operator{lp1, lp2}, 0.001, 1)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
	if !strings.Contains(err.Error(), "{0, 1}") {
		t.Errorf("cycle error should name the ops: %v", err)
	}
}

func TestWriters(t *testing.T) {
	ar := signal.NewArena()
	x := ar.Add("x", []int{1}, nil)
	if _, err := NewStepper(ar, []ops.Operator{ops.NewReset(x, 1, ""), ops.NewReset(x, 2, "")}, 0.001, 1); !errors.Is(err, ErrMultipleWriters) {
		t.Errorf("expected multiple writers error, got %v", err)
	}
	c := ar.AddConst("c", []int{1}, []float32{1})
	if _, err := NewStepper(ar, []ops.Operator{ops.NewReset(c, 1, "")}, 0.001, 1); !errors.Is(err, ops.ErrContract) {
		t.Errorf("expected contract error, got %v", err)
	}
}

func TestThreads(t *testing.T) {
	build := func(nthr int) []float32 {
		ar := signal.NewArena()
		one := ar.AddConst("one", nil, []float32{1})
		y := ar.Add("y", []int{4}, nil)
		var opl []ops.Operator
		var outs []signal.Signal
		for i := 0; i < 8; i++ {
			x := ar.Add("x", []int{4}, []float32{float32(i), 1, 2, 3})
			out := ar.Add("out", []int{4}, nil)
			outs = append(outs, out)
			opl = append(opl, must(ops.NewDotInc(one, x, y, "")))
			opl = append(opl, must(synapses.NewSimLowpass(synapses.Lowpass{Tau: 0.005}, x, out)))
		}
		opl = append(opl, ops.NewReset(y, 0, ""))
		st, err := NewStepper(ar, opl, 0.001, nthr)
		if err != nil {
			t.Fatal(err)
		}
		st.Run(5)
		res := append([]float32{}, ar.Values(y)...)
		for _, out := range outs {
			res = append(res, ar.Values(out)...)
		}
		return res
	}
	seq := build(1)
	par := build(4)
	cmpVals(t, "threads", par, seq)
	cmpVals(t, "y", seq[:4], []float32{28, 8, 16, 24})
}

func TestTopoSortTies(t *testing.T) {
	ar := signal.NewArena()
	var opl []ops.Operator
	for i := 0; i < 5; i++ {
		opl = append(opl, ops.NewReset(ar.Add("x", []int{1}, nil), 1, ""))
	}
	order, level, err := TopoSort(DepGraph(opl))
	if err != nil {
		t.Fatal(err)
	}
	for i := range order {
		if order[i] != i || level[i] != 0 {
			t.Errorf("independent ops must keep index order at level 0: %v %v", order, level)
			break
		}
	}
}

func TestLevels(t *testing.T) {
	ar := signal.NewArena()
	_, _, _, opl := chainOps(t, ar)
	st, err := NewStepper(ar, opl, 0.001, 2)
	if err != nil {
		t.Fatal(err)
	}
	// reset x, reset y -> dotinc -> copy
	if len(st.Levels) != 3 {
		t.Errorf("levels: %v", st.Levels)
	}
	if !strings.Contains(st.SizeReport(), "Ops: 4") {
		t.Errorf("size report: %s", st.SizeReport())
	}
	st.Run(3)
	if !strings.Contains(st.TimerReport(), "Step") {
		t.Errorf("timer report: %s", st.TimerReport())
	}
}

func TestOpsJSON(t *testing.T) {
	ar := signal.NewArena()
	_, _, _, opl := chainOps(t, ar)
	st, err := NewStepper(ar, opl, 0.001, 1)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := st.WriteOpsJSON(&b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), `"Kind": "Reads"`) {
		t.Errorf("access kinds not written by name:\n%s", b.String())
	}
	var infos []OpInfo
	if err := json.Unmarshal(b.Bytes(), &infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 4 {
		t.Fatalf("ops: %+v", infos)
	}
	last := infos[3]
	if last.Level != 2 || len(last.Access) != 2 || last.Access[0].Kind != ops.Sets || last.Access[1].Kind != ops.Reads {
		t.Errorf("copy op: %+v", last)
	}
}
