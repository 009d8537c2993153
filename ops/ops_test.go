// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ops

import (
	"errors"
	"testing"

	"github.com/emer/learnrules/signal"
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

func TestReset(t *testing.T) {
	ar := signal.NewArena()
	d := ar.Add("d", []int{3}, []float32{1, 2, 3})
	op := NewReset(d, 0.5, "")
	op.MakeStep(ar, 0.001)()
	cmpVals(t, "reset", ar.Values(d), []float32{0.5, 0.5, 0.5})
	if len(op.Deps().Sets) != 1 || op.Deps().Sets[0].Idx != d.Idx {
		t.Errorf("reset must declare dst as Sets")
	}
}

func TestCopy(t *testing.T) {
	ar := signal.NewArena()
	s := ar.Add("s", []int{2}, []float32{3, 4})
	d := ar.Add("d", []int{2}, nil)
	op, err := NewCopy(s, d, "")
	if err != nil {
		t.Fatal(err)
	}
	op.MakeStep(ar, 0.001)()
	cmpVals(t, "copy", ar.Values(d), []float32{3, 4})

	bad := ar.Add("bad", []int{3}, nil)
	if _, err := NewCopy(s, bad, ""); !errors.Is(err, signal.ErrShape) {
		t.Errorf("expected shape error, got %v", err)
	}
}

func TestElementwiseIncOuter(t *testing.T) {
	ar := signal.NewArena()
	le := ar.Add("le", []int{2}, []float32{1, 2})
	acts := ar.Add("acts", []int{3}, []float32{0.1, 0.2, 0.3})
	delta := ar.Add("delta", []int{2, 3}, nil)
	op, err := NewElementwiseInc(le.Column(), acts.Row(), delta, "outer")
	if err != nil {
		t.Fatal(err)
	}
	step := op.MakeStep(ar, 0.001)
	step()
	cmpVals(t, "outer", ar.Values(delta), []float32{0.1, 0.2, 0.3, 0.2, 0.4, 0.6})
	step()
	cmpVals(t, "outer inc", ar.Values(delta), []float32{0.2, 0.4, 0.6, 0.4, 0.8, 1.2})
}

func TestElementwiseIncScalar(t *testing.T) {
	ar := signal.NewArena()
	one := ar.AddConst("One", nil, []float32{1})
	delta := ar.Add("delta", []int{2, 2}, []float32{1, 2, 3, 4})
	target := ar.Add("target", []int{2, 2}, []float32{10, 10, 10, 10})
	op, err := NewElementwiseInc(one, delta, target, "weights += delta")
	if err != nil {
		t.Fatal(err)
	}
	op.MakeStep(ar, 0.001)()
	cmpVals(t, "accumulate", ar.Values(target), []float32{11, 12, 13, 14})
	if err := Validate(op); err != nil {
		t.Error(err)
	}
}

func TestElementwiseIncShapeErr(t *testing.T) {
	ar := signal.NewArena()
	a := ar.Add("a", []int{2}, nil)
	x := ar.Add("x", []int{3}, nil)
	y := ar.Add("y", []int{2, 3}, nil)
	if _, err := NewElementwiseInc(a, x, y, ""); !errors.Is(err, signal.ErrShape) {
		t.Errorf("expected shape error, got %v", err)
	}
	z := ar.Add("z", []int{2, 2, 2}, nil)
	if _, err := NewElementwiseInc(z, z, z, ""); !errors.Is(err, signal.ErrShape) {
		t.Errorf("expected shape error for 3d, got %v", err)
	}
}

func TestDotInc(t *testing.T) {
	ar := signal.NewArena()
	enc := ar.Add("enc", []int{3, 2}, []float32{1, 0, 0, 1, 1, 1})
	corr := ar.Add("corr", []int{2}, []float32{0.5, -1})
	out := ar.Add("out", []int{3}, nil)
	op, err := NewDotInc(enc, corr, out, "encode")
	if err != nil {
		t.Fatal(err)
	}
	op.MakeStep(ar, 0.001)()
	cmpVals(t, "matvec", ar.Values(out), []float32{0.5, -1, -0.5})

	lr := ar.AddConst("lr", nil, []float32{-2})
	sc := ar.Add("sc", []int{2}, nil)
	sop, err := NewDotInc(lr, corr, sc, "scale")
	if err != nil {
		t.Fatal(err)
	}
	sop.MakeStep(ar, 0.001)()
	cmpVals(t, "scalar", ar.Values(sc), []float32{-1, 2})

	if _, err := NewDotInc(enc, out, corr, ""); !errors.Is(err, signal.ErrShape) {
		t.Errorf("expected shape error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	ar := signal.NewArena()
	a := ar.Add("a", []int{2}, nil)
	one := ar.AddConst("One", nil, []float32{1})

	op := NewReset(a, 0, "")
	op.Dp.Incs = []signal.Signal{a.Row()}
	if err := Validate(op); !errors.Is(err, ErrContract) {
		t.Errorf("sets and incs of same base must fail, got %v", err)
	}

	op = NewReset(a, 0, "")
	op.Dp.Sets = append(op.Dp.Sets, a.Column())
	if err := Validate(op); !errors.Is(err, ErrContract) {
		t.Errorf("double set must fail, got %v", err)
	}

	rop := NewReset(one, 0, "")
	if err := Validate(rop); !errors.Is(err, ErrContract) {
		t.Errorf("writing read-only must fail, got %v", err)
	}
}

func TestConflict(t *testing.T) {
	ar := signal.NewArena()
	one := ar.AddConst("One", nil, []float32{1})
	x := ar.Add("x", []int{2}, nil)
	w := ar.Add("w", []int{2}, nil)
	y := ar.Add("y", []int{2}, nil)

	inc1, _ := NewElementwiseInc(one, x, y, "")
	inc2, _ := NewElementwiseInc(one, w, y, "")
	if Conflict(inc1, inc2) {
		t.Errorf("incs on the same signal commute, must not conflict")
	}
	rst := NewReset(y, 0, "")
	if !Conflict(inc1, rst) {
		t.Errorf("set vs inc must conflict")
	}
	cp, _ := NewCopy(y, w, "")
	if !Conflict(inc1, cp) {
		t.Errorf("inc vs read must conflict")
	}
	if !Conflict(inc2, cp) {
		t.Errorf("read of w vs set of w must conflict")
	}
	rx := NewReset(x, 1, "")
	ry, _ := NewCopy(w, y, "")
	if Conflict(rx, ry) {
		t.Errorf("disjoint ops must not conflict")
	}
	if Sets.String() != "Sets" || Updates.String() != "Updates" || !Incs.IsWrite() || Reads.IsWrite() {
		t.Errorf("access kinds strings / writes wrong")
	}
}
