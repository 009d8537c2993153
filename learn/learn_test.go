// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package learn

import (
	"errors"
	"testing"

	"github.com/emer/learnrules/signal"
	"github.com/goki/mat32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-9)

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

func TestSimBCM(t *testing.T) {
	ar := signal.NewArena()
	pre := ar.Add("pre", []int{2}, []float32{0.2, 0.4})
	post := ar.Add("post", []int{1}, []float32{0.5})
	theta := ar.Add("theta", []int{1}, []float32{0.1})
	delta := ar.Add("delta", []int{1, 2}, []float32{9, 9})

	op, err := NewSimBCM(pre, post, theta, delta, 1.0, "")
	if err != nil {
		t.Fatal(err)
	}
	step := op.MakeStep(ar, 0.001)
	step()
	cmpVals(t, "bcm", ar.Values(delta), []float32{1e-3 * 0.5 * 0.4 * 0.2, 1e-3 * 0.5 * 0.4 * 0.4})
	step() // overwrite, not accumulate
	cmpVals(t, "bcm 2nd step", ar.Values(delta), []float32{1e-3 * 0.5 * 0.4 * 0.2, 1e-3 * 0.5 * 0.4 * 0.4})

	if len(op.Deps().Updates) != 1 || op.Deps().Updates[0].Idx != delta.Idx || len(op.Deps().Reads) != 3 {
		t.Errorf("bcm deps wrong: %+v", op.Deps())
	}
}

func TestSimBCMMatrix(t *testing.T) {
	ar := signal.NewArena()
	pre := ar.Add("pre", []int{3}, []float32{1, 2, 3})
	post := ar.Add("post", []int{2}, []float32{0.5, 2})
	theta := ar.Add("theta", []int{2}, []float32{1, 1})
	delta := ar.Add("delta", []int{2, 3}, nil)
	op, _ := NewSimBCM(pre, post, theta, delta, 2, "")
	op.MakeStep(ar, 0.5)()
	// alpha = 1; rows: 0.5*(-0.5) = -0.25, 2*1 = 2
	cmpVals(t, "bcm matrix", ar.Values(delta), []float32{-0.25, -0.5, -0.75, 2, 4, 6})

	bad := ar.Add("bad", []int{3, 3}, nil)
	if _, err := NewSimBCM(pre, post, theta, bad, 1, ""); !errors.Is(err, signal.ErrShape) {
		t.Errorf("expected shape error, got %v", err)
	}
}

func TestSimOja(t *testing.T) {
	ar := signal.NewArena()
	pre := ar.Add("pre", []int{2}, []float32{0.3, 0.6})
	post := ar.Add("post", []int{1}, []float32{0})
	weights := ar.Add("weights", []int{1, 2}, []float32{1, 1})
	delta := ar.Add("delta", []int{1, 2}, []float32{5, 5})

	op, err := NewSimOja(pre, post, weights, delta, 1.0, 1.0, "")
	if err != nil {
		t.Fatal(err)
	}
	step := op.MakeStep(ar, 0.001)

	// post = 0: no forgetting and no hebbian term
	step()
	cmpVals(t, "oja post=0", ar.Values(delta), []float32{0, 0})

	// pre = 0: pure negative forgetting
	ar.Values(post)[0] = 0.5
	ar.Values(pre)[0] = 0
	ar.Values(pre)[1] = 0
	step()
	cmpVals(t, "oja pre=0", ar.Values(delta), []float32{-1e-3 * 0.25, -1e-3 * 0.25})

	// both terms
	ar.Values(pre)[0] = 0.3
	ar.Values(pre)[1] = 0.6
	step()
	cmpVals(t, "oja", ar.Values(delta), []float32{-1e-3*0.25 + 1e-3*0.5*0.3, -1e-3*0.25 + 1e-3*0.5*0.6})
}

func TestSimOjaBeta(t *testing.T) {
	ar := signal.NewArena()
	pre := ar.Add("pre", []int{1}, []float32{1})
	post := ar.Add("post", []int{2}, []float32{1, 2})
	weights := ar.Add("weights", []int{2, 1}, []float32{0.5, 0.25})
	delta := ar.Add("delta", []int{2, 1}, nil)
	op, _ := NewSimOja(pre, post, weights, delta, 1, 2, "")
	op.MakeStep(ar, 1)()
	// row 0: -2*0.5*1 + 1 = 0 ; row 1: -2*0.25*4 + 2 = 0
	cmpVals(t, "oja beta", ar.Values(delta), []float32{0, 0})
}

func TestSimVojaGating(t *testing.T) {
	ar := signal.NewArena()
	x := ar.Add("x", []int{2}, []float32{0.7, -0.3})
	post := ar.Add("post", []int{3}, []float32{10, 20, 30})
	enc := ar.Add("enc", []int{3, 2}, []float32{1, 2, 3, 4, 5, 6})
	delta := ar.Add("delta", []int{3, 2}, []float32{1, 1, 1, 1, 1, 1})
	learning := ar.Add("learning", []int{1}, []float32{0})

	op, err := NewSimVoja(x, post, enc, delta, []float32{2, 3, 4}, learning, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	op.MakeStep(ar, 0.001)()
	cmpVals(t, "voja gated", ar.Values(delta), []float32{0, 0, 0, 0, 0, 0})
}

func TestSimVojaOjaIdentity(t *testing.T) {
	ar := signal.NewArena()
	x := ar.Add("x", []int{1}, []float32{0.8})
	post := ar.Add("post", []int{1}, []float32{0.5})
	enc := ar.Add("enc", []int{1, 1}, []float32{0.2})
	delta := ar.Add("delta", []int{1, 1}, nil)
	learning := ar.Add("learning", []int{1}, []float32{1})

	op, err := NewSimVoja(x, post, enc, delta, []float32{1}, learning, 1)
	if err != nil {
		t.Fatal(err)
	}
	dt := float32(0.001)
	op.MakeStep(ar, dt)()
	// oja in vector space with s = 1/y: e += alpha * y * (x - e)
	cor := dt * 0.5 * (0.8 - 0.2)
	cmpVals(t, "voja identity", ar.Values(delta), []float32{cor})
}

func TestSimVojaShape(t *testing.T) {
	ar := signal.NewArena()
	x := ar.Add("x", []int{2}, nil)
	post := ar.Add("post", []int{3}, nil)
	enc := ar.Add("enc", []int{3, 2}, nil)
	delta := ar.Add("delta", []int{3, 2}, nil)
	learning := ar.Add("learning", []int{1}, nil)
	if _, err := NewSimVoja(x, post, enc, delta, []float32{1, 1}, learning, 1); !errors.Is(err, signal.ErrShape) {
		t.Errorf("expected shape error for scale, got %v", err)
	}
}

func TestRuleDefaults(t *testing.T) {
	for kind := BCMRule; kind < RuleKindsN; kind++ {
		rl, err := NewRule(kind)
		if err != nil {
			t.Fatal(err)
		}
		if rl.Kind() != kind {
			t.Errorf("kind %v != %v", rl.Kind(), kind)
		}
		if rl.Rate() <= 0 {
			t.Errorf("%v: default rate must be positive", rl)
		}
		if rl.TypeName()+"Rule" != kind.String() {
			t.Errorf("type name %v does not match kind %v", rl.TypeName(), kind)
		}
	}
	if _, err := NewRule(RuleKindsN); err == nil {
		t.Errorf("expected error for unknown kind")
	}

	bcm := &BCM{}
	bcm.Defaults()
	if bcm.PostTauEff != bcm.PreTau {
		t.Errorf("bcm post tau must default to pre tau: %v", bcm.PostTauEff)
	}
	oja := &Oja{}
	oja.Defaults()
	oja.PostTau = 0.01
	oja.Update()
	if oja.PostTauEff != 0.01 {
		t.Errorf("oja post tau: %v", oja.PostTauEff)
	}
	if (&Voja{}).SizeIn(5) != 1 || (&PES{}).SizeIn(5) != 5 || (&BCM{}).SizeIn(5) != 0 {
		t.Errorf("size in wrong")
	}
	if (&Voja{}).Modifies() != Encoders || (&PES{}).Modifies() != Decoders || (&Oja{}).Modifies() != Weights {
		t.Errorf("modifies wrong")
	}
}

func TestParseTargets(t *testing.T) {
	for s, cor := range map[string]Targets{"encoders": Encoders, "Decoders": Decoders, " WEIGHTS ": Weights} {
		tg, err := ParseTargets(s)
		if err != nil {
			t.Error(err)
		}
		if tg != cor {
			t.Errorf("parse %q: %v != %v", s, tg, cor)
		}
	}
	if _, err := ParseTargets("biases"); err == nil {
		t.Errorf("expected error for unknown target")
	}
}

func TestStyle(t *testing.T) {
	pes := &PES{}
	pes.Defaults()
	pes.SetName("fast")
	pes.AddClass("Err")
	pes.AddClass("Out")
	if pes.Name() != "fast" || pes.Class() != "Err Out" {
		t.Errorf("style: %q %q", pes.Name(), pes.Class())
	}
}
