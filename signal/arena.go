// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package signal

import (
	"fmt"

	"github.com/emer/etable/v2/etensor"
)

// Arena holds all of the base buffers that Signals view.
// Buffers are allocated once at build time and persist for the
// duration of the simulation.
type Arena struct {

	// base buffers, indexed by Signal.Idx
	Bufs []*etensor.Float32

	// initial values of each buffer, restored by Reset
	Inits [][]float32

	// read-only flag for each buffer
	RO []bool
}

// NewArena returns a new empty Arena
func NewArena() *Arena {
	return &Arena{}
}

// Len returns the number of base buffers allocated
func (ar *Arena) Len() int {
	return len(ar.Bufs)
}

// Add allocates a new base buffer of given shape, initialized from init
// if non-nil (which must then have the full size), and returns a
// signal viewing the whole buffer.
func (ar *Arena) Add(name string, shape []int, init []float32) Signal {
	return ar.add(name, shape, init, false)
}

// AddConst allocates a new read-only buffer holding given values.
func (ar *Arena) AddConst(name string, shape []int, vals []float32) Signal {
	return ar.add(name, shape, vals, true)
}

// AddScalar allocates a new (writable) scalar buffer with given initial value
func (ar *Arena) AddScalar(name string, val float32) Signal {
	return ar.add(name, nil, []float32{val}, false)
}

func (ar *Arena) add(name string, shape []int, init []float32, ro bool) Signal {
	sz := ShapeSize(shape)
	if init != nil && len(init) != sz {
		panic(fmt.Sprintf("signal.Arena: %v: init values len %d != shape %v size %d", name, len(init), shape, sz))
	}
	tshp := shape
	if len(tshp) == 0 {
		tshp = []int{1} // etensor has no 0-d shape
	}
	tsr := etensor.NewFloat32(tshp, nil, nil)
	ini := make([]float32, sz)
	if init != nil {
		copy(ini, init)
		copy(tsr.Values, init)
	}
	ar.Bufs = append(ar.Bufs, tsr)
	ar.Inits = append(ar.Inits, ini)
	ar.RO = append(ar.RO, ro)
	return Signal{Idx: len(ar.Bufs) - 1, Name: name, Shape: append([]int{}, shape...), ReadOnly: ro}
}

// Values returns the backing slice for given signal.
// All views of the same base share this slice.
func (ar *Arena) Values(sg Signal) []float32 {
	return ar.Bufs[sg.Idx].Values
}

// Tensor returns the base tensor for given signal, for introspection
func (ar *Arena) Tensor(sg Signal) *etensor.Float32 {
	return ar.Bufs[sg.Idx]
}

// SetValues copies vals into the buffer of given signal
func (ar *Arena) SetValues(sg Signal, vals []float32) error {
	dst := ar.Values(sg)
	if len(vals) != len(dst) {
		return fmt.Errorf("%w: %v has %d values, got %d", ErrShape, sg.Name, len(dst), len(vals))
	}
	copy(dst, vals)
	return nil
}

// Reset restores every buffer to its initial values
func (ar *Arena) Reset() {
	for i, tsr := range ar.Bufs {
		copy(tsr.Values, ar.Inits[i])
	}
}

// Truncate drops all buffers allocated at or after index n.
// Used to roll back a failed build.
func (ar *Arena) Truncate(n int) {
	if n >= len(ar.Bufs) {
		return
	}
	ar.Bufs = ar.Bufs[:n]
	ar.Inits = ar.Inits[:n]
	ar.RO = ar.RO[:n]
}

// NBytes returns the total memory used by buffer values
func (ar *Arena) NBytes() int {
	nb := 0
	for _, tsr := range ar.Bufs {
		nb += 4 * len(tsr.Values)
	}
	return nb
}
