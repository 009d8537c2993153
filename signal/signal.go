// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package signal provides named, shaped views (Signal) over the shared
buffers of an Arena. A Signal is a plain value handle: the index of its
base buffer plus a shape. Two signals alias exactly when they share
the same base index, which is what operator dependency tracking keys on.
*/
package signal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShape is returned (wrapped) whenever signal shapes are incompatible.
var ErrShape = errors.New("shape mismatch")

// Signal is a named, shaped view onto a base buffer held in an Arena.
type Signal struct {

	// index of the base buffer in the Arena -- identity for aliasing
	Idx int

	// name, for display and debugging
	Name string

	// shape of this view: empty = scalar, {n} = vector, {r, c} = matrix
	Shape []int

	// if true, no operator may set, inc or update this signal
	ReadOnly bool
}

// Size returns the number of elements in the view (1 for a scalar).
func (sg Signal) Size() int {
	return ShapeSize(sg.Shape)
}

// NDim returns the number of dimensions of the view
func (sg Signal) NDim() int {
	return len(sg.Shape)
}

// Dim returns the size of given dimension
func (sg Signal) Dim(d int) int {
	return sg.Shape[d]
}

// SameBase returns true if the two signals view the same base buffer
func (sg Signal) SameBase(other Signal) bool {
	return sg.Idx == other.Idx
}

// Row returns a 1 x n view of this signal
func (sg Signal) Row() Signal {
	return sg.view(sg.Name+".row", 1, sg.Size())
}

// Column returns an n x 1 view of this signal
func (sg Signal) Column() Signal {
	return sg.view(sg.Name+".col", sg.Size(), 1)
}

// Reshape returns a view with given shape, which must have the same size.
// A size mismatch is a programmer error and panics.
func (sg Signal) Reshape(shape ...int) Signal {
	if ShapeSize(shape) != sg.Size() {
		panic(fmt.Sprintf("signal.Reshape: %v: cannot view shape %v as %v", sg.Name, sg.Shape, shape))
	}
	return sg.view(sg.Name, shape...)
}

func (sg Signal) view(name string, shape ...int) Signal {
	nsg := sg
	nsg.Name = name
	nsg.Shape = append([]int{}, shape...)
	return nsg
}

// String satisfies the fmt.Stringer interface
func (sg Signal) String() string {
	return fmt.Sprintf("Signal(%s, shape=%s)", sg.Name, ShapeString(sg.Shape))
}

// ShapeSize returns the product of the shape dims (1 for an empty shape)
func ShapeSize(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// ShapeEqual returns true if the two shapes are identical
func ShapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ShapeString returns a python-tuple style representation of shape
func ShapeString(shape []int) string {
	strs := make([]string, len(shape))
	for i, d := range shape {
		strs[i] = fmt.Sprintf("%d", d)
	}
	if len(shape) == 1 {
		return "(" + strs[0] + ",)"
	}
	return "(" + strings.Join(strs, ", ") + ")"
}
