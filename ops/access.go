// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ops

import "github.com/goki/ki/kit"

// AccessKinds are the ways in which an operator may touch a signal
type AccessKinds int32

//go:generate stringer -type=AccessKinds

var KiT_AccessKinds = kit.Enums.AddEnum(AccessKindsN, kit.NotBitFlag, nil)

func (ev AccessKinds) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *AccessKinds) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The access kinds
const (
	// Sets is an exclusive write that is the first touch of the signal on each step
	Sets AccessKinds = iota

	// Incs is an additive write, which commutes with other Incs
	Incs

	// Reads is read-only access
	Reads

	// Updates reads the signal and then overwrites it with its next-step value,
	// after all other readers are done
	Updates

	AccessKindsN
)

// IsWrite returns true for all kinds other than Reads
func (ak AccessKinds) IsWrite() bool {
	return ak != Reads
}
