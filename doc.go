// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package learnrules is the overall repository for the synaptic learning rules
(BCM, Oja, Voja and PES) of a signal-and-operator neural simulator, implemented
in the Go language (golang).

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* signal: named, shaped views over buffers held in a shared Arena.  Signals are
the unit of dependency tracking: two signals alias when they view the same buffer.

* ops: the Operator interface, with its declared sets / incs / reads / updates
signal accesses, and the generic Reset, Copy, ElementwiseInc and DotInc operators.

* synapses: the first-order low-pass filter used to smooth activities.

* learn: learning rule parameters and the SimBCM, SimOja and SimVoja operators.

* builder: builds ensembles, nodes, connections and learning rules into signals
and operators in a Model.  PES is built entirely from generic operators.

* sim: orders operators by their signal accesses and steps them, optionally
using multiple goroutines.

* examples/bench: a runnable benchmark with one connection per learning rule.
*/
package learnrules
