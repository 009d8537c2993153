// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package builder

import "errors"

// Build-time configuration errors. All are returned (wrapped) from the
// Build methods, and a failed build leaves nothing registered in the Model.
var (
	// ErrUnfactoredEncoders is encoder learning on a connection without separate encoders
	ErrUnfactoredEncoders = errors.New("cannot perform encoder learning on an unfactored connection")

	// ErrUnknownTarget is a learning rule modifying an unrecognized target
	ErrUnknownTarget = errors.New("unknown learning target")

	// ErrUnsuitablePre is a pre object that cannot supply the neural activity a rule needs
	ErrUnsuitablePre = errors.New("pre object not suitable for learning")

	// ErrUnsuitablePost is a post object that is not a neural population
	ErrUnsuitablePost = errors.New("post object not suitable for learning")

	// ErrShapeMismatch is a delta, scale or rule input shape that disagrees with what it must match
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnknownRule is a learning rule type with no registered builder
	ErrUnknownRule = errors.New("no builder for learning rule type")

	// ErrAlreadyBuilt is a learning rule passed to BuildLearningRule a second time
	ErrAlreadyBuilt = errors.New("learning rule has already been built")

	// ErrNotBuilt is a reference to an object whose signals have not been built
	ErrNotBuilt = errors.New("object has not been built")
)
