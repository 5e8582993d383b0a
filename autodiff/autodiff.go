// Copyright 2026 The Gradbook Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation as a
// backend decorator.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	logProbs := model.Forward(images)
//	loss := criterion.Forward(logProbs, labels)
//	grads := autodiff.Gradients(loss)
//	optimizer.Step(grads)
//	backend.Tape().Clear()
package autodiff

import (
	internal "github.com/gradbook-ml/gradbook/internal/autodiff"
	"github.com/gradbook-ml/gradbook/tensor"
)

// Backend wraps any tensor.Backend and records operations for
// backpropagation.
type Backend = internal.Backend

// GradientTape records forward-pass operations and replays them in
// reverse.
type GradientTape = internal.GradientTape

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates an autodiff decorator around the given backend.
func New(inner tensor.Backend) *Backend {
	return internal.New(inner)
}

// Gradients runs the backward pass for a scalar loss tensor and returns
// gradients keyed by raw tensor identity.
func Gradients(output *tensor.Tensor[float32]) map[*tensor.RawTensor]*tensor.RawTensor {
	return internal.Gradients(output)
}
