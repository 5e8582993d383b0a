// Copyright 2026 The Gradbook Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for gradbook's neural network
// building blocks: layers, activations, losses, the Classifier model
// and .grad checkpointing.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	model := nn.NewClassifier(nn.Arch{
//	    InputSize:   784,
//	    HiddenSizes: []int{128, 64},
//	    OutputSize:  10,
//	    Dropout:     0.2,
//	}, backend)
package nn

import (
	internal "github.com/gradbook-ml/gradbook/internal/nn"
	"github.com/gradbook-ml/gradbook/tensor"
)

// Module is the base interface for all neural network components.
type Module = internal.Module

// TrainingAware is implemented by modules that behave differently in
// training and evaluation modes.
type TrainingAware = internal.TrainingAware

// Parameter is a named trainable tensor.
type Parameter = internal.Parameter

// Linear is a fully connected layer: y = x @ W.T + b.
type Linear = internal.Linear

// ReLU, Sigmoid, Tanh and LogSoftmax are activation modules.
type (
	ReLU       = internal.ReLU
	Sigmoid    = internal.Sigmoid
	Tanh       = internal.Tanh
	LogSoftmax = internal.LogSoftmax
)

// Dropout randomly zeroes inputs during training.
type Dropout = internal.Dropout

// Sequential chains modules into a pipeline.
type Sequential = internal.Sequential

// Loss criteria.
type (
	NLLLoss          = internal.NLLLoss
	CrossEntropyLoss = internal.CrossEntropyLoss
	MSELoss          = internal.MSELoss
)

// Arch describes a Classifier's layer widths and dropout.
type Arch = internal.Arch

// Classifier is the fully connected image classifier.
type Classifier = internal.Classifier

// Checkpoint is a complete training state snapshot.
type Checkpoint = internal.Checkpoint

// OptimizerState is the optimizer interface checkpoints rely on.
type OptimizerState = internal.OptimizerState

// NewParameter creates a trainable parameter.
func NewParameter(name string, t *tensor.Tensor[float32]) *Parameter {
	return internal.NewParameter(name, t)
}

// NewLinear creates a fully connected layer with Xavier-initialized
// weights.
func NewLinear(inFeatures, outFeatures int, backend tensor.Backend) *Linear {
	return internal.NewLinear(inFeatures, outFeatures, backend)
}

// NewReLU creates a ReLU activation module.
func NewReLU() *ReLU { return internal.NewReLU() }

// NewSigmoid creates a Sigmoid activation module.
func NewSigmoid() *Sigmoid { return internal.NewSigmoid() }

// NewTanh creates a Tanh activation module.
func NewTanh() *Tanh { return internal.NewTanh() }

// NewLogSoftmax creates a LogSoftmax module.
func NewLogSoftmax() *LogSoftmax { return internal.NewLogSoftmax() }

// NewDropout creates a Dropout module with drop probability p.
func NewDropout(p float32) *Dropout { return internal.NewDropout(p) }

// NewSequential chains the given modules.
func NewSequential(modules ...Module) *Sequential {
	return internal.NewSequential(modules...)
}

// NewNLLLoss creates a negative log-likelihood criterion.
func NewNLLLoss() *NLLLoss { return internal.NewNLLLoss() }

// NewCrossEntropyLoss creates a softmax cross-entropy criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss { return internal.NewCrossEntropyLoss() }

// NewMSELoss creates a mean squared error criterion.
func NewMSELoss() *MSELoss { return internal.NewMSELoss() }

// NewClassifier builds a classifier for the given architecture.
func NewClassifier(arch Arch, backend tensor.Backend) *Classifier {
	return internal.NewClassifier(arch, backend)
}

// Xavier initializes a tensor with Xavier/Glorot uniform values.
func Xavier(fanIn, fanOut int, shape tensor.Shape, backend tensor.Backend) *tensor.Tensor[float32] {
	return internal.Xavier(fanIn, fanOut, shape, backend)
}

// SaveModel writes model parameters to a .grad file.
func SaveModel(path string, model *Classifier) error {
	return internal.SaveModel(path, model)
}

// LoadModel restores parameters into a pre-built model, verifying the
// architecture first.
func LoadModel(path string, model *Classifier) error {
	return internal.LoadModel(path, model)
}

// LoadClassifier reconstructs a classifier from a .grad file's
// architecture block and loads its weights.
func LoadClassifier(path string, backend tensor.Backend) (*Classifier, error) {
	return internal.LoadClassifier(path, backend)
}

// LoadCheckpoint restores a training checkpoint into a pre-built model
// and optimizer.
func LoadCheckpoint(path string, model *Classifier, optimizer OptimizerState) (*Checkpoint, error) {
	return internal.LoadCheckpoint(path, model, optimizer)
}
