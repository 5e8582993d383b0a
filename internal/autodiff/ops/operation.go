// Package ops defines the differentiable operations recorded by the
// gradient tape.
//
// Each operation captures its input and output RawTensors during the
// forward pass and knows how to turn the gradient of its output into
// gradients of its inputs during the backward pass.
package ops

import "github.com/gradbook-ml/gradbook/internal/tensor"

// Operation is one recorded step of the computation graph.
type Operation interface {
	// Backward computes gradients for the inputs given the gradient of
	// the output. The returned slice is index-aligned with Inputs().
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors of this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the tensor this operation produced.
	Output() *tensor.RawTensor
}
