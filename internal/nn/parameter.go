package nn

import (
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are the tensors that optimizers update: layer weights and
// biases. The gradient for a parameter is looked up in the gradient map
// returned by the backward pass, keyed by the parameter's raw tensor.
type Parameter struct {
	name   string
	tensor *tensor.Tensor[float32]
}

// NewParameter creates a trainable parameter. The tensor should already
// be initialized.
func NewParameter(name string, t *tensor.Tensor[float32]) *Parameter {
	return &Parameter{name: name, tensor: t}
}

// Name returns the parameter name (e.g. "weight", "bias").
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor[float32] {
	return p.tensor
}

// Raw returns the underlying raw tensor, the key used to find this
// parameter's gradient after a backward pass.
func (p *Parameter) Raw() *tensor.RawTensor {
	return p.tensor.Raw()
}

// Data returns the parameter's float32 values for in-place updates.
func (p *Parameter) Data() []float32 {
	return p.tensor.Raw().AsFloat32()
}
