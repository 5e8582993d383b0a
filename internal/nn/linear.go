package nn

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Linear implements a fully connected layer: y = x @ W.T + b.
//
// The weight matrix has shape [outFeatures, inFeatures] and the bias has
// shape [outFeatures]. Weights are Xavier-initialized, biases start at
// zero.
//
// Example:
//
//	layer := nn.NewLinear(784, 128, backend)
//	output := layer.Forward(input) // [batch, 784] -> [batch, 128]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [outFeatures, inFeatures]
	bias        *Parameter // [outFeatures]
	backend     tensor.Backend
}

// NewLinear creates a Linear layer with Xavier-initialized weights and
// zero biases.
func NewLinear(inFeatures, outFeatures int, backend tensor.Backend) *Linear {
	weightShape := tensor.Shape{outFeatures, inFeatures}
	weight := NewParameter("weight", Xavier(inFeatures, outFeatures, weightShape, backend))
	bias := NewParameter("bias", Zeros(tensor.Shape{outFeatures}, backend))

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
		backend:     backend,
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch, inFeatures]. Output shape: [batch, outFeatures].
func (l *Linear) Forward(input *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got shape %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, shape[1]))
	}

	// [batch, in] @ [in, out] = [batch, out]
	output := input.MatMul(l.weight.Tensor().T())

	// Bias broadcasts as a [1, out] row.
	return output.Add(l.bias.Tensor().Reshape(1, l.outFeatures))
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns {"weight": ..., "bias": ...}.
func (l *Linear) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight": l.weight.Raw(),
		"bias":   l.bias.Raw(),
	}
}

// LoadStateDict copies weight and bias values from the state dictionary.
// Both entries are validated before either is copied, so a mismatch
// leaves the layer untouched.
func (l *Linear) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	weight, err := checkedEntry(stateDict, "weight", tensor.Shape{l.outFeatures, l.inFeatures})
	if err != nil {
		return err
	}
	bias, err := checkedEntry(stateDict, "bias", tensor.Shape{l.outFeatures})
	if err != nil {
		return err
	}

	copy(l.weight.Data(), weight.AsFloat32())
	copy(l.bias.Data(), bias.AsFloat32())
	return nil
}

// checkedEntry looks up a float32 state dict entry and validates its
// shape.
func checkedEntry(stateDict map[string]*tensor.RawTensor, name string, want tensor.Shape) (*tensor.RawTensor, error) {
	raw, ok := stateDict[name]
	if !ok {
		return nil, errors.Errorf("missing %s in state dict", name)
	}
	if raw.DType() != tensor.Float32 {
		return nil, errors.Errorf("%s dtype mismatch: expected float32, got %v", name, raw.DType())
	}
	if !raw.Shape().Equal(want) {
		return nil, errors.Errorf("%s shape mismatch: expected %v, got %v", name, want, raw.Shape())
	}
	return raw, nil
}
