package nn

import (
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// ReLU is the rectified linear unit activation module: f(x) = max(0, x).
type ReLU struct{}

// NewReLU creates a ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU element-wise.
func (r *ReLU) Forward(input *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	return input.ReLU()
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter { return nil }

// StateDict returns an empty map.
func (r *ReLU) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (r *ReLU) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// Sigmoid is the logistic activation module: σ(x) = 1 / (1 + exp(-x)).
// Outputs lie in (0, 1).
type Sigmoid struct{}

// NewSigmoid creates a Sigmoid activation module.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

// Forward applies the sigmoid element-wise.
func (s *Sigmoid) Forward(input *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	return input.Sigmoid()
}

// Parameters returns nil.
func (s *Sigmoid) Parameters() []*Parameter { return nil }

// StateDict returns an empty map.
func (s *Sigmoid) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (s *Sigmoid) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// Tanh is the hyperbolic tangent activation module. Outputs lie in
// (-1, 1).
type Tanh struct{}

// NewTanh creates a Tanh activation module.
func NewTanh() *Tanh {
	return &Tanh{}
}

// Forward applies tanh element-wise.
func (t *Tanh) Forward(input *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	return input.Tanh()
}

// Parameters returns nil.
func (t *Tanh) Parameters() []*Parameter { return nil }

// StateDict returns an empty map.
func (t *Tanh) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (t *Tanh) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// LogSoftmax applies row-wise log-softmax to [batch, classes] logits,
// producing log-probabilities for NLLLoss.
type LogSoftmax struct{}

// NewLogSoftmax creates a LogSoftmax module.
func NewLogSoftmax() *LogSoftmax {
	return &LogSoftmax{}
}

// Forward converts logits to log-probabilities.
func (l *LogSoftmax) Forward(input *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	return input.LogSoftmax()
}

// Parameters returns nil.
func (l *LogSoftmax) Parameters() []*Parameter { return nil }

// StateDict returns an empty map.
func (l *LogSoftmax) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (l *LogSoftmax) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }
