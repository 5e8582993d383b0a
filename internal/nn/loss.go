package nn

import (
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// NLLLoss computes the negative log-likelihood loss, averaged over the
// batch:
//
//	loss = -1/N * Σ logProbs[i, targets[i]]
//
// Inputs must be log-probabilities, normally produced by a LogSoftmax
// head. Targets are int32 class indices with shape [batch].
type NLLLoss struct{}

// NewNLLLoss creates an NLLLoss criterion.
func NewNLLLoss() *NLLLoss {
	return &NLLLoss{}
}

// Forward computes the mean negative log-likelihood as a scalar [1]
// tensor.
func (l *NLLLoss) Forward(logProbs *tensor.Tensor[float32], targets *tensor.Tensor[int32]) *tensor.Tensor[float32] {
	out := logProbs.Backend().NLL(logProbs.Raw(), targets.Raw())
	return tensor.New[float32](out, logProbs.Backend())
}

// CrossEntropyLoss computes softmax cross-entropy from raw logits,
// averaged over the batch. It fuses LogSoftmax and NLLLoss, which is
// both faster and numerically safer than composing them from
// element-wise ops.
//
// Targets are int32 class indices with shape [batch].
type CrossEntropyLoss struct{}

// NewCrossEntropyLoss creates a CrossEntropyLoss criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the mean cross-entropy as a scalar [1] tensor.
func (l *CrossEntropyLoss) Forward(logits *tensor.Tensor[float32], targets *tensor.Tensor[int32]) *tensor.Tensor[float32] {
	out := logits.Backend().CrossEntropy(logits.Raw(), targets.Raw())
	return tensor.New[float32](out, logits.Backend())
}

// MSELoss computes the mean squared error between predictions and
// float32 targets of the same shape:
//
//	loss = 1/N * Σ (pred - target)²
type MSELoss struct{}

// NewMSELoss creates an MSELoss criterion.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

// Forward computes the mean squared error as a scalar [1] tensor.
func (l *MSELoss) Forward(pred, target *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	diff := pred.Sub(target)
	return diff.Mul(diff).Mean()
}
