// Package autodiff implements reverse-mode automatic differentiation as a
// backend decorator.
//
// Backend wraps any tensor.Backend and records every differentiable
// operation on a GradientTape during the forward pass. Backward walks the
// tape in reverse, applying the chain rule and accumulating gradients per
// input tensor.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	output := model.Forward(input)
//	loss := criterion.Forward(output, targets)
//	grads := autodiff.Gradients(loss)
//
//	optimizer.Step(grads)
//	backend.Tape().Clear()
package autodiff

import (
	"github.com/gradbook-ml/gradbook/internal/autodiff/ops"
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Backend wraps a tensor.Backend and records operations for
// backpropagation. It implements tensor.Backend itself, so models and
// tensors use it exactly like the plain CPU backend.
type Backend struct {
	inner tensor.Backend
	tape  *GradientTape
}

// New creates an autodiff decorator around the given backend.
func New(inner tensor.Backend) *Backend {
	return &Backend{
		inner: inner,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for recording control and inspection.
func (b *Backend) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend.
func (b *Backend) Inner() tensor.Backend {
	return b.inner
}

// Name returns the decorated backend name.
func (b *Backend) Name() string {
	return "autodiff(" + b.inner.Name() + ")"
}

// Add performs element-wise addition and records the operation.
func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Add(x, y)
	b.tape.Record(ops.NewAddOp(x, y, out))
	return out
}

// Sub performs element-wise subtraction and records the operation.
func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sub(x, y)
	b.tape.Record(ops.NewSubOp(x, y, out))
	return out
}

// Mul performs element-wise multiplication and records the operation.
func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Mul(x, y)
	b.tape.Record(ops.NewMulOp(x, y, out))
	return out
}

// Div performs element-wise division and records the operation.
func (b *Backend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Div(x, y)
	b.tape.Record(ops.NewDivOp(x, y, out))
	return out
}

// MatMul performs matrix multiplication and records the operation.
func (b *Backend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.MatMul(x, y)
	b.tape.Record(ops.NewMatMulOp(x, y, out))
	return out
}

// Reshape reshapes a tensor and records the operation, so gradients of
// reshaped views (a bias broadcast as a [1, n] row) reach the original
// parameter tensor.
func (b *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	out := b.inner.Reshape(t, newShape)
	b.tape.Record(ops.NewReshapeOp(t, out))
	return out
}

// Transpose transposes a tensor and records the operation, so gradients
// of a transposed weight view reach the original parameter tensor.
func (b *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	if len(axes) == 0 {
		ndim := len(t.Shape())
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	out := b.inner.Transpose(t, axes...)
	b.tape.Record(ops.NewTransposeOp(t, out, axes))
	return out
}

// Exp computes the element-wise exponential and records the operation.
func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Exp(x)
	b.tape.Record(ops.NewExpOp(x, out))
	return out
}

// Log computes the element-wise logarithm and records the operation.
func (b *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Log(x)
	b.tape.Record(ops.NewLogOp(x, out))
	return out
}

// ReLU applies ReLU and records the operation.
func (b *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.ReLU(x)
	b.tape.Record(ops.NewReLUOp(x, out))
	return out
}

// Sigmoid applies the sigmoid and records the operation.
func (b *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sigmoid(x)
	b.tape.Record(ops.NewSigmoidOp(x, out))
	return out
}

// Tanh applies the hyperbolic tangent and records the operation.
func (b *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Tanh(x)
	b.tape.Record(ops.NewTanhOp(x, out))
	return out
}

// Softmax applies row-wise softmax and records the operation.
func (b *Backend) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Softmax(x)
	b.tape.Record(ops.NewSoftmaxOp(x, out))
	return out
}

// LogSoftmax applies row-wise log-softmax and records the operation.
func (b *Backend) LogSoftmax(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.LogSoftmax(x)
	b.tape.Record(ops.NewLogSoftmaxOp(x, out))
	return out
}

// Dropout applies dropout and records the operation together with the
// sampled mask. Nothing is recorded in evaluation mode, where dropout is
// the identity.
func (b *Backend) Dropout(x *tensor.RawTensor, p float32, training bool) (*tensor.RawTensor, *tensor.RawTensor) {
	out, mask := b.inner.Dropout(x, p, training)
	if mask != nil {
		b.tape.Record(ops.NewDropoutOp(x, mask, out))
	}
	return out, mask
}

// NLL computes the negative log-likelihood loss and records the
// operation. Targets are indices and receive no gradient.
func (b *Backend) NLL(logProbs, targets *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.NLL(logProbs, targets)
	b.tape.Record(ops.NewNLLOp(logProbs, targets, out))
	return out
}

// CrossEntropy computes the fused softmax cross-entropy loss and records
// the operation.
func (b *Backend) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.CrossEntropy(logits, targets)
	b.tape.Record(ops.NewCrossEntropyOp(logits, targets, out))
	return out
}

// Sum reduces to a scalar and records the operation.
func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sum(x)
	b.tape.Record(ops.NewSumOp(x, out))
	return out
}

// Mean reduces to a scalar mean and records the operation.
func (b *Backend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Mean(x)
	b.tape.Record(ops.NewMeanOp(x, out))
	return out
}

// ArgMax delegates without recording: argmax is not differentiable and is
// only used for predictions and accuracy.
func (b *Backend) ArgMax(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.ArgMax(x)
}
