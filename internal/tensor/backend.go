package tensor

// Backend defines the compute interface for tensor operations.
//
// The library ships a pure-Go CPU implementation (internal/backend/cpu)
// and an autodiff decorator (internal/autodiff) that wraps any Backend and
// records operations for backpropagation. Code that trains models should
// hold the decorator; code that only evaluates can use the CPU backend
// directly.
//
// Backends must never mutate their inputs: the autodiff tape identifies
// tensors by pointer, so every operation returns a fresh RawTensor.
type Backend interface {
	// Element-wise binary operations with 2-D broadcasting
	// (a [batch, n] op b [1, n] broadcasts b across rows).
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul performs 2-D matrix multiplication: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Element-wise math.
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor

	// Activations.
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	// Softmax and LogSoftmax operate row-wise on [batch, classes].
	Softmax(x *RawTensor) *RawTensor
	LogSoftmax(x *RawTensor) *RawTensor

	// Dropout zeroes elements with probability p and scales survivors by
	// 1/(1-p) when training is true; otherwise it returns a copy of x and
	// a nil mask. The returned mask (same shape as x, values 0 or 1/(1-p))
	// is what the backward pass multiplies by.
	Dropout(x *RawTensor, p float32, training bool) (out, mask *RawTensor)

	// Losses. Both reduce to a scalar [1] tensor with the batch mean.
	// NLL consumes log-probabilities (LogSoftmax output), CrossEntropy
	// consumes raw logits. targets holds int32 class indices [batch].
	NLL(logProbs, targets *RawTensor) *RawTensor
	CrossEntropy(logits, targets *RawTensor) *RawTensor

	// Reductions over all elements, producing a scalar [1] tensor.
	Sum(x *RawTensor) *RawTensor
	Mean(x *RawTensor) *RawTensor

	// ArgMax returns int32 indices of the row maxima of a 2-D tensor.
	// Not differentiable; never recorded on the tape.
	ArgMax(x *RawTensor) *RawTensor

	// Name identifies the backend ("cpu", "autodiff(cpu)", ...).
	Name() string
}
