package tensor

// Add performs element-wise addition with broadcasting.
func (t *Tensor[T]) Add(other *Tensor[T]) *Tensor[T] {
	return New[T](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T]) Sub(other *Tensor[T]) *Tensor[T] {
	return New[T](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T]) Mul(other *Tensor[T]) *Tensor[T] {
	return New[T](t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div performs element-wise division with broadcasting.
func (t *Tensor[T]) Div(other *Tensor[T]) *Tensor[T] {
	return New[T](t.backend.Div(t.raw, other.raw), t.backend)
}

// MatMul performs 2-D matrix multiplication: [M, K] @ [K, N] -> [M, N].
func (t *Tensor[T]) MatMul(other *Tensor[T]) *Tensor[T] {
	return New[T](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data under a new shape.
func (t *Tensor[T]) Reshape(newShape ...int) *Tensor[T] {
	return New[T](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose permutes the tensor's dimensions. With no axes the dimension
// order is reversed, which for 2-D tensors is the standard transpose.
func (t *Tensor[T]) Transpose(axes ...int) *Tensor[T] {
	return New[T](t.backend.Transpose(t.raw, axes...), t.backend)
}

// T is a shortcut for 2-D transpose.
func (t *Tensor[T]) T() *Tensor[T] {
	if len(t.Shape()) != 2 {
		panic("T() only works for 2D tensors")
	}
	return t.Transpose(1, 0)
}

// Exp computes the element-wise exponential.
func (t *Tensor[T]) Exp() *Tensor[T] {
	return New[T](t.backend.Exp(t.raw), t.backend)
}

// Log computes the element-wise natural logarithm.
func (t *Tensor[T]) Log() *Tensor[T] {
	return New[T](t.backend.Log(t.raw), t.backend)
}

// ReLU applies the element-wise rectifier max(0, x).
func (t *Tensor[T]) ReLU() *Tensor[T] {
	return New[T](t.backend.ReLU(t.raw), t.backend)
}

// Sigmoid applies the element-wise logistic function 1/(1+exp(-x)).
func (t *Tensor[T]) Sigmoid() *Tensor[T] {
	return New[T](t.backend.Sigmoid(t.raw), t.backend)
}

// Tanh applies the element-wise hyperbolic tangent.
func (t *Tensor[T]) Tanh() *Tensor[T] {
	return New[T](t.backend.Tanh(t.raw), t.backend)
}

// Softmax applies row-wise softmax to a [batch, classes] tensor.
func (t *Tensor[T]) Softmax() *Tensor[T] {
	return New[T](t.backend.Softmax(t.raw), t.backend)
}

// LogSoftmax applies row-wise log-softmax to a [batch, classes] tensor.
func (t *Tensor[T]) LogSoftmax() *Tensor[T] {
	return New[T](t.backend.LogSoftmax(t.raw), t.backend)
}

// Sum reduces all elements to a scalar [1] tensor.
func (t *Tensor[T]) Sum() *Tensor[T] {
	return New[T](t.backend.Sum(t.raw), t.backend)
}

// Mean reduces all elements to their scalar [1] mean.
func (t *Tensor[T]) Mean() *Tensor[T] {
	return New[T](t.backend.Mean(t.raw), t.backend)
}

// ArgMax returns the int32 index of the maximum of each row.
func (t *Tensor[T]) ArgMax() *Tensor[int32] {
	return New[int32](t.backend.ArgMax(t.raw), t.backend)
}
