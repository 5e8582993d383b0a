package tensor

import "math/rand"

// Zeros creates a zero-filled tensor.
func Zeros[T DType](shape Shape, b Backend) *Tensor[T] {
	var dummy T
	return New[T](MustNewRaw(shape, inferDataType(dummy)), b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType](shape Shape, b Backend) *Tensor[T] {
	return Full[T](shape, 1, b)
}

// Full creates a tensor filled with the given value.
func Full[T DType](shape Shape, value T, b Backend) *Tensor[T] {
	t := Zeros[T](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a float32 tensor with values drawn from N(0, 1).
func Randn(shape Shape, b Backend) *Tensor[float32] {
	t := Zeros[float32](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = float32(rand.NormFloat64())
	}
	return t
}

// Rand creates a float32 tensor with values drawn uniformly from [0, 1).
func Rand(shape Shape, b Backend) *Tensor[float32] {
	t := Zeros[float32](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = rand.Float32()
	}
	return t
}

// Arange creates a 1-D int32 tensor with values [start, end).
func Arange(start, end int32, b Backend) *Tensor[int32] {
	n := int(end - start)
	if n < 0 {
		n = 0
	}
	t := Zeros[int32](Shape{n}, b)
	data := t.Data()
	for i := range data {
		data[i] = start + int32(i)
	}
	return t
}
