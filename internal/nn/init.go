package nn

import (
	"math"
	"math/rand"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Xavier initializes a weight tensor with Xavier/Glorot uniform values:
// U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut))). This keeps the
// variance of activations roughly constant across layers.
func Xavier(fanIn, fanOut int, shape tensor.Shape, backend tensor.Backend) *tensor.Tensor[float32] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		data[i] = float32((rand.Float64()*2.0 - 1.0) * bound)
	}
	return t
}

// Zeros creates a zero-filled float32 tensor, used for bias
// initialization.
func Zeros(shape tensor.Shape, backend tensor.Backend) *tensor.Tensor[float32] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a float32 tensor filled with ones.
func Ones(shape tensor.Shape, backend tensor.Backend) *tensor.Tensor[float32] {
	return tensor.Ones[float32](shape, backend)
}

// Randn creates a float32 tensor with values drawn from N(0, 1).
func Randn(shape tensor.Shape, backend tensor.Backend) *tensor.Tensor[float32] {
	return tensor.Randn(shape, backend)
}
