package cpu

import (
	"fmt"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Reshape returns a new tensor view of the same data under a new shape.
func (b *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	out, err := t.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("cpu.Reshape: %v", err))
	}
	return out
}

// Transpose permutes the tensor's dimensions. With no axes the dimension
// order is reversed. The result is a fresh contiguous tensor.
func (b *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	requireFloat32("Transpose", t)

	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("cpu.Transpose: got %d axes for %dD tensor", len(axes), ndim))
	}

	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("cpu.Transpose: axis %d out of range for %dD tensor", ax, ndim))
		}
		outShape[i] = shape[ax]
	}

	out := tensor.MustNewRaw(outShape, tensor.Float32)
	inData, outData := t.AsFloat32(), out.AsFloat32()

	inStrides := t.Strides()
	outStrides := outShape.ComputeStrides()

	for flat := range outData {
		rem := flat
		inIdx := 0
		for d := 0; d < ndim; d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			inIdx += coord * inStrides[axes[d]]
		}
		outData[flat] = inData[inIdx]
	}
	return out
}
