package ops

import "github.com/gradbook-ml/gradbook/internal/tensor"

// reduceBroadcast sums grad over the dimensions that were broadcast in the
// forward pass so the result matches targetShape. Returns grad unchanged
// when no broadcasting occurred.
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad
	}

	out := tensor.MustNewRaw(targetShape, tensor.Float32)
	outData, gradData := out.AsFloat32(), grad.AsFloat32()

	gradStrides := gradShape.ComputeStrides()

	// Stride into the target for each grad dimension; 0 where the target
	// dimension is 1 (or missing), which folds broadcast axes together.
	targetStrides := make([]int, len(gradShape))
	realStrides := targetShape.ComputeStrides()
	offset := len(gradShape) - len(targetShape)
	for i := range gradShape {
		j := i - offset
		if j < 0 || targetShape[j] == 1 {
			targetStrides[i] = 0
		} else {
			targetStrides[i] = realStrides[j]
		}
	}

	for flat, g := range gradData {
		rem := flat
		idx := 0
		for d := range gradStrides {
			coord := rem / gradStrides[d]
			rem %= gradStrides[d]
			idx += coord * targetStrides[d]
		}
		outData[idx] += g
	}
	return out
}

// fill creates a float32 tensor of the given shape with every element set
// to value.
func fill(shape tensor.Shape, value float32) *tensor.RawTensor {
	out := tensor.MustNewRaw(shape, tensor.Float32)
	data := out.AsFloat32()
	for i := range data {
		data[i] = value
	}
	return out
}
