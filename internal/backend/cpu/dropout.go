package cpu

import (
	"fmt"
	"math/rand"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Dropout zeroes elements with probability p and scales survivors by
// 1/(1-p) (inverted dropout), so evaluation needs no rescaling.
//
// Returns the output and the applied mask (values 0 or 1/(1-p)). During
// evaluation the input passes through unchanged, copied to preserve the
// fresh-output contract, and the mask is nil.
func (b *Backend) Dropout(x *tensor.RawTensor, p float32, training bool) (*tensor.RawTensor, *tensor.RawTensor) {
	requireFloat32("Dropout", x)
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("cpu.Dropout: probability must be in [0, 1), got %v", p))
	}

	if !training || p == 0 {
		return x.Clone(), nil
	}

	out := tensor.MustNewRaw(x.Shape(), tensor.Float32)
	mask := tensor.MustNewRaw(x.Shape(), tensor.Float32)

	xData := x.AsFloat32()
	outData, maskData := out.AsFloat32(), mask.AsFloat32()
	scale := 1 / (1 - p)

	for i, v := range xData {
		if rand.Float32() >= p {
			maskData[i] = scale
			outData[i] = v * scale
		}
	}
	return out, mask
}
