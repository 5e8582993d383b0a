package cpu

import (
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Sum reduces all elements to a scalar [1] tensor.
func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("Sum", x)

	var total float64 // accumulate in float64 to limit rounding drift
	for _, v := range x.AsFloat32() {
		total += float64(v)
	}

	out := tensor.MustNewRaw(tensor.Shape{1}, tensor.Float32)
	out.AsFloat32()[0] = float32(total)
	return out
}

// Mean reduces all elements to their scalar [1] mean.
func (b *Backend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.Sum(x)
	out.AsFloat32()[0] /= float32(x.NumElements())
	return out
}

// ArgMax returns the int32 index of the maximum of each row of a 2-D
// tensor. Ties resolve to the lowest index.
func (b *Backend) ArgMax(x *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("ArgMax", x)

	shape := x.Shape()
	if len(shape) != 2 {
		panic("cpu.ArgMax: requires a 2D [batch, classes] tensor")
	}
	batch, classes := shape[0], shape[1]

	out := tensor.MustNewRaw(tensor.Shape{batch}, tensor.Int32)
	xData, outData := x.AsFloat32(), out.AsInt32()

	for r := 0; r < batch; r++ {
		row := xData[r*classes : (r+1)*classes]
		best := 0
		for i, v := range row[1:] {
			if v > row[best] {
				best = i + 1
			}
		}
		outData[r] = int32(best)
	}
	return out
}
