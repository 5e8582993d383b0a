package cpu

import (
	"fmt"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Add performs element-wise addition with broadcasting.
func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("Add", x, y, func(a, c float32) float32 { return a + c })
}

// Sub performs element-wise subtraction with broadcasting.
func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("Sub", x, y, func(a, c float32) float32 { return a - c })
}

// Mul performs element-wise multiplication with broadcasting.
func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("Mul", x, y, func(a, c float32) float32 { return a * c })
}

// Div performs element-wise division with broadcasting.
func (b *Backend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("Div", x, y, func(a, c float32) float32 { return a / c })
}

// binaryOp applies f element-wise, broadcasting x and y to a common shape.
func (b *Backend) binaryOp(name string, x, y *tensor.RawTensor, f func(a, c float32) float32) *tensor.RawTensor {
	requireFloat32(name, x, y)

	xData, yData := x.AsFloat32(), y.AsFloat32()

	// Fast path: identical shapes.
	if x.Shape().Equal(y.Shape()) {
		out := tensor.MustNewRaw(x.Shape(), tensor.Float32)
		outData := out.AsFloat32()
		for i := range outData {
			outData[i] = f(xData[i], yData[i])
		}
		return out
	}

	outShape, _, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		panic(fmt.Sprintf("cpu.%s: %v", name, err))
	}

	out := tensor.MustNewRaw(outShape, tensor.Float32)
	outData := out.AsFloat32()

	xIdx := newBroadcastIndexer(x.Shape(), outShape)
	yIdx := newBroadcastIndexer(y.Shape(), outShape)

	for i := range outData {
		outData[i] = f(xData[xIdx.at(i)], yData[yIdx.at(i)])
	}
	return out
}

// broadcastIndexer maps a flat index in the broadcast output shape back to
// a flat index in a (possibly lower-rank, size-1-padded) input shape.
type broadcastIndexer struct {
	outStrides []int // strides of the output shape
	inStrides  []int // strides of the input, 0 where the input dim is 1
}

func newBroadcastIndexer(in, out tensor.Shape) broadcastIndexer {
	outStrides := out.ComputeStrides()
	inStrides := make([]int, len(out))

	realStrides := in.ComputeStrides()
	offset := len(out) - len(in)
	for i := range out {
		j := i - offset
		if j < 0 || in[j] == 1 {
			inStrides[i] = 0 // broadcast dimension
		} else {
			inStrides[i] = realStrides[j]
		}
	}
	return broadcastIndexer{outStrides: outStrides, inStrides: inStrides}
}

func (bi broadcastIndexer) at(flat int) int {
	idx := 0
	for d := range bi.outStrides {
		coord := flat / bi.outStrides[d]
		flat %= bi.outStrides[d]
		idx += coord * bi.inStrides[d]
	}
	return idx
}
