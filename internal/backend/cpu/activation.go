package cpu

import (
	"math"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// unaryOp applies f element-wise to a float32 tensor.
func unaryOp(name string, x *tensor.RawTensor, f func(v float32) float32) *tensor.RawTensor {
	requireFloat32(name, x)
	out := tensor.MustNewRaw(x.Shape(), tensor.Float32)
	xData, outData := x.AsFloat32(), out.AsFloat32()
	for i, v := range xData {
		outData[i] = f(v)
	}
	return out
}

// Exp computes the element-wise exponential.
func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp("Exp", x, func(v float32) float32 {
		return float32(math.Exp(float64(v)))
	})
}

// Log computes the element-wise natural logarithm.
func (b *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp("Log", x, func(v float32) float32 {
		return float32(math.Log(float64(v)))
	})
}

// ReLU computes max(0, x) element-wise.
func (b *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp("ReLU", x, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// Sigmoid computes 1 / (1 + exp(-x)) element-wise.
func (b *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp("Sigmoid", x, func(v float32) float32 {
		return float32(1.0 / (1.0 + math.Exp(float64(-v))))
	})
}

// Tanh computes the hyperbolic tangent element-wise.
func (b *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp("Tanh", x, func(v float32) float32 {
		return float32(math.Tanh(float64(v)))
	})
}

// Softmax applies row-wise softmax to a [batch, classes] tensor.
// Rows are shifted by their maximum before exponentiation so large logits
// cannot overflow float32.
func (b *Backend) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	logProbs := b.LogSoftmax(x)
	data := logProbs.AsFloat32()
	for i, lp := range data {
		data[i] = float32(math.Exp(float64(lp)))
	}
	return logProbs
}

// LogSoftmax applies row-wise log-softmax to a [batch, classes] tensor
// using the log-sum-exp trick.
func (b *Backend) LogSoftmax(x *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("LogSoftmax", x)

	shape := x.Shape()
	if len(shape) != 2 {
		panic("cpu.LogSoftmax: requires a 2D [batch, classes] tensor")
	}
	batch, classes := shape[0], shape[1]

	out := tensor.MustNewRaw(shape, tensor.Float32)
	xData, outData := x.AsFloat32(), out.AsFloat32()

	for r := 0; r < batch; r++ {
		row := xData[r*classes : (r+1)*classes]
		outRow := outData[r*classes : (r+1)*classes]
		logSumExpInto(row, outRow)
	}
	return out
}

// logSumExpInto writes log-softmax of row into out.
func logSumExpInto(row, out []float32) {
	maxV := row[0]
	for _, v := range row[1:] {
		if v > maxV {
			maxV = v
		}
	}

	var sumExp float64
	for _, v := range row {
		sumExp += math.Exp(float64(v - maxV))
	}
	logSumExp := maxV + float32(math.Log(sumExp))

	for i, v := range row {
		out[i] = v - logSumExp
	}
}
