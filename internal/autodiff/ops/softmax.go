package ops

import "github.com/gradbook-ml/gradbook/internal/tensor"

// SoftmaxOp records output = softmax(x) applied row-wise.
//
// The Jacobian contracts to:
//
//	grad_x[j] = y[j] * (grad_y[j] - Σ_i grad_y[i] * y[i])
//
// per row, using the stored output y.
type SoftmaxOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSoftmaxOp creates a SoftmaxOp.
func NewSoftmaxOp(input, output *tensor.RawTensor) *SoftmaxOp {
	return &SoftmaxOp{input: input, output: output}
}

// Backward computes the softmax input gradient row by row.
func (op *SoftmaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.input.Shape()
	batch, classes := shape[0], shape[1]

	grad := tensor.MustNewRaw(shape, tensor.Float32)
	gradData := grad.AsFloat32()
	yData, gData := op.output.AsFloat32(), outputGrad.AsFloat32()

	for r := 0; r < batch; r++ {
		y := yData[r*classes : (r+1)*classes]
		g := gData[r*classes : (r+1)*classes]
		out := gradData[r*classes : (r+1)*classes]

		var dot float32
		for i := range y {
			dot += g[i] * y[i]
		}
		for i := range y {
			out[i] = y[i] * (g[i] - dot)
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *SoftmaxOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns softmax(x).
func (op *SoftmaxOp) Output() *tensor.RawTensor { return op.output }

// LogSoftmaxOp records output = log(softmax(x)) applied row-wise.
//
// Per row:
//
//	grad_x[j] = grad_y[j] - softmax(x)[j] * Σ_i grad_y[i]
//
// where softmax(x) = exp(output) reuses the stored log-probabilities.
type LogSoftmaxOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewLogSoftmaxOp creates a LogSoftmaxOp.
func NewLogSoftmaxOp(input, output *tensor.RawTensor) *LogSoftmaxOp {
	return &LogSoftmaxOp{input: input, output: output}
}

// Backward computes the log-softmax input gradient row by row.
func (op *LogSoftmaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.input.Shape()
	batch, classes := shape[0], shape[1]

	probs := backend.Exp(op.output)

	grad := tensor.MustNewRaw(shape, tensor.Float32)
	gradData := grad.AsFloat32()
	pData, gData := probs.AsFloat32(), outputGrad.AsFloat32()

	for r := 0; r < batch; r++ {
		p := pData[r*classes : (r+1)*classes]
		g := gData[r*classes : (r+1)*classes]
		out := gradData[r*classes : (r+1)*classes]

		var gradSum float32
		for _, gi := range g {
			gradSum += gi
		}
		for i := range p {
			out[i] = g[i] - p[i]*gradSum
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *LogSoftmaxOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns log(softmax(x)).
func (op *LogSoftmaxOp) Output() *tensor.RawTensor { return op.output }
