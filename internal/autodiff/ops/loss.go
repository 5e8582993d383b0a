package ops

import "github.com/gradbook-ml/gradbook/internal/tensor"

// NLLOp records the negative log-likelihood loss over a batch of
// log-probabilities.
//
// loss = mean_b(-logProbs[b, target_b]), so the gradient places
// -outputGrad/batch at each (b, target_b) and zero elsewhere. The targets
// tensor is an index, not a differentiable input.
type NLLOp struct {
	logProbs *tensor.RawTensor
	targets  *tensor.RawTensor
	output   *tensor.RawTensor
}

// NewNLLOp creates an NLLOp.
func NewNLLOp(logProbs, targets, output *tensor.RawTensor) *NLLOp {
	return &NLLOp{logProbs: logProbs, targets: targets, output: output}
}

// Backward scatters -g/batch into the target positions.
func (op *NLLOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.logProbs.Shape()
	batch, classes := shape[0], shape[1]

	g := outputGrad.AsFloat32()[0]

	grad := tensor.MustNewRaw(shape, tensor.Float32)
	gradData := grad.AsFloat32()
	tData := op.targets.AsInt32()

	scale := -g / float32(batch)
	for r := 0; r < batch; r++ {
		gradData[r*classes+int(tData[r])] = scale
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [logProbs]; targets carry no gradient.
func (op *NLLOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.logProbs} }

// Output returns the scalar loss.
func (op *NLLOp) Output() *tensor.RawTensor { return op.output }

// CrossEntropyOp records the fused softmax cross-entropy loss over a
// batch of raw logits.
//
// The fused gradient is the classic
//
//	∂L/∂logits = (softmax(logits) - onehot(targets)) / batch
//
// scaled by the incoming output gradient.
type CrossEntropyOp struct {
	logits  *tensor.RawTensor
	targets *tensor.RawTensor
	output  *tensor.RawTensor
}

// NewCrossEntropyOp creates a CrossEntropyOp.
func NewCrossEntropyOp(logits, targets, output *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{logits: logits, targets: targets, output: output}
}

// Backward computes (softmax - onehot)/batch scaled by the output grad.
func (op *CrossEntropyOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.logits.Shape()
	batch, classes := shape[0], shape[1]

	g := outputGrad.AsFloat32()[0]

	probs := backend.Softmax(op.logits)
	grad := probs // freshly allocated by Softmax, safe to reuse in place
	gradData := grad.AsFloat32()
	tData := op.targets.AsInt32()

	scale := g / float32(batch)
	for r := 0; r < batch; r++ {
		target := int(tData[r])
		for c := 0; c < classes; c++ {
			v := gradData[r*classes+c]
			if c == target {
				v -= 1
			}
			gradData[r*classes+c] = v * scale
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [logits]; targets carry no gradient.
func (op *CrossEntropyOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.logits} }

// Output returns the scalar loss.
func (op *CrossEntropyOp) Output() *tensor.RawTensor { return op.output }
