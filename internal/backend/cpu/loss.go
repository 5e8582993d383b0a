package cpu

import (
	"fmt"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// NLL computes the negative log-likelihood loss, averaged over the batch.
//
// logProbs must hold log-probabilities [batch, classes] (LogSoftmax
// output); targets holds int32 class indices [batch]. The result is a
// scalar [1] tensor: mean over the batch of -logProbs[b, targets[b]].
func (b *Backend) NLL(logProbs, targets *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("NLL", logProbs)

	batch, classes := lossDims("NLL", logProbs, targets)
	lpData := logProbs.AsFloat32()
	tData := targets.AsInt32()

	var total float32
	for r := 0; r < batch; r++ {
		cls := int(tData[r])
		if cls < 0 || cls >= classes {
			panic(fmt.Sprintf("cpu.NLL: target %d out of range [0, %d)", cls, classes))
		}
		total -= lpData[r*classes+cls]
	}

	out := tensor.MustNewRaw(tensor.Shape{1}, tensor.Float32)
	out.AsFloat32()[0] = total / float32(batch)
	return out
}

// CrossEntropy computes softmax cross-entropy from raw logits, averaged
// over the batch. Equivalent to NLL(LogSoftmax(logits), targets) but fused
// into one numerically stable kernel.
func (b *Backend) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("CrossEntropy", logits)
	logProbs := b.LogSoftmax(logits)
	return b.NLL(logProbs, targets)
}

// lossDims validates the [batch, classes] / [batch] pairing shared by the
// loss kernels and returns the two dimensions.
func lossDims(op string, scores, targets *tensor.RawTensor) (batch, classes int) {
	shape := scores.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cpu.%s: scores must be 2D [batch, classes], got %v", op, shape))
	}
	if targets.DType() != tensor.Int32 {
		panic(fmt.Sprintf("cpu.%s: targets must be int32, got %s", op, targets.DType()))
	}
	if targets.NumElements() != shape[0] {
		panic(fmt.Sprintf("cpu.%s: %d targets for batch of %d", op, targets.NumElements(), shape[0]))
	}
	return shape[0], shape[1]
}
