package ops

import "github.com/gradbook-ml/gradbook/internal/tensor"

// DropoutOp records output = x * mask, where mask holds 0 for dropped
// elements and 1/(1-p) for survivors (inverted dropout).
//
// The mask is fixed for the backward pass: gradient flows only through
// the surviving elements, scaled the same way as the forward pass.
type DropoutOp struct {
	input  *tensor.RawTensor
	mask   *tensor.RawTensor
	output *tensor.RawTensor
}

// NewDropoutOp creates a DropoutOp.
func NewDropoutOp(input, mask, output *tensor.RawTensor) *DropoutOp {
	return &DropoutOp{input: input, mask: mask, output: output}
}

// Backward multiplies the output gradient by the saved mask.
func (op *DropoutOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.mask)}
}

// Inputs returns [x].
func (op *DropoutOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the masked tensor.
func (op *DropoutOp) Output() *tensor.RawTensor { return op.output }
