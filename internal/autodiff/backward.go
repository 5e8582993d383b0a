package autodiff

import (
	"fmt"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Gradients runs the backward pass for a scalar output tensor (typically
// a loss) and returns the gradient of every tensor that participated in
// its computation, keyed by *RawTensor identity.
//
// The output tensor must be bound to an autodiff Backend whose tape was
// recording during the forward pass.
func Gradients(output *tensor.Tensor[float32]) map[*tensor.RawTensor]*tensor.RawTensor {
	backend, ok := output.Backend().(*Backend)
	if !ok {
		panic(fmt.Sprintf("autodiff.Gradients: tensor is bound to %q, not an autodiff backend", output.Backend().Name()))
	}

	tape := backend.Tape()
	if tape.NumOps() == 0 {
		panic("autodiff.Gradients: no operations recorded (did you forget Tape().StartRecording()?)")
	}

	// Seed with dLoss/dLoss = 1.
	seed := tensor.MustNewRaw(output.Shape(), tensor.Float32)
	data := seed.AsFloat32()
	for i := range data {
		data[i] = 1
	}

	return tape.Backward(output.Raw(), seed, backend)
}
