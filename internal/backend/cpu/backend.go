// Package cpu implements the pure-Go CPU compute backend.
//
// All kernels operate on float32 buffers except ArgMax (int32 output) and
// the loss targets (int32 input). Operations always allocate fresh output
// tensors; inputs are never mutated, which the autodiff tape relies on.
package cpu

import (
	"fmt"

	"github.com/gradbook-ml/gradbook/internal/parallel"
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Backend is the pure-Go CPU implementation of tensor.Backend.
type Backend struct {
	parallelCfg parallel.Config
}

// New creates a CPU backend with default parallelism settings.
func New() *Backend {
	return &Backend{parallelCfg: parallel.DefaultConfig()}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "cpu"
}

// requireFloat32 panics when the tensor is not float32. Kernels are
// float32-only; labels and pixels are converted before reaching them.
func requireFloat32(op string, ts ...*tensor.RawTensor) {
	for _, t := range ts {
		if t.DType() != tensor.Float32 {
			panic(fmt.Sprintf("cpu.%s: requires float32 tensors, got %s", op, t.DType()))
		}
	}
}
