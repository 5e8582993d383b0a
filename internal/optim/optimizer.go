// Package optim implements optimization algorithms for training neural
// networks.
//
// This package provides:
//   - Optimizer interface: base interface for all optimizers
//   - SGD: stochastic gradient descent with optional momentum
//   - Adam: adaptive moment estimation
//
// Design inspired by PyTorch's torch.optim.
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
//
//	for epoch := range epochs {
//	    backend.Tape().Clear()
//	    output := model.Forward(input)
//	    loss := criterion.Forward(output, targets)
//	    grads := autodiff.Gradients(loss)
//	    optimizer.Step(grads)
//	}
package optim

import (
	"github.com/gradbook-ml/gradbook/internal/nn"
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
// Optimizers update model parameters in-place from the gradient map
// produced by a backward pass.
type Optimizer interface {
	// Name returns the optimizer type ("SGD", "Adam"), recorded in
	// checkpoint headers.
	Name() string

	// Step applies one gradient update to all parameters. Gradients
	// are looked up by the parameter's raw tensor; parameters absent
	// from the map are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR updates the learning rate, for scheduling.
	SetLR(lr float32)

	// StateDict returns the optimizer's internal state (momentum
	// buffers, moment estimates) for checkpointing.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict restores state saved by StateDict.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// getGradient retrieves the gradient for a parameter, or nil when the
// parameter did not participate in the forward pass.
func getGradient(param *nn.Parameter, grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Raw()]
}
