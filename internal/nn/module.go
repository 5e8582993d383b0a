// Package nn implements neural network modules for gradbook.
//
// The building blocks are:
//   - Module interface: base interface for all network components
//   - Parameter: trainable tensors with names
//   - Linear: fully connected layer
//   - Activations: ReLU, Sigmoid, Tanh, LogSoftmax
//   - Dropout: inverted dropout regularization
//   - Loss functions: NLLLoss, CrossEntropyLoss, MSELoss
//   - Sequential: container for stacking layers
//   - Classifier: the standard MLP image classifier
//
// Design inspired by PyTorch's nn.Module.
package nn

import (
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules compose into larger architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 10, backend),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32]) *tensor.Tensor[float32]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without parameters
	// (activations, dropout) return nil.
	Parameters() []*Parameter

	// StateDict returns a map of parameter names to raw tensors for
	// serialization.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies parameter values from a state dictionary.
	// Shapes and dtypes are validated before any data is copied.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// TrainingAware is implemented by modules whose forward pass differs
// between training and evaluation (Dropout). Containers propagate the
// mode to every child that implements it.
type TrainingAware interface {
	SetTraining(training bool)
}
