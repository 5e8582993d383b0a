package nn

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Sequential is a container module that chains modules together. Each
// module's output becomes the next module's input.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 10, backend),
//	)
type Sequential struct {
	modules []Module
}

// NewSequential creates a Sequential container from the given modules.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters collects the trainable parameters of all modules in order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index. Panics if the index is
// out of bounds.
func (s *Sequential) Module(index int) Module {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// SetTraining propagates the training mode to every child module that
// distinguishes training from evaluation.
func (s *Sequential) SetTraining(training bool) {
	for _, module := range s.modules {
		if ta, ok := module.(TrainingAware); ok {
			ta.SetTraining(training)
		}
	}
}

// StateDict returns all parameters, with names prefixed by module index
// ("0.weight", "0.bias", "2.weight", ...) to avoid collisions.
func (s *Sequential) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, module := range s.modules {
		for name, raw := range module.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}
	return stateDict
}

// LoadStateDict loads parameters from an index-prefixed state
// dictionary. Every module's entries are validated by that module, and
// validation of all modules happens before any copy, so a mismatch in
// any layer leaves the whole model untouched.
func (s *Sequential) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	perModule := make([]map[string]*tensor.RawTensor, len(s.modules))
	for i := range s.modules {
		perModule[i] = make(map[string]*tensor.RawTensor)
		prefix := fmt.Sprintf("%d.", i)
		for key, raw := range stateDict {
			if strings.HasPrefix(key, prefix) {
				perModule[i][strings.TrimPrefix(key, prefix)] = raw
			}
		}
	}

	// Check that every module's expected entries are present with the
	// right shapes before mutating anything.
	for i, module := range s.modules {
		for name, raw := range module.StateDict() {
			got, ok := perModule[i][name]
			if !ok {
				return errors.Errorf("module %d: missing %s in state dict", i, name)
			}
			if got.DType() != raw.DType() {
				return errors.Errorf("module %d: %s dtype mismatch: expected %v, got %v",
					i, name, raw.DType(), got.DType())
			}
			if !got.Shape().Equal(raw.Shape()) {
				return errors.Errorf("module %d: %s shape mismatch: expected %v, got %v",
					i, name, raw.Shape(), got.Shape())
			}
		}
	}

	for i, module := range s.modules {
		if len(perModule[i]) == 0 {
			continue
		}
		if err := module.LoadStateDict(perModule[i]); err != nil {
			return errors.Wrapf(err, "failed to load module %d", i)
		}
	}
	return nil
}
