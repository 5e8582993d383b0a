package nn

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Arch describes the architecture of a fully connected classifier:
// the input width, the widths of the hidden layers, the number of
// output classes and the dropout probability applied after each hidden
// activation (0 disables dropout).
//
// Arch is persisted in saved model files, so a loader can verify that
// a file matches the receiving model before any weights are copied.
type Arch struct {
	InputSize   int
	HiddenSizes []int
	OutputSize  int
	Dropout     float32
}

// Equal reports whether two architectures have identical widths.
// Dropout does not participate: it owns no parameters, so a checkpoint
// trained with dropout loads fine into an identically-sized model built
// without it (the usual fine-tune or inference setup).
func (a Arch) Equal(other Arch) bool {
	if a.InputSize != other.InputSize || a.OutputSize != other.OutputSize {
		return false
	}
	if len(a.HiddenSizes) != len(other.HiddenSizes) {
		return false
	}
	for i, h := range a.HiddenSizes {
		if h != other.HiddenSizes[i] {
			return false
		}
	}
	return true
}

// String returns a compact description like "784-128-64-10 (dropout 0.2)".
func (a Arch) String() string {
	s := fmt.Sprintf("%d", a.InputSize)
	for _, h := range a.HiddenSizes {
		s += fmt.Sprintf("-%d", h)
	}
	s += fmt.Sprintf("-%d", a.OutputSize)
	if a.Dropout > 0 {
		s += fmt.Sprintf(" (dropout %g)", a.Dropout)
	}
	return s
}

// validate panics on a non-buildable architecture.
func (a Arch) validate() {
	if a.InputSize <= 0 {
		panic(fmt.Sprintf("Classifier: input size must be positive, got %d", a.InputSize))
	}
	if a.OutputSize <= 0 {
		panic(fmt.Sprintf("Classifier: output size must be positive, got %d", a.OutputSize))
	}
	for i, h := range a.HiddenSizes {
		if h <= 0 {
			panic(fmt.Sprintf("Classifier: hidden size %d must be positive, got %d", i, h))
		}
	}
	if a.Dropout < 0 || a.Dropout >= 1 {
		panic(fmt.Sprintf("Classifier: dropout must be in [0, 1), got %v", a.Dropout))
	}
}

// Classifier is a fully connected image classifier:
//
//	flatten -> [Linear -> ReLU -> Dropout?]* -> Linear -> LogSoftmax
//
// The LogSoftmax head means Forward returns log-probabilities, to be
// paired with NLLLoss during training. Predict takes the argmax row by
// row.
type Classifier struct {
	arch    Arch
	backend tensor.Backend
	stack   *Sequential
	linears []*Linear
}

// NewClassifier builds a classifier for the given architecture with
// freshly initialized weights. The model starts in training mode.
func NewClassifier(arch Arch, backend tensor.Backend) *Classifier {
	arch.validate()

	stack := NewSequential()
	var linears []*Linear
	addLinear := func(in, out int) {
		layer := NewLinear(in, out, backend)
		stack.Add(layer)
		linears = append(linears, layer)
	}

	in := arch.InputSize
	for _, h := range arch.HiddenSizes {
		addLinear(in, h)
		stack.Add(NewReLU())
		if arch.Dropout > 0 {
			stack.Add(NewDropout(arch.Dropout))
		}
		in = h
	}
	addLinear(in, arch.OutputSize)
	stack.Add(NewLogSoftmax())

	return &Classifier{
		arch:    arch,
		backend: backend,
		stack:   stack,
		linears: linears,
	}
}

// Forward returns log-probabilities with shape [batch, outputSize] for
// inputs of shape [batch, inputSize].
func (c *Classifier) Forward(input *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	return c.stack.Forward(input)
}

// Predict returns the most likely class index for each row of the
// input.
func (c *Classifier) Predict(input *tensor.Tensor[float32]) *tensor.Tensor[int32] {
	return c.Forward(input).ArgMax()
}

// Parameters returns all layer parameters in order.
func (c *Classifier) Parameters() []*Parameter {
	return c.stack.Parameters()
}

// Arch returns the classifier's architecture.
func (c *Classifier) Arch() Arch {
	return c.arch
}

// Backend returns the backend the classifier was built on.
func (c *Classifier) Backend() tensor.Backend {
	return c.backend
}

// SetTraining switches dropout layers between training and evaluation.
func (c *Classifier) SetTraining(training bool) {
	c.stack.SetTraining(training)
}

// Train puts the model in training mode (dropout active).
func (c *Classifier) Train() {
	c.SetTraining(true)
}

// Eval puts the model in evaluation mode (dropout disabled).
func (c *Classifier) Eval() {
	c.SetTraining(false)
}

// StateDict keys parameters by Linear layer ordinal ("layers.0.weight",
// "layers.0.bias", "layers.1.weight", ...). Only Linear layers count, so
// the keys do not depend on the dropout setting and a saved model loads
// into any model with the same widths.
func (c *Classifier) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, layer := range c.linears {
		for name, raw := range layer.StateDict() {
			stateDict[fmt.Sprintf("layers.%d.%s", i, name)] = raw
		}
	}
	return stateDict
}

// LoadStateDict loads parameters saved by StateDict. Shapes and dtypes
// are validated for every layer before any data is copied, so a mismatch
// in any layer leaves the whole model untouched.
func (c *Classifier) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	perLayer := make([]map[string]*tensor.RawTensor, len(c.linears))
	for i := range c.linears {
		perLayer[i] = make(map[string]*tensor.RawTensor)
		prefix := fmt.Sprintf("layers.%d.", i)
		for key, raw := range stateDict {
			if strings.HasPrefix(key, prefix) {
				perLayer[i][strings.TrimPrefix(key, prefix)] = raw
			}
		}
	}

	for i, layer := range c.linears {
		for name, raw := range layer.StateDict() {
			got, ok := perLayer[i][name]
			if !ok {
				return errors.Errorf("layer %d: missing %s in state dict", i, name)
			}
			if got.DType() != raw.DType() {
				return errors.Errorf("layer %d: %s dtype mismatch: expected %v, got %v",
					i, name, raw.DType(), got.DType())
			}
			if !got.Shape().Equal(raw.Shape()) {
				return errors.Errorf("layer %d: %s shape mismatch: expected %v, got %v",
					i, name, raw.Shape(), got.Shape())
			}
		}
	}

	for i, layer := range c.linears {
		if err := layer.LoadStateDict(perLayer[i]); err != nil {
			return errors.Wrapf(err, "failed to load layer %d", i)
		}
	}
	return nil
}
