package nn

import (
	"fmt"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Dropout randomly zeroes elements of the input with probability p
// during training, scaling survivors by 1/(1-p) so activations keep
// their expected value (inverted dropout). In evaluation mode it is the
// identity, so no rescaling is needed at inference time.
type Dropout struct {
	p        float32
	training bool
}

// NewDropout creates a Dropout module with drop probability p in [0, 1).
// New modules start in training mode, matching freshly built models.
func NewDropout(p float32) *Dropout {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("Dropout: probability must be in [0, 1), got %v", p))
	}
	return &Dropout{p: p, training: true}
}

// Forward applies dropout in training mode and passes the input through
// unchanged in evaluation mode.
func (d *Dropout) Forward(input *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	out, _ := input.Backend().Dropout(input.Raw(), d.p, d.training)
	return tensor.New[float32](out, input.Backend())
}

// SetTraining switches between training and evaluation behavior.
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// Training reports whether the module is in training mode.
func (d *Dropout) Training() bool {
	return d.training
}

// P returns the drop probability.
func (d *Dropout) P() float32 {
	return d.p
}

// Parameters returns nil (dropout has no trainable parameters).
func (d *Dropout) Parameters() []*Parameter { return nil }

// StateDict returns an empty map.
func (d *Dropout) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (d *Dropout) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }
