package nn

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gradbook-ml/gradbook/internal/serialization"
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// OptimizerState is the slice of an optimizer that checkpoints need.
// Optimizers from the optim package implement it. Declaring the
// interface here avoids an import cycle between nn and optim.
type OptimizerState interface {
	// Name returns the optimizer type ("SGD", "Adam").
	Name() string

	// StateDict returns the optimizer state (momentum buffers, Adam
	// moments) for serialization.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict restores optimizer state from serialization.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error

	// GetLR returns the current learning rate.
	GetLR() float32
}

// optimizerPrefix namespaces optimizer tensors inside a checkpoint's
// state dictionary so they never collide with model parameters.
const optimizerPrefix = "optimizer."

// Checkpoint is a complete training state snapshot: model parameters,
// optimizer state and training progress. Checkpoints let interrupted
// training resume from the exact step where it stopped.
//
// Example:
//
//	ckpt := &nn.Checkpoint{
//	    Model:     model,
//	    Optimizer: optimizer,
//	    RunID:     runID,
//	    Epoch:     10,
//	    Step:      5000,
//	    Loss:      0.123,
//	}
//	err := ckpt.Save("checkpoint_epoch_10.grad")
type Checkpoint struct {
	Model     *Classifier
	Optimizer OptimizerState
	RunID     string // UUID of the training run
	Epoch     int
	Step      int64
	Loss      float64
	Metadata  map[string]string
	CreatedAt time.Time
}

// Save writes the checkpoint to a .grad file: model parameters,
// optimizer state (prefixed "optimizer.") and training metadata.
func (c *Checkpoint) Save(path string) error {
	combined := make(map[string]*tensor.RawTensor)
	for name, raw := range c.Model.StateDict() {
		combined[name] = raw
	}
	for name, raw := range c.Optimizer.StateDict() {
		combined[optimizerPrefix+name] = raw
	}

	arch := c.Model.Arch()
	header := serialization.Header{
		ModelType: "Classifier",
		Metadata:  c.Metadata,
		Arch:      archToMeta(arch),
		CheckpointMeta: &serialization.CheckpointMeta{
			IsCheckpoint:  true,
			RunID:         c.RunID,
			Epoch:         c.Epoch,
			Step:          c.Step,
			Loss:          c.Loss,
			OptimizerType: c.Optimizer.Name(),
			OptimizerConfig: map[string]float64{
				"lr": float64(c.Optimizer.GetLR()),
			},
		},
	}

	writer, err := serialization.NewWriter(path)
	if err != nil {
		return errors.Wrap(err, "failed to create checkpoint writer")
	}
	defer writer.Close()

	return writer.WriteStateDictWithHeader(combined, header)
}

// LoadCheckpoint restores a checkpoint into a pre-built model and
// optimizer.
//
// The file's architecture block is compared against the receiving model
// before any parameter is copied: a checkpoint trained with different
// layer widths is rejected with an error and the model is left
// untouched.
func LoadCheckpoint(path string, model *Classifier, optimizer OptimizerState) (*Checkpoint, error) {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open checkpoint")
	}
	defer reader.Close()

	if !reader.IsCheckpoint() {
		return nil, errors.Errorf("%s is not a checkpoint file", path)
	}

	if err := verifyArch(reader.Arch(), model.Arch()); err != nil {
		return nil, err
	}

	stateDict, err := reader.ReadStateDict()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read state dict")
	}

	modelState := make(map[string]*tensor.RawTensor)
	optimizerState := make(map[string]*tensor.RawTensor)
	for name, raw := range stateDict {
		if strings.HasPrefix(name, optimizerPrefix) {
			optimizerState[strings.TrimPrefix(name, optimizerPrefix)] = raw
		} else {
			modelState[name] = raw
		}
	}

	if err := model.LoadStateDict(modelState); err != nil {
		return nil, errors.Wrap(err, "failed to load model state")
	}
	if err := optimizer.LoadStateDict(optimizerState); err != nil {
		return nil, errors.Wrap(err, "failed to load optimizer state")
	}

	meta := reader.Header().CheckpointMeta
	return &Checkpoint{
		Model:     model,
		Optimizer: optimizer,
		RunID:     meta.RunID,
		Epoch:     meta.Epoch,
		Step:      meta.Step,
		Loss:      meta.Loss,
		Metadata:  reader.Header().Metadata,
		CreatedAt: reader.Header().CreatedAt,
	}, nil
}

// SaveModel writes only the model parameters (no optimizer state) to a
// .grad file, for deployment rather than resumption.
func SaveModel(path string, model *Classifier) error {
	writer, err := serialization.NewWriter(path)
	if err != nil {
		return errors.Wrap(err, "failed to create model writer")
	}
	defer writer.Close()

	arch := model.Arch()
	return writer.WriteStateDict(model.StateDict(), "Classifier", archToMeta(arch))
}

// LoadModel restores parameters from a .grad file into a pre-built
// model, verifying the architecture first.
func LoadModel(path string, model *Classifier) error {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return errors.Wrap(err, "failed to open model file")
	}
	defer reader.Close()

	if err := verifyArch(reader.Arch(), model.Arch()); err != nil {
		return err
	}

	stateDict, err := reader.ReadStateDict()
	if err != nil {
		return errors.Wrap(err, "failed to read state dict")
	}

	modelState := make(map[string]*tensor.RawTensor)
	for name, raw := range stateDict {
		if !strings.HasPrefix(name, optimizerPrefix) {
			modelState[name] = raw
		}
	}
	return model.LoadStateDict(modelState)
}

// LoadClassifier reconstructs a classifier from the architecture block
// of a .grad file and loads its weights, so callers need no prior
// knowledge of the saved model's shape.
func LoadClassifier(path string, backend tensor.Backend) (*Classifier, error) {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open model file")
	}
	defer reader.Close()

	meta := reader.Arch()
	if meta == nil {
		return nil, errors.Errorf("%s has no architecture block", path)
	}

	model := NewClassifier(metaToArch(meta), backend)

	stateDict, err := reader.ReadStateDict()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read state dict")
	}

	modelState := make(map[string]*tensor.RawTensor)
	for name, raw := range stateDict {
		if !strings.HasPrefix(name, optimizerPrefix) {
			modelState[name] = raw
		}
	}
	if err := model.LoadStateDict(modelState); err != nil {
		return nil, errors.Wrap(err, "failed to load model state")
	}

	return model, nil
}

// verifyArch rejects a file whose architecture differs from the
// receiving model's. Files without an architecture block are accepted;
// per-layer shape validation still protects the load.
func verifyArch(meta *serialization.ArchMeta, want Arch) error {
	if meta == nil {
		return nil
	}
	got := metaToArch(meta)
	if !got.Equal(want) {
		return errors.Errorf("architecture mismatch: file has %s, model has %s", got, want)
	}
	return nil
}

func archToMeta(a Arch) *serialization.ArchMeta {
	return &serialization.ArchMeta{
		InputSize:   a.InputSize,
		HiddenSizes: a.HiddenSizes,
		OutputSize:  a.OutputSize,
		Dropout:     a.Dropout,
	}
}

func metaToArch(m *serialization.ArchMeta) Arch {
	return Arch{
		InputSize:   m.InputSize,
		HiddenSizes: m.HiddenSizes,
		OutputSize:  m.OutputSize,
		Dropout:     m.Dropout,
	}
}
