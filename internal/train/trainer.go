// Package train drives the training loop: epochs over mini-batches,
// backpropagation and optimizer steps, validation with dropout
// disabled, and periodic checkpointing.
package train

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/gradbook-ml/gradbook/internal/autodiff"
	"github.com/gradbook-ml/gradbook/internal/dataset"
	"github.com/gradbook-ml/gradbook/internal/nn"
	"github.com/gradbook-ml/gradbook/internal/optim"
)

// Config controls a training run.
type Config struct {
	Epochs int

	// CheckpointDir, when non-empty, receives a checkpoint file every
	// CheckpointEvery epochs and at the end of the run.
	CheckpointDir   string
	CheckpointEvery int

	// ShowProgress renders a progress bar per epoch on stderr.
	ShowProgress bool
}

// EpochStats records the outcome of one epoch.
type EpochStats struct {
	Epoch       int
	TrainLoss   float64
	ValLoss     float64
	ValAccuracy float64
	Duration    time.Duration
}

// History accumulates per-epoch statistics over a run.
type History struct {
	RunID  string
	Epochs []EpochStats
}

// Last returns the most recent epoch's stats.
func (h *History) Last() EpochStats {
	if len(h.Epochs) == 0 {
		return EpochStats{}
	}
	return h.Epochs[len(h.Epochs)-1]
}

// Trainer runs the train/validate/checkpoint loop for a classifier.
//
// The model must be built on the trainer's autodiff backend, so the
// forward pass is recorded and Gradients can unwind it.
type Trainer struct {
	model     *nn.Classifier
	optimizer optim.Optimizer
	criterion *nn.NLLLoss
	backend   *autodiff.Backend
	config    Config

	runID      string
	step       int64
	startEpoch int
}

// NewTrainer creates a Trainer. A fresh UUID identifies the run in logs
// and checkpoint headers.
func NewTrainer(model *nn.Classifier, optimizer optim.Optimizer, backend *autodiff.Backend, config Config) *Trainer {
	if config.Epochs <= 0 {
		config.Epochs = 1
	}
	if config.CheckpointEvery <= 0 {
		config.CheckpointEvery = 1
	}

	return &Trainer{
		model:     model,
		optimizer: optimizer,
		criterion: nn.NewNLLLoss(),
		backend:   backend,
		config:    config,
		runID:     uuid.NewString(),
	}
}

// RunID returns the UUID of this training run.
func (t *Trainer) RunID() string {
	return t.runID
}

// Resume restores model and optimizer state from a checkpoint and
// continues the run from the epoch after the saved one. The checkpoint
// must match the model's architecture.
func (t *Trainer) Resume(path string) error {
	ckpt, err := nn.LoadCheckpoint(path, t.model, t.optimizer)
	if err != nil {
		return err
	}
	t.runID = ckpt.RunID
	t.step = ckpt.Step
	t.startEpoch = ckpt.Epoch + 1
	klog.Infof("resumed run %s from %s (epoch %d, step %d, loss %.4f)",
		t.runID, path, ckpt.Epoch, ckpt.Step, ckpt.Loss)
	return nil
}

// Fit trains for the configured number of epochs, validating after each
// one. valLoader may be nil to skip validation.
func (t *Trainer) Fit(trainLoader, valLoader *dataset.Loader) (*History, error) {
	history := &History{RunID: t.runID}

	t.backend.Tape().StartRecording()
	defer t.backend.Tape().StopRecording()

	for epoch := t.startEpoch; epoch < t.config.Epochs; epoch++ {
		start := time.Now()

		trainLoss, err := t.trainEpoch(epoch, trainLoader)
		if err != nil {
			return history, err
		}

		stats := EpochStats{
			Epoch:     epoch,
			TrainLoss: trainLoss,
			Duration:  time.Since(start),
		}

		if valLoader != nil {
			stats.ValLoss, stats.ValAccuracy = t.Evaluate(valLoader)
			klog.Infof("epoch %d: train_loss=%.4f val_loss=%.4f val_acc=%.2f%% (%s)",
				epoch, stats.TrainLoss, stats.ValLoss, 100*stats.ValAccuracy, stats.Duration.Round(time.Millisecond))
		} else {
			klog.Infof("epoch %d: train_loss=%.4f (%s)",
				epoch, stats.TrainLoss, stats.Duration.Round(time.Millisecond))
		}

		history.Epochs = append(history.Epochs, stats)

		if t.config.CheckpointDir != "" && (epoch+1)%t.config.CheckpointEvery == 0 {
			if err := t.saveCheckpoint(epoch, stats.TrainLoss); err != nil {
				return history, err
			}
		}
	}

	if t.config.CheckpointDir != "" && len(history.Epochs) > 0 && t.config.Epochs%t.config.CheckpointEvery != 0 {
		last := history.Last()
		if err := t.saveCheckpoint(last.Epoch, last.TrainLoss); err != nil {
			return history, err
		}
	}

	return history, nil
}

// trainEpoch runs one pass over the training loader and returns the
// mean loss per example.
func (t *Trainer) trainEpoch(epoch int, loader *dataset.Loader) (float64, error) {
	t.model.Train()
	loader.Reset()

	var bar *progressbar.ProgressBar
	if t.config.ShowProgress {
		bar = progressbar.Default(int64(loader.NumBatches()), fmt.Sprintf("epoch %d", epoch))
	}

	var lossSum float64
	var seen int
	for loader.Next() {
		images, labels := loader.Batch()
		batch := images.Shape()[0]

		// Each batch gets a fresh tape: only this forward pass is
		// unwound by Gradients.
		t.backend.Tape().Clear()

		logProbs := t.model.Forward(images)
		loss := t.criterion.Forward(logProbs, labels)

		grads := autodiff.Gradients(loss)
		t.optimizer.Step(grads)

		lossSum += float64(loss.Item()) * float64(batch)
		seen += batch
		t.step++

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	t.backend.Tape().Clear()

	if seen == 0 {
		return 0, errors.New("training loader yielded no batches")
	}
	return lossSum / float64(seen), nil
}

// Evaluate computes mean loss and accuracy over a loader with the model
// in evaluation mode (dropout disabled) and recording suspended, so
// validation never contaminates the gradient tape.
func (t *Trainer) Evaluate(loader *dataset.Loader) (loss, accuracy float64) {
	t.model.Eval()
	defer t.model.Train()

	wasRecording := t.backend.Tape().IsRecording()
	t.backend.Tape().StopRecording()
	defer func() {
		if wasRecording {
			t.backend.Tape().StartRecording()
		}
	}()

	loader.Reset()

	var lossSum float64
	var correct, seen int
	for loader.Next() {
		images, labels := loader.Batch()
		batch := images.Shape()[0]

		logProbs := t.model.Forward(images)
		batchLoss := t.criterion.Forward(logProbs, labels)
		lossSum += float64(batchLoss.Item()) * float64(batch)

		preds := logProbs.ArgMax().Data()
		want := labels.Data()
		for i := range preds {
			if preds[i] == want[i] {
				correct++
			}
		}
		seen += batch
	}

	if seen == 0 {
		return 0, 0
	}
	return lossSum / float64(seen), float64(correct) / float64(seen)
}

func (t *Trainer) saveCheckpoint(epoch int, loss float64) error {
	if err := os.MkdirAll(t.config.CheckpointDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create checkpoint directory")
	}

	path := filepath.Join(t.config.CheckpointDir, fmt.Sprintf("checkpoint_epoch_%03d.grad", epoch))
	ckpt := &nn.Checkpoint{
		Model:     t.model,
		Optimizer: t.optimizer,
		RunID:     t.runID,
		Epoch:     epoch,
		Step:      t.step,
		Loss:      loss,
	}
	if err := ckpt.Save(path); err != nil {
		return errors.Wrapf(err, "failed to save checkpoint at epoch %d", epoch)
	}
	klog.V(1).Infof("saved checkpoint %s", path)
	return nil
}
