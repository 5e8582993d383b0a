package train_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gradbook-ml/gradbook/internal/autodiff"
	"github.com/gradbook-ml/gradbook/internal/backend/cpu"
	"github.com/gradbook-ml/gradbook/internal/dataset"
	"github.com/gradbook-ml/gradbook/internal/nn"
	"github.com/gradbook-ml/gradbook/internal/optim"
	"github.com/gradbook-ml/gradbook/internal/train"
)

const (
	numFeatures = 8
	numClasses  = 3
)

func newFixture(backend *autodiff.Backend) (*nn.Classifier, *dataset.Loader, *dataset.Loader) {
	ds := dataset.Synthetic(120, numFeatures, numClasses, 11, backend)
	trainPart, valPart := ds.Split(0.8, backend)

	trainLoader := dataset.NewLoader(trainPart, 16, backend)
	valLoader := dataset.NewLoader(valPart, 16, backend)

	model := nn.NewClassifier(nn.Arch{
		InputSize:   numFeatures,
		HiddenSizes: []int{16},
		OutputSize:  numClasses,
	}, backend)
	return model, trainLoader, valLoader
}

func TestFitReducesLoss(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model, trainLoader, valLoader := newFixture(backend)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	trainer := train.NewTrainer(model, optimizer, backend, train.Config{Epochs: 10})
	history, err := trainer.Fit(trainLoader, valLoader)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if len(history.Epochs) != 10 {
		t.Fatalf("history has %d epochs, want 10", len(history.Epochs))
	}
	first, last := history.Epochs[0], history.Last()
	if last.TrainLoss >= first.TrainLoss {
		t.Errorf("training loss did not decrease: %v -> %v", first.TrainLoss, last.TrainLoss)
	}
	// Well-separated Gaussian blobs: a trained model should be nearly
	// perfect on held-out data.
	if last.ValAccuracy < 0.8 {
		t.Errorf("final validation accuracy = %v, want at least 0.8", last.ValAccuracy)
	}
}

func TestEvaluateUntrainedModel(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model, _, valLoader := newFixture(backend)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{})

	trainer := train.NewTrainer(model, optimizer, backend, train.Config{Epochs: 1})
	_, accuracy := trainer.Evaluate(valLoader)

	// Untrained Xavier weights are near chance on 3 classes.
	if accuracy > 0.8 {
		t.Errorf("untrained accuracy = %v, suspiciously high", accuracy)
	}
}

func TestEvaluateDoesNotRecord(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model, _, valLoader := newFixture(backend)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{})
	trainer := train.NewTrainer(model, optimizer, backend, train.Config{Epochs: 1})

	backend.Tape().StartRecording()
	backend.Tape().Clear()
	trainer.Evaluate(valLoader)

	if backend.Tape().NumOps() != 0 {
		t.Errorf("evaluation recorded %d ops on the tape, want 0", backend.Tape().NumOps())
	}
	if !backend.Tape().IsRecording() {
		t.Error("Evaluate must restore the recording state")
	}
}

func TestEvaluateRestoresTrainingMode(t *testing.T) {
	backend := autodiff.New(cpu.New())
	valSet := dataset.Synthetic(16, numFeatures, numClasses, 2, backend)
	valLoader := dataset.NewLoader(valSet, 16, backend)

	model := nn.NewClassifier(nn.Arch{
		InputSize:   numFeatures,
		HiddenSizes: []int{8},
		OutputSize:  numClasses,
		Dropout:     0.5,
	}, backend)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{})
	trainer := train.NewTrainer(model, optimizer, backend, train.Config{Epochs: 1})

	trainer.Evaluate(valLoader)

	// After evaluation the model must be back in training mode: dropout
	// active again. Find the dropout layer through the parameters'
	// behavior: run the same input twice and expect differing outputs.
	input := valSet.Images
	a := model.Forward(input).Data()
	b := model.Forward(input).Data()
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("dropout appears inactive after Evaluate, training mode was not restored")
	}
}

func TestFitCheckpointsAndResumes(t *testing.T) {
	dir := t.TempDir()

	backend := autodiff.New(cpu.New())
	model, trainLoader, valLoader := newFixture(backend)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	trainer := train.NewTrainer(model, optimizer, backend, train.Config{
		Epochs:          4,
		CheckpointDir:   dir,
		CheckpointEvery: 2,
	})
	if _, err := trainer.Fit(trainLoader, valLoader); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	// Epochs 1 and 3 hit the CheckpointEvery boundary.
	for _, name := range []string{"checkpoint_epoch_001.grad", "checkpoint_epoch_003.grad"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected checkpoint %s: %v", name, err)
		}
	}

	// Resume into a fresh trainer: it should pick up the run ID and
	// continue from epoch 4.
	backend2 := autodiff.New(cpu.New())
	model2, trainLoader2, valLoader2 := newFixture(backend2)
	optimizer2 := optim.NewSGD(model2.Parameters(), optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	trainer2 := train.NewTrainer(model2, optimizer2, backend2, train.Config{Epochs: 6})

	if err := trainer2.Resume(filepath.Join(dir, "checkpoint_epoch_003.grad")); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if trainer2.RunID() != trainer.RunID() {
		t.Errorf("resumed run ID = %s, want %s", trainer2.RunID(), trainer.RunID())
	}

	history, err := trainer2.Fit(trainLoader2, valLoader2)
	if err != nil {
		t.Fatalf("resumed Fit failed: %v", err)
	}
	if len(history.Epochs) != 2 {
		t.Fatalf("resumed run trained %d epochs, want 2 (epochs 4 and 5)", len(history.Epochs))
	}
	if history.Epochs[0].Epoch != 4 {
		t.Errorf("resumed run started at epoch %d, want 4", history.Epochs[0].Epoch)
	}
}

func TestResumeRejectsWrongArchitecture(t *testing.T) {
	dir := t.TempDir()

	backend := autodiff.New(cpu.New())
	model, trainLoader, _ := newFixture(backend)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{Momentum: 0.9})
	trainer := train.NewTrainer(model, optimizer, backend, train.Config{
		Epochs:        1,
		CheckpointDir: dir,
	})
	if _, err := trainer.Fit(trainLoader, nil); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	wrong := nn.NewClassifier(nn.Arch{
		InputSize:   numFeatures,
		HiddenSizes: []int{32},
		OutputSize:  numClasses,
	}, backend)
	wrongOpt := optim.NewSGD(wrong.Parameters(), optim.SGDConfig{Momentum: 0.9})
	trainer2 := train.NewTrainer(wrong, wrongOpt, backend, train.Config{Epochs: 2})

	err := trainer2.Resume(filepath.Join(dir, "checkpoint_epoch_000.grad"))
	if err == nil {
		t.Fatal("resuming with a different architecture must fail")
	}
}

func TestFitWithoutValidation(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model, trainLoader, _ := newFixture(backend)
	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.01})

	trainer := train.NewTrainer(model, optimizer, backend, train.Config{Epochs: 2})
	history, err := trainer.Fit(trainLoader, nil)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if len(history.Epochs) != 2 {
		t.Fatalf("history has %d epochs, want 2", len(history.Epochs))
	}
	for _, stats := range history.Epochs {
		if stats.ValAccuracy != 0 || stats.ValLoss != 0 {
			t.Error("validation stats must stay zero without a validation loader")
		}
	}
}

func TestHistoryLast(t *testing.T) {
	var empty train.History
	if got := empty.Last(); got.Epoch != 0 || got.TrainLoss != 0 {
		t.Errorf("empty history Last() = %+v, want zero value", got)
	}

	h := train.History{Epochs: []train.EpochStats{{Epoch: 0}, {Epoch: 1, TrainLoss: 0.5}}}
	if got := h.Last(); got.Epoch != 1 || got.TrainLoss != 0.5 {
		t.Errorf("Last() = %+v", got)
	}
}
