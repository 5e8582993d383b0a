package nn_test

import (
	"path/filepath"
	"testing"

	"github.com/gradbook-ml/gradbook/internal/backend/cpu"
	"github.com/gradbook-ml/gradbook/internal/nn"
	"github.com/gradbook-ml/gradbook/internal/optim"
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

var testArch = nn.Arch{
	InputSize:   6,
	HiddenSizes: []int{4},
	OutputSize:  3,
	Dropout:     0.1,
}

// onesGradients fakes a backward pass: every parameter gets a gradient
// of ones, enough to populate optimizer state.
func onesGradients(model *nn.Classifier) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	for _, param := range model.Parameters() {
		grad := tensor.MustNewRaw(param.Tensor().Shape(), tensor.Float32)
		data := grad.AsFloat32()
		for i := range data {
			data[i] = 1
		}
		grads[param.Raw()] = grad
	}
	return grads
}

func paramsEqual(t *testing.T, a, b *nn.Classifier) {
	t.Helper()
	pa, pb := a.Parameters(), b.Parameters()
	if len(pa) != len(pb) {
		t.Fatalf("parameter counts differ: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		da, db := pa[i].Data(), pb[i].Data()
		for j := range da {
			if da[j] != db[j] {
				t.Fatalf("parameter %d element %d: %v != %v", i, j, da[j], db[j])
			}
		}
	}
}

func TestSaveLoadModel(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "model.grad")

	src := nn.NewClassifier(testArch, backend)
	if err := nn.SaveModel(path, src); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	dst := nn.NewClassifier(testArch, backend)
	if err := nn.LoadModel(path, dst); err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	paramsEqual(t, src, dst)
}

func TestLoadModelArchMismatch(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "model.grad")

	src := nn.NewClassifier(testArch, backend)
	if err := nn.SaveModel(path, src); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	// A model with different hidden widths must reject the file and keep
	// its own weights.
	other := nn.NewClassifier(nn.Arch{
		InputSize:   6,
		HiddenSizes: []int{8},
		OutputSize:  3,
		Dropout:     0.1,
	}, backend)
	before := append([]float32(nil), other.Parameters()[0].Data()...)

	if err := nn.LoadModel(path, other); err == nil {
		t.Fatal("architecture mismatch must be rejected")
	}

	after := other.Parameters()[0].Data()
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("a rejected load must not modify any weights")
		}
	}
}

func TestLoadModelIgnoresDropoutDifference(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "model.grad")

	// Saved with dropout, loaded into a dropout-free model of the same
	// widths: the usual inference setup. Dropout owns no parameters, so
	// the load must succeed.
	src := nn.NewClassifier(testArch, backend)
	if err := nn.SaveModel(path, src); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	dst := nn.NewClassifier(nn.Arch{
		InputSize:   testArch.InputSize,
		HiddenSizes: testArch.HiddenSizes,
		OutputSize:  testArch.OutputSize,
	}, backend)
	if err := nn.LoadModel(path, dst); err != nil {
		t.Fatalf("LoadModel across dropout settings failed: %v", err)
	}
	paramsEqual(t, src, dst)
}

func TestLoadClassifierReconstructsArch(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "model.grad")

	src := nn.NewClassifier(testArch, backend)
	if err := nn.SaveModel(path, src); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	restored, err := nn.LoadClassifier(path, backend)
	if err != nil {
		t.Fatalf("LoadClassifier failed: %v", err)
	}
	if !restored.Arch().Equal(testArch) {
		t.Errorf("restored arch = %s, want %s", restored.Arch(), testArch)
	}
	paramsEqual(t, src, restored)

	// The restored model must produce identical predictions.
	src.Eval()
	restored.Eval()
	input := tensor.MustFromSlice([]float32{0.1, -0.2, 0.3, 0.4, -0.5, 0.6}, tensor.Shape{1, 6}, backend)
	wantOut := src.Forward(input).Data()
	gotOut := restored.Forward(input).Data()
	for i := range wantOut {
		if wantOut[i] != gotOut[i] {
			t.Fatalf("output[%d] = %v, want %v", i, gotOut[i], wantOut[i])
		}
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "checkpoint.grad")

	model := nn.NewClassifier(testArch, backend)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.05, Momentum: 0.9})
	optimizer.Step(onesGradients(model))

	ckpt := &nn.Checkpoint{
		Model:     model,
		Optimizer: optimizer,
		RunID:     "run-123",
		Epoch:     7,
		Step:      4200,
		Loss:      0.321,
		Metadata:  map[string]string{"dataset": "mnist"},
	}
	if err := ckpt.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	model2 := nn.NewClassifier(testArch, backend)
	optimizer2 := optim.NewSGD(model2.Parameters(), optim.SGDConfig{LR: 0.05, Momentum: 0.9})

	restored, err := nn.LoadCheckpoint(path, model2, optimizer2)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}

	if restored.RunID != "run-123" {
		t.Errorf("RunID = %q, want %q", restored.RunID, "run-123")
	}
	if restored.Epoch != 7 || restored.Step != 4200 {
		t.Errorf("Epoch/Step = %d/%d, want 7/4200", restored.Epoch, restored.Step)
	}
	if restored.Loss != 0.321 {
		t.Errorf("Loss = %v, want 0.321", restored.Loss)
	}
	if restored.Metadata["dataset"] != "mnist" {
		t.Errorf("Metadata = %v", restored.Metadata)
	}
	paramsEqual(t, model, model2)

	// Restored optimizers must continue identically: one more step on
	// both sides keeps the models in lockstep.
	optimizer.Step(onesGradients(model))
	optimizer2.Step(onesGradients(model2))
	paramsEqual(t, model, model2)
}

func TestCheckpointAdamTimestepSurvives(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "checkpoint.grad")

	model := nn.NewClassifier(testArch, backend)
	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.01})
	optimizer.Step(onesGradients(model))
	optimizer.Step(onesGradients(model))

	ckpt := &nn.Checkpoint{Model: model, Optimizer: optimizer, RunID: "run-a", Epoch: 1, Step: 2}
	if err := ckpt.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	model2 := nn.NewClassifier(testArch, backend)
	optimizer2 := optim.NewAdam(model2.Parameters(), optim.AdamConfig{LR: 0.01})
	if _, err := nn.LoadCheckpoint(path, model2, optimizer2); err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}

	if optimizer2.Timestep() != 2 {
		t.Errorf("restored timestep = %d, want 2", optimizer2.Timestep())
	}

	// Bias correction depends on the timestep, so the next updates only
	// match if it was restored.
	optimizer.Step(onesGradients(model))
	optimizer2.Step(onesGradients(model2))
	paramsEqual(t, model, model2)
}

func TestLoadCheckpointRejectsPlainModelFile(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "model.grad")

	model := nn.NewClassifier(testArch, backend)
	if err := nn.SaveModel(path, model); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{})
	if _, err := nn.LoadCheckpoint(path, model, optimizer); err == nil {
		t.Fatal("a plain model file must not load as a checkpoint")
	}
}

func TestLoadCheckpointArchMismatch(t *testing.T) {
	backend := cpu.New()
	path := filepath.Join(t.TempDir(), "checkpoint.grad")

	model := nn.NewClassifier(testArch, backend)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{Momentum: 0.9})
	ckpt := &nn.Checkpoint{Model: model, Optimizer: optimizer, RunID: "run-b"}
	if err := ckpt.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	wrong := nn.NewClassifier(nn.Arch{
		InputSize:   6,
		HiddenSizes: []int{4, 4},
		OutputSize:  3,
		Dropout:     0.1,
	}, backend)
	wrongOpt := optim.NewSGD(wrong.Parameters(), optim.SGDConfig{Momentum: 0.9})

	if _, err := nn.LoadCheckpoint(path, wrong, wrongOpt); err == nil {
		t.Fatal("checkpoint with a different architecture must be rejected")
	}
}
