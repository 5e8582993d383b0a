// Copyright 2026 The Gradbook Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradbook-ml/gradbook/autodiff"
	"github.com/gradbook-ml/gradbook/backend/cpu"
	"github.com/gradbook-ml/gradbook/nn"
	"github.com/gradbook-ml/gradbook/optim"
	"github.com/gradbook-ml/gradbook/tensor"
)

// TestPublicAPITrainingStep walks the whole public surface through one
// training step: build, forward, loss, backward, optimize, save, load.
func TestPublicAPITrainingStep(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	model := nn.NewClassifier(nn.Arch{
		InputSize:   4,
		HiddenSizes: []int{8},
		OutputSize:  3,
	}, backend)

	images := tensor.MustFromSlice([]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}, tensor.Shape{3, 4}, backend)
	labels := tensor.MustFromSlice([]int32{0, 1, 2}, tensor.Shape{3}, backend)

	criterion := nn.NewNLLLoss()
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})

	logProbs := model.Forward(images)
	require.Equal(t, tensor.Shape{3, 3}, logProbs.Shape())

	loss := criterion.Forward(logProbs, labels)
	before := loss.Item()

	grads := autodiff.Gradients(loss)
	optimizer.Step(grads)
	backend.Tape().Clear()

	logProbs = model.Forward(images)
	after := criterion.Forward(logProbs, labels).Item()
	assert.Less(t, after, before, "one SGD step should reduce the batch loss")

	// Round-trip through a .grad file.
	path := filepath.Join(t.TempDir(), "model.grad")
	require.NoError(t, nn.SaveModel(path, model))

	restored, err := nn.LoadClassifier(path, backend)
	require.NoError(t, err)
	assert.True(t, restored.Arch().Equal(model.Arch()))

	restored.Eval()
	model.Eval()
	assert.Equal(t, model.Forward(images).Data(), restored.Forward(images).Data())
}

func TestPublicAPISequential(t *testing.T) {
	backend := cpu.New()

	model := nn.NewSequential(
		nn.NewLinear(4, 8, backend),
		nn.NewReLU(),
		nn.NewDropout(0.2),
		nn.NewLinear(8, 2, backend),
		nn.NewLogSoftmax(),
	)
	model.SetTraining(false)

	input := tensor.Zeros[float32](tensor.Shape{5, 4}, backend)
	output := model.Forward(input)
	assert.Equal(t, tensor.Shape{5, 2}, output.Shape())
	assert.Len(t, model.Parameters(), 4)
}
