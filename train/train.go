// Copyright 2026 The Gradbook Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the public API for gradbook's training loop.
//
// Example:
//
//	trainer := train.NewTrainer(model, optimizer, backend, train.Config{
//	    Epochs:        5,
//	    CheckpointDir: "checkpoints",
//	})
//	history, err := trainer.Fit(trainLoader, valLoader)
package train

import (
	internalautodiff "github.com/gradbook-ml/gradbook/internal/autodiff"
	"github.com/gradbook-ml/gradbook/internal/nn"
	"github.com/gradbook-ml/gradbook/internal/optim"
	internal "github.com/gradbook-ml/gradbook/internal/train"
)

// Config controls a training run.
type Config = internal.Config

// EpochStats records one epoch's outcome.
type EpochStats = internal.EpochStats

// History accumulates per-epoch statistics.
type History = internal.History

// Trainer runs the train/validate/checkpoint loop.
type Trainer = internal.Trainer

// NewTrainer creates a Trainer for a model built on an autodiff
// backend.
func NewTrainer(model *nn.Classifier, optimizer optim.Optimizer, backend *internalautodiff.Backend, config Config) *Trainer {
	return internal.NewTrainer(model, optimizer, backend, config)
}

// PlotLosses renders train/validation loss curves to a PNG file.
func PlotLosses(history *History, path string) error {
	return internal.PlotLosses(history, path)
}

// PlotAccuracy renders the validation accuracy curve to a PNG file.
func PlotAccuracy(history *History, path string) error {
	return internal.PlotAccuracy(history, path)
}
