// Copyright 2026 The Gradbook Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset provides the public API for loading MNIST-family
// datasets and batching them for training.
//
// Example:
//
//	trainSet, err := dataset.Load(dataset.MNIST, "train", "~/.cache/gradbook", backend)
//	loader := dataset.NewLoader(trainSet, 64, backend, dataset.WithShuffle(rng))
package dataset

import (
	"math/rand"

	internal "github.com/gradbook-ml/gradbook/internal/dataset"
	"github.com/gradbook-ml/gradbook/tensor"
)

// Canonical image dimensions for the MNIST family.
const (
	ImageWidth  = internal.ImageWidth
	ImageHeight = internal.ImageHeight
	NumFeatures = internal.NumFeatures
	NumClasses  = internal.NumClasses
)

// Source describes a downloadable IDX dataset.
type Source = internal.Source

// Built-in sources.
var (
	MNIST        = internal.MNIST
	FashionMNIST = internal.FashionMNIST
)

// Dataset is an in-memory split of normalized examples.
type Dataset = internal.Dataset

// Loader serves a Dataset as mini-batches.
type Loader = internal.Loader

// LoaderOption configures a Loader.
type LoaderOption = internal.LoaderOption

// SourceByName returns the named source ("mnist" or "fashion-mnist").
func SourceByName(name string) (Source, bool) {
	return internal.SourceByName(name)
}

// Load reads one split of a source, downloading missing files first.
func Load(source Source, split, baseDir string, backend tensor.Backend) (*Dataset, error) {
	return internal.Load(source, split, baseDir, backend)
}

// Download fetches all IDX files of a source into baseDir.
func Download(source Source, baseDir string) error {
	return internal.Download(source, baseDir)
}

// NewLoader creates a mini-batch loader over a dataset.
func NewLoader(ds *Dataset, batchSize int, backend tensor.Backend, opts ...LoaderOption) *Loader {
	return internal.NewLoader(ds, batchSize, backend, opts...)
}

// WithShuffle makes a loader visit examples in random order, reshuffled
// each epoch.
func WithShuffle(rng *rand.Rand) LoaderOption {
	return internal.WithShuffle(rng)
}

// Synthetic builds a small in-memory classification dataset for tests
// and demos.
func Synthetic(numExamples, numFeatures, numClasses int, seed int64, backend tensor.Backend) *Dataset {
	return internal.Synthetic(numExamples, numFeatures, numClasses, seed, backend)
}
