package dataset

import (
	"math/rand"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Loader serves a Dataset as mini-batches. With shuffling enabled the
// example order is re-drawn on every Reset, so each epoch sees a
// different permutation.
//
//	loader := dataset.NewLoader(ds, 64, dataset.WithShuffle(rng), backend)
//	for loader.Next() {
//	    images, labels := loader.Batch()
//	    ...
//	}
//	loader.Reset()
type Loader struct {
	dataset   *Dataset
	batchSize int
	rng       *rand.Rand
	backend   tensor.Backend

	indices  []int
	position int
	images   *tensor.Tensor[float32]
	labels   *tensor.Tensor[int32]
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithShuffle makes the loader visit examples in a random order drawn
// from rng, re-shuffled each epoch.
func WithShuffle(rng *rand.Rand) LoaderOption {
	return func(l *Loader) { l.rng = rng }
}

// NewLoader creates a Loader over the dataset. The final batch of an
// epoch is smaller when the dataset size is not a multiple of
// batchSize.
func NewLoader(ds *Dataset, batchSize int, backend tensor.Backend, opts ...LoaderOption) *Loader {
	if batchSize <= 0 {
		panic("Loader: batch size must be positive")
	}

	l := &Loader{
		dataset:   ds,
		batchSize: batchSize,
		backend:   backend,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.indices = make([]int, ds.Len())
	for i := range l.indices {
		l.indices[i] = i
	}
	l.Reset()
	return l
}

// Reset rewinds the loader to the start of the dataset and, when
// shuffling, draws a fresh permutation.
func (l *Loader) Reset() {
	l.position = 0
	if l.rng != nil {
		l.rng.Shuffle(len(l.indices), func(i, j int) {
			l.indices[i], l.indices[j] = l.indices[j], l.indices[i]
		})
	}
}

// Next advances to the next batch. It returns false at the end of the
// epoch; call Reset to start the next one.
func (l *Loader) Next() bool {
	if l.position >= len(l.indices) {
		return false
	}

	end := l.position + l.batchSize
	if end > len(l.indices) {
		end = len(l.indices)
	}
	batch := l.indices[l.position:end]
	l.position = end

	n := len(batch)
	features := l.dataset.Images.Shape()[1]
	images := tensor.Zeros[float32](tensor.Shape{n, features}, l.backend)
	labels := tensor.Zeros[int32](tensor.Shape{n}, l.backend)

	srcImages := l.dataset.Images.Data()
	srcLabels := l.dataset.Labels.Data()
	dstImages := images.Data()
	dstLabels := labels.Data()
	for row, idx := range batch {
		copy(dstImages[row*features:(row+1)*features], srcImages[idx*features:(idx+1)*features])
		dstLabels[row] = srcLabels[idx]
	}

	l.images = images
	l.labels = labels
	return true
}

// Batch returns the batch prepared by the last successful Next call.
func (l *Loader) Batch() (*tensor.Tensor[float32], *tensor.Tensor[int32]) {
	return l.images, l.labels
}

// BatchSize returns the configured batch size.
func (l *Loader) BatchSize() int {
	return l.batchSize
}

// NumBatches returns the number of batches per epoch.
func (l *Loader) NumBatches() int {
	return (l.dataset.Len() + l.batchSize - 1) / l.batchSize
}
