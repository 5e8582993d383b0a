package dataset

import (
	"fmt"
	"math/rand"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Synthetic builds a small in-memory classification dataset of Gaussian
// blobs, one cluster per class, without touching the network or disk.
// Examples of class c are centered at a class-specific point, so even a
// small model separates them after a few epochs.
func Synthetic(numExamples, numFeatures, numClasses int, seed int64, backend tensor.Backend) *Dataset {
	rng := rand.New(rand.NewSource(seed))

	// One random unit-ish center per class.
	centers := make([][]float32, numClasses)
	for c := range centers {
		centers[c] = make([]float32, numFeatures)
		for j := range centers[c] {
			centers[c][j] = float32(rng.NormFloat64())
		}
	}

	images := tensor.Zeros[float32](tensor.Shape{numExamples, numFeatures}, backend)
	labels := tensor.Zeros[int32](tensor.Shape{numExamples}, backend)
	imageData := images.Data()
	labelData := labels.Data()

	for i := 0; i < numExamples; i++ {
		c := i % numClasses
		labelData[i] = int32(c)
		for j := 0; j < numFeatures; j++ {
			imageData[i*numFeatures+j] = centers[c][j] + 0.3*float32(rng.NormFloat64())
		}
	}

	return &Dataset{
		Name:   fmt.Sprintf("synthetic-%dx%d", numExamples, numFeatures),
		Images: images,
		Labels: labels,
	}
}
