// Package dataset downloads, parses and serves the MNIST family of
// image classification datasets in the IDX format.
//
// A Source describes where a dataset lives; Load fetches it (downloading
// missing files), normalizes pixels to [0, 1] and returns flat [n, 784]
// float32 images with int32 labels. Loader slices a Dataset into
// shuffled mini-batches for training.
package dataset

import "path"

// Canonical image dimensions for the MNIST family.
const (
	ImageWidth  = 28
	ImageHeight = 28
	NumFeatures = ImageWidth * ImageHeight
	NumClasses  = 10
)

// IDX file names shared by MNIST and Fashion-MNIST.
const (
	trainImagesFile = "train-images-idx3-ubyte.gz"
	trainLabelsFile = "train-labels-idx1-ubyte.gz"
	testImagesFile  = "t10k-images-idx3-ubyte.gz"
	testLabelsFile  = "t10k-labels-idx1-ubyte.gz"
)

// Source describes a downloadable IDX dataset.
type Source struct {
	Name       string
	BaseURL    string
	ClassNames []string
}

// MNIST is the classic handwritten digits dataset (60k train, 10k test).
var MNIST = Source{
	Name:    "mnist",
	BaseURL: "https://storage.googleapis.com/cvdf-datasets/mnist",
	ClassNames: []string{
		"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	},
}

// FashionMNIST is Zalando's drop-in MNIST replacement of clothing
// images, same shapes and file layout.
var FashionMNIST = Source{
	Name:    "fashion-mnist",
	BaseURL: "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com",
	ClassNames: []string{
		"T-shirt/top", "Trouser", "Pullover", "Dress", "Coat",
		"Sandal", "Shirt", "Sneaker", "Bag", "Ankle boot",
	},
}

// SourceByName returns the named source ("mnist" or "fashion-mnist").
func SourceByName(name string) (Source, bool) {
	switch name {
	case MNIST.Name:
		return MNIST, true
	case FashionMNIST.Name:
		return FashionMNIST, true
	default:
		return Source{}, false
	}
}

// files returns the image and label file names for a split ("train" or
// "test").
func (s Source) files(split string) (images, labels string, ok bool) {
	switch split {
	case "train":
		return trainImagesFile, trainLabelsFile, true
	case "test":
		return testImagesFile, testLabelsFile, true
	default:
		return "", "", false
	}
}

// dir returns the local directory for this source under baseDir.
func (s Source) dir(baseDir string) string {
	return path.Join(baseDir, s.Name)
}
