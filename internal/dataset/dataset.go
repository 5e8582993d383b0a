package dataset

import (
	"path"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Dataset holds an in-memory split of examples: images flattened and
// normalized to [0, 1] with shape [n, 784], labels as int32 class
// indices with shape [n].
type Dataset struct {
	Name   string
	Images *tensor.Tensor[float32]
	Labels *tensor.Tensor[int32]
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	return d.Images.Shape()[0]
}

// Load reads one split ("train" or "test") of a source from
// baseDir/<source-name>/, downloading any missing files first. Pixels
// are scaled from [0, 255] bytes to [0, 1] float32.
func Load(source Source, split, baseDir string, backend tensor.Backend) (*Dataset, error) {
	imagesFile, labelsFile, ok := source.files(split)
	if !ok {
		return nil, errors.Errorf("unknown split %q (want \"train\" or \"test\")", split)
	}

	if err := Download(source, baseDir); err != nil {
		return nil, err
	}

	dir := source.dir(baseDir)
	pixels, numImages, err := ReadImageFile(path.Join(dir, imagesFile))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s %s images", source.Name, split)
	}
	labelBytes, err := ReadLabelFile(path.Join(dir, labelsFile))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s %s labels", source.Name, split)
	}
	if len(labelBytes) != numImages {
		return nil, errors.Errorf("%s %s: %d images but %d labels", source.Name, split, numImages, len(labelBytes))
	}

	images := tensor.Zeros[float32](tensor.Shape{numImages, NumFeatures}, backend)
	imageData := images.Data()
	for i, p := range pixels {
		imageData[i] = float32(p) / 255.0
	}

	labels := tensor.Zeros[int32](tensor.Shape{numImages}, backend)
	labelData := labels.Data()
	for i, l := range labelBytes {
		if int(l) >= NumClasses {
			return nil, errors.Errorf("%s %s: label %d out of range at index %d", source.Name, split, l, i)
		}
		labelData[i] = int32(l)
	}

	klog.V(1).Infof("loaded %s %s: %d examples", source.Name, split, numImages)

	return &Dataset{
		Name:   source.Name + "/" + split,
		Images: images,
		Labels: labels,
	}, nil
}

// Split partitions the dataset into a leading part with fraction of the
// examples and a trailing part with the rest, preserving order. Used to
// carve a validation set out of the training split.
func (d *Dataset) Split(fraction float64, backend tensor.Backend) (*Dataset, *Dataset) {
	if fraction <= 0 || fraction >= 1 {
		panic(errors.Errorf("Split: fraction must be in (0, 1), got %v", fraction))
	}

	n := d.Len()
	cut := int(float64(n) * fraction)
	if cut == 0 {
		cut = 1
	}

	return d.slice(0, cut, "/a", backend), d.slice(cut, n, "/b", backend)
}

// slice copies examples [start, end) into a new Dataset.
func (d *Dataset) slice(start, end int, suffix string, backend tensor.Backend) *Dataset {
	n := end - start
	features := d.Images.Shape()[1]
	images := tensor.Zeros[float32](tensor.Shape{n, features}, backend)
	labels := tensor.Zeros[int32](tensor.Shape{n}, backend)

	copy(images.Data(), d.Images.Data()[start*features:end*features])
	copy(labels.Data(), d.Labels.Data()[start:end])

	return &Dataset{
		Name:   d.Name + suffix,
		Images: images,
		Labels: labels,
	}
}
