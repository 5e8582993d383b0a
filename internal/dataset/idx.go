package dataset

import (
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// IDX magic numbers (big-endian).
const (
	imageMagic = 0x00000803 // unsigned byte, 3 dimensions
	labelMagic = 0x00000801 // unsigned byte, 1 dimension
)

type imageFileHeader struct {
	Magic     int32
	NumImages int32
	Height    int32
	Width     int32
}

type labelFileHeader struct {
	Magic     int32
	NumLabels int32
}

// ReadImageFile parses a gzipped IDX image file and returns the raw
// pixel bytes (row-major, one byte per pixel) together with the image
// count.
func ReadImageFile(filename string) (pixels []byte, numImages int, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to open image file")
	}
	defer f.Close()

	reader, err := gzip.NewReader(f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to open gzip stream")
	}
	defer reader.Close()

	var header imageFileHeader
	if err := binary.Read(reader, binary.BigEndian, &header); err != nil {
		return nil, 0, errors.Wrap(err, "failed to read image header")
	}
	if header.Magic != imageMagic {
		return nil, 0, errors.Errorf("invalid image file magic 0x%08x (want 0x%08x)", header.Magic, imageMagic)
	}
	if header.Width != ImageWidth || header.Height != ImageHeight {
		return nil, 0, errors.Errorf("unexpected image size %dx%d (want %dx%d)",
			header.Width, header.Height, ImageWidth, ImageHeight)
	}
	if header.NumImages < 0 {
		return nil, 0, errors.Errorf("negative image count %d", header.NumImages)
	}

	pixels = make([]byte, int(header.NumImages)*NumFeatures)
	if _, err := io.ReadFull(reader, pixels); err != nil {
		return nil, 0, errors.Wrap(err, "failed to read pixel data")
	}

	return pixels, int(header.NumImages), nil
}

// ReadLabelFile parses a gzipped IDX label file and returns one class
// byte per example.
func ReadLabelFile(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open label file")
	}
	defer f.Close()

	reader, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open gzip stream")
	}
	defer reader.Close()

	var header labelFileHeader
	if err := binary.Read(reader, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "failed to read label header")
	}
	if header.Magic != labelMagic {
		return nil, errors.Errorf("invalid label file magic 0x%08x (want 0x%08x)", header.Magic, labelMagic)
	}
	if header.NumLabels < 0 {
		return nil, errors.Errorf("negative label count %d", header.NumLabels)
	}

	labels := make([]byte, header.NumLabels)
	if _, err := io.ReadFull(reader, labels); err != nil {
		return nil, errors.Wrap(err, "failed to read label data")
	}

	return labels, nil
}
