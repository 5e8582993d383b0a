package serialization

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

const gradbookVersion = "0.3.1"

// Writer writes models and checkpoints in .grad format.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a .grad file at path, truncating any existing file.
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file")
	}
	return &Writer{file: file}, nil
}

// WriteStateDict writes a state dictionary with a plain weights header.
func (w *Writer) WriteStateDict(stateDict map[string]*tensor.RawTensor, modelType string, arch *ArchMeta) error {
	return w.WriteStateDictWithHeader(stateDict, Header{
		ModelType: modelType,
		Arch:      arch,
	})
}

// WriteStateDictWithHeader writes a state dictionary with a caller-built
// header, used for checkpoints that carry CheckpointMeta and metadata.
//
// Tensors are laid out in sorted name order so identical state dicts
// produce byte-identical files.
func (w *Writer) WriteStateDictWithHeader(stateDict map[string]*tensor.RawTensor, header Header) error {
	if w.closed {
		return ErrWriterClosed
	}

	header.FormatVersion = FormatVersion
	header.LibraryVersion = gradbookVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	var dataBuf []byte
	header.Tensors = make([]TensorMeta, 0, len(stateDict))
	var offset int64
	for _, name := range names {
		raw := stateDict[name]
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  []int(raw.Shape()),
			Offset: offset,
			Size:   size,
		})
		dataBuf = append(dataBuf, raw.Data()...)
		offset += size
	}

	header.DataSHA256 = ComputeChecksum(dataBuf)

	return writeSections(w.file, header, dataBuf)
}

// Close closes the writer and the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// writeSections writes the fixed prefix, JSON header, alignment padding
// and tensor data to out.
func writeSections(out io.Writer, header Header, data []byte) error {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "failed to marshal header")
	}

	if _, err := out.Write([]byte(MagicBytes)); err != nil {
		return errors.Wrap(err, "failed to write magic bytes")
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return errors.Wrap(err, "failed to write version")
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.CheckpointMeta != nil && header.CheckpointMeta.IsCheckpoint {
		flags |= FlagHasCheckpoint
	}
	if err := binary.Write(out, binary.LittleEndian, flags); err != nil {
		return errors.Wrap(err, "failed to write flags")
	}

	headerSize := uint64(len(headerJSON))
	if err := binary.Write(out, binary.LittleEndian, headerSize); err != nil {
		return errors.Wrap(err, "failed to write header size")
	}
	if _, err := out.Write(headerJSON); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	// Pad so the data section starts on a HeaderAlignment boundary.
	pos := int64(4+4+4+8) + int64(headerSize)
	if padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := out.Write(make([]byte, padding)); err != nil {
			return errors.Wrap(err, "failed to write padding")
		}
	}

	if _, err := out.Write(data); err != nil {
		return errors.Wrap(err, "failed to write tensor data")
	}

	return nil
}
