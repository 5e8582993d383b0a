package serialization

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Reader reads models and checkpoints from .grad format.
//
// The header is parsed and validated on open: magic bytes, format
// version, tensor offsets and the data checksum are all checked before
// any tensor can be read.
type Reader struct {
	file       *os.File
	header     Header
	flags      uint32
	dataOffset int64
	dataSize   int64
	closed     bool
}

// NewReader opens a .grad file and validates its header and checksum.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}

	r := &Reader{file: file}
	if err := r.parseHeader(); err != nil {
		_ = file.Close()
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "failed to stat file")
	}
	r.dataSize = info.Size() - r.dataOffset

	if err := ValidateHeader(&r.header, r.dataSize); err != nil {
		_ = file.Close()
		return nil, err
	}
	if err := r.validateChecksum(); err != nil {
		_ = file.Close()
		return nil, err
	}

	return r, nil
}

func (r *Reader) parseHeader() error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.file, magic); err != nil {
		return errors.Wrap(err, "failed to read magic bytes")
	}
	if string(magic) != MagicBytes {
		return ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(r.file, binary.LittleEndian, &version); err != nil {
		return errors.Wrap(err, "failed to read version")
	}
	if version != FormatVersion {
		return errors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", version, FormatVersion)
	}

	if err := binary.Read(r.file, binary.LittleEndian, &r.flags); err != nil {
		return errors.Wrap(err, "failed to read flags")
	}

	var headerSize uint64
	if err := binary.Read(r.file, binary.LittleEndian, &headerSize); err != nil {
		return errors.Wrap(err, "failed to read header size")
	}
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerBytes); err != nil {
		return errors.Wrap(err, "failed to read header")
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return errors.Wrap(err, "failed to parse header JSON")
	}

	pos := int64(4+4+4+8) + int64(headerSize)
	padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment
	r.dataOffset = pos + padding

	return nil
}

func (r *Reader) validateChecksum() error {
	data := make([]byte, r.dataSize)
	if _, err := r.file.Seek(r.dataOffset, io.SeekStart); err != nil {
		return errors.Wrap(err, "failed to seek to data section")
	}
	if _, err := io.ReadFull(r.file, data); err != nil {
		return errors.Wrap(err, "failed to read data section")
	}
	return ValidateChecksum(ComputeChecksum(data), r.header.DataSHA256)
}

// Header returns the parsed file header.
func (r *Reader) Header() Header {
	return r.header
}

// Arch returns the architecture block, or nil if the file has none.
func (r *Reader) Arch() *ArchMeta {
	return r.header.Arch
}

// IsCheckpoint reports whether the file carries checkpoint state.
func (r *Reader) IsCheckpoint() bool {
	return r.header.CheckpointMeta != nil && r.header.CheckpointMeta.IsCheckpoint
}

// TensorNames returns the names of all tensors in the file.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns metadata for a named tensor.
func (r *Reader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			return &r.header.Tensors[i], nil
		}
	}
	return nil, errors.Wrapf(ErrTensorNotFound, "%q", name)
}

// LoadTensor reads a single named tensor.
func (r *Reader) LoadTensor(name string) (*tensor.RawTensor, error) {
	if r.closed {
		return nil, ErrReaderClosed
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	dtype, ok := stringToDtype(meta.DType)
	if !ok {
		return nil, errors.Errorf("unsupported dtype %q for tensor %q", meta.DType, name)
	}

	shape := tensor.Shape(meta.Shape)
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid shape for tensor %q", name)
	}

	raw, err := tensor.NewRaw(shape, dtype)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to allocate tensor %q", name)
	}
	if int64(raw.ByteSize()) != meta.Size {
		return nil, errors.Errorf("tensor %q: shape %v implies %d bytes, header says %d",
			name, meta.Shape, raw.ByteSize(), meta.Size)
	}

	if _, err := r.file.Seek(r.dataOffset+meta.Offset, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "failed to seek to tensor %q", name)
	}
	if _, err := io.ReadFull(r.file, raw.Data()); err != nil {
		return nil, errors.Wrapf(err, "failed to read tensor %q", name)
	}

	return raw, nil
}

// ReadStateDict reads all tensors into a state dictionary.
func (r *Reader) ReadStateDict() (map[string]*tensor.RawTensor, error) {
	if r.closed {
		return nil, ErrReaderClosed
	}

	stateDict := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		raw, err := r.LoadTensor(meta.Name)
		if err != nil {
			return nil, err
		}
		stateDict[meta.Name] = raw
	}
	return stateDict, nil
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}
