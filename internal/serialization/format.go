package serialization

import (
	"time"

	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "GRAD"
	FormatVersion   = 1
	HeaderAlignment = 64 // tensor data starts on a 64-byte boundary
	FileExtension   = ".grad"
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeInt32   = "int32"
	DTypeUint8   = "uint8"
)

// Flags for the .grad format.
const (
	FlagHasCheckpoint uint32 = 1 << 0 // bit 0: checkpoint state included
	FlagHasMetadata   uint32 = 1 << 1 // bit 1: custom metadata included
)

// Header is the JSON header of a .grad file.
type Header struct {
	FormatVersion   int               `json:"format_version"`
	LibraryVersion  string            `json:"gradbook_version"`
	ModelType       string            `json:"model_type"`
	CreatedAt       time.Time         `json:"created_at"`
	Tensors         []TensorMeta      `json:"tensors"`
	DataSHA256      string            `json:"data_sha256"` // hex SHA-256 of the tensor data section
	Metadata        map[string]string `json:"metadata"`
	Arch            *ArchMeta         `json:"arch,omitempty"`
	CheckpointMeta  *CheckpointMeta   `json:"checkpoint,omitempty"`
}

// ArchMeta records the network architecture so a loader can verify
// (or reconstruct) the model before copying any weights.
type ArchMeta struct {
	InputSize   int     `json:"input_size"`
	HiddenSizes []int   `json:"hidden_sizes"`
	OutputSize  int     `json:"output_size"`
	Dropout     float32 `json:"dropout,omitempty"`
}

// CheckpointMeta contains training state for checkpoint files.
type CheckpointMeta struct {
	IsCheckpoint    bool               `json:"is_checkpoint"`
	RunID           string             `json:"run_id"` // UUID of the training run
	Epoch           int                `json:"epoch"`
	Step            int64              `json:"step"`
	Loss            float64            `json:"loss"`
	OptimizerType   string             `json:"optimizer_type"`
	OptimizerConfig map[string]float64 `json:"optimizer_config"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // parameter name (e.g. "layers.0.weight")
	DType  string `json:"dtype"`  // data type (e.g. "float32")
	Shape  []int  `json:"shape"`  // tensor shape
	Offset int64  `json:"offset"` // byte offset from the start of the data section
	Size   int64  `json:"size"`   // size in bytes
}

// dtypeToString converts tensor.DataType to its string representation.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Int32:
		return DTypeInt32
	case tensor.Uint8:
		return DTypeUint8
	default:
		return "unknown"
	}
}

// stringToDtype converts a string representation back to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeInt32:
		return tensor.Int32, true
	case DTypeUint8:
		return tensor.Uint8, true
	default:
		return 0, false
	}
}
