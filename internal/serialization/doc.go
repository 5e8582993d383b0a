// Package serialization implements the .grad binary format for model
// weights and training checkpoints.
//
// A .grad file has four sections:
//
//	[0:4]   magic bytes "GRAD"
//	[4:8]   format version (uint32, little-endian)
//	[8:12]  flags (uint32, little-endian)
//	[12:20] JSON header size (uint64, little-endian)
//	[20:..] JSON header
//	[..]    zero padding to a 64-byte boundary
//	[..]    tensor data section
//
// The JSON header describes every tensor (name, dtype, shape, offset,
// size), carries the model architecture and optional checkpoint state,
// and stores the SHA-256 of the tensor data section so corruption is
// detected on load.
package serialization
