// Copyright 2026 The Gradbook Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor operations in
// gradbook.
//
// The package defines the core types for type-safe tensor math:
//   - Tensor[T]: high-level generic tensor
//   - RawTensor: untyped tensor buffer for serialization and gradients
//   - Backend: interface for compute implementations
//   - Shape, DataType: core type definitions
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
package tensor

import (
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// DType is the constraint for tensor element types: float32, int32 or
// uint8.
type DType = tensor.DType

// DataType identifies the runtime element type of a RawTensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Int32   DataType = tensor.Int32
	Uint8   DataType = tensor.Uint8
)

// Shape represents the dimensions of a tensor, e.g. Shape{32, 784}.
type Shape = tensor.Shape

// Backend is the compute interface tensors delegate their operations
// to.
type Backend = tensor.Backend

// RawTensor is the untyped tensor buffer underlying every Tensor.
type RawTensor = tensor.RawTensor

// Tensor is a generic type-safe tensor bound to a backend.
type Tensor[T DType] = tensor.Tensor[T]

// Zeros creates a tensor filled with zeros.
func Zeros[T DType](shape Shape, b Backend) *Tensor[T] {
	return tensor.Zeros[T](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType](shape Shape, b Backend) *Tensor[T] {
	return tensor.Ones[T](shape, b)
}

// Full creates a tensor filled with the given value.
func Full[T DType](shape Shape, value T, b Backend) *Tensor[T] {
	return tensor.Full[T](shape, value, b)
}

// Randn creates a float32 tensor with values drawn from N(0, 1).
func Randn(shape Shape, b Backend) *Tensor[float32] {
	return tensor.Randn(shape, b)
}

// Rand creates a float32 tensor with values drawn uniformly from
// [0, 1).
func Rand(shape Shape, b Backend) *Tensor[float32] {
	return tensor.Rand(shape, b)
}

// Arange creates a 1-D int32 tensor with values [start, end).
func Arange(start, end int32, b Backend) *Tensor[int32] {
	return tensor.Arange(start, end, b)
}

// FromSlice creates a tensor by copying data into the given shape.
func FromSlice[T DType](data []T, shape Shape, b Backend) (*Tensor[T], error) {
	return tensor.FromSlice[T](data, shape, b)
}

// MustFromSlice is FromSlice that panics on error, for tests and
// examples.
func MustFromSlice[T DType](data []T, shape Shape, b Backend) *Tensor[T] {
	return tensor.MustFromSlice[T](data, shape, b)
}

// New wraps a raw tensor in a typed Tensor. Low-level; most callers
// should use the creation functions above.
func New[T DType](raw *RawTensor, b Backend) *Tensor[T] {
	return tensor.New[T](raw, b)
}

// NewRaw allocates an untyped tensor buffer.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// BroadcastShapes computes the broadcast result shape for two shapes
// following NumPy rules, reporting whether broadcasting is needed.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
