package tensor_test

import (
	"testing"

	"github.com/gradbook-ml/gradbook/internal/backend/cpu"
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape tensor.Shape
		want  int
	}{
		{tensor.Shape{}, 1},
		{tensor.Shape{5}, 5},
		{tensor.Shape{2, 3}, 6},
		{tensor.Shape{2, 3, 4}, 24},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("Shape%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (tensor.Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (tensor.Shape{2, 0}).Validate(); err == nil {
		t.Error("zero dimension should be rejected")
	}
	if err := (tensor.Shape{-1, 3}).Validate(); err == nil {
		t.Error("negative dimension should be rejected")
	}
}

func TestBroadcastShapes(t *testing.T) {
	shape, needed, err := tensor.BroadcastShapes(tensor.Shape{4, 3}, tensor.Shape{1, 3})
	if err != nil {
		t.Fatalf("BroadcastShapes failed: %v", err)
	}
	if !shape.Equal(tensor.Shape{4, 3}) {
		t.Errorf("broadcast shape = %v, want [4 3]", shape)
	}
	if !needed {
		t.Error("broadcasting should be reported as needed")
	}

	// Trailing-dimension alignment: [4, 3] with [3].
	shape, _, err = tensor.BroadcastShapes(tensor.Shape{4, 3}, tensor.Shape{3})
	if err != nil {
		t.Fatalf("BroadcastShapes failed: %v", err)
	}
	if !shape.Equal(tensor.Shape{4, 3}) {
		t.Errorf("broadcast shape = %v, want [4 3]", shape)
	}

	// Incompatible shapes.
	if _, _, err := tensor.BroadcastShapes(tensor.Shape{4, 3}, tensor.Shape{4, 2}); err == nil {
		t.Error("incompatible shapes should fail")
	}
}

func TestNewRaw(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements = %d, want 6", raw.NumElements())
	}
	if raw.ByteSize() != 24 {
		t.Errorf("ByteSize = %d, want 24", raw.ByteSize())
	}

	if _, err := tensor.NewRaw(tensor.Shape{2, -1}, tensor.Float32); err == nil {
		t.Error("invalid shape should be rejected")
	}
}

func TestRawClone(t *testing.T) {
	raw := tensor.MustNewRaw(tensor.Shape{3}, tensor.Float32)
	raw.AsFloat32()[0] = 1

	clone := raw.Clone()
	clone.AsFloat32()[0] = 2

	if raw.AsFloat32()[0] != 1 {
		t.Error("mutating a clone must not affect the original")
	}
}

func TestWithShapeSharesBuffer(t *testing.T) {
	raw := tensor.MustNewRaw(tensor.Shape{2, 3}, tensor.Float32)
	view, err := raw.WithShape(tensor.Shape{3, 2})
	if err != nil {
		t.Fatalf("WithShape failed: %v", err)
	}

	view.AsFloat32()[0] = 42
	if raw.AsFloat32()[0] != 42 {
		t.Error("reshaped view must share the underlying buffer")
	}

	if _, err := raw.WithShape(tensor.Shape{7}); err == nil {
		t.Error("element-count mismatch should be rejected")
	}
}

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if x.At(0, 0) != 1 || x.At(1, 2) != 6 {
		t.Errorf("At() = %v, %v; want 1, 6", x.At(0, 0), x.At(1, 2))
	}

	x.Set(9, 0, 1)
	if x.At(0, 1) != 9 {
		t.Errorf("Set did not stick: got %v", x.At(0, 1))
	}

	if _, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{3}, backend); err == nil {
		t.Error("length mismatch should be rejected")
	}
}

func TestItem(t *testing.T) {
	backend := cpu.New()

	s := tensor.MustFromSlice([]float32{3.5}, tensor.Shape{1}, backend)
	if s.Item() != 3.5 {
		t.Errorf("Item() = %v, want 3.5", s.Item())
	}

	defer func() {
		if recover() == nil {
			t.Error("Item() on a multi-element tensor should panic")
		}
	}()
	tensor.MustFromSlice([]float32{1, 2}, tensor.Shape{2}, backend).Item()
}

func TestCreation(t *testing.T) {
	backend := cpu.New()

	ones := tensor.Ones[float32](tensor.Shape{4}, backend)
	for i, v := range ones.Data() {
		if v != 1 {
			t.Fatalf("Ones[%d] = %v, want 1", i, v)
		}
	}

	full := tensor.Full[int32](tensor.Shape{3}, 7, backend)
	for i, v := range full.Data() {
		if v != 7 {
			t.Fatalf("Full[%d] = %v, want 7", i, v)
		}
	}

	ar := tensor.Arange(2, 6, backend)
	want := []int32{2, 3, 4, 5}
	for i, v := range ar.Data() {
		if v != want[i] {
			t.Fatalf("Arange[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestCloneIndependence(t *testing.T) {
	backend := cpu.New()

	x := tensor.MustFromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
	y := x.Clone()
	y.Data()[0] = 99

	if x.Data()[0] != 1 {
		t.Error("Clone must copy data")
	}
}
