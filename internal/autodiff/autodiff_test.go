package autodiff_test

import (
	"math"
	"testing"

	"github.com/gradbook-ml/gradbook/internal/autodiff"
	"github.com/gradbook-ml/gradbook/internal/backend/cpu"
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

const epsilon = 1e-4

func floatEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func newRecordingBackend() *autodiff.Backend {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	return backend
}

func TestAddGradients(t *testing.T) {
	backend := newRecordingBackend()

	x := tensor.MustFromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
	y := tensor.MustFromSlice([]float32{4, 5, 6}, tensor.Shape{3}, backend)

	loss := x.Add(y).Sum()
	grads := autodiff.Gradients(loss)

	// d(sum(x+y))/dx = d(sum(x+y))/dy = ones.
	for _, raw := range []*tensor.RawTensor{x.Raw(), y.Raw()} {
		grad, ok := grads[raw]
		if !ok {
			t.Fatal("missing gradient for an input")
		}
		for i, g := range grad.AsFloat32() {
			if !floatEqual(g, 1) {
				t.Errorf("grad[%d] = %v, want 1", i, g)
			}
		}
	}
}

func TestMulGradients(t *testing.T) {
	backend := newRecordingBackend()

	x := tensor.MustFromSlice([]float32{2, 3}, tensor.Shape{2}, backend)
	y := tensor.MustFromSlice([]float32{5, 7}, tensor.Shape{2}, backend)

	loss := x.Mul(y).Sum()
	grads := autodiff.Gradients(loss)

	// d(sum(x*y))/dx = y and vice versa.
	gx := grads[x.Raw()].AsFloat32()
	gy := grads[y.Raw()].AsFloat32()
	for i := range gx {
		if !floatEqual(gx[i], y.Data()[i]) {
			t.Errorf("dL/dx[%d] = %v, want %v", i, gx[i], y.Data()[i])
		}
		if !floatEqual(gy[i], x.Data()[i]) {
			t.Errorf("dL/dy[%d] = %v, want %v", i, gy[i], x.Data()[i])
		}
	}
}

func TestGradientAccumulationOnReuse(t *testing.T) {
	backend := newRecordingBackend()

	// loss = sum(x*y + x): x is used twice, so dL/dx = y + 1.
	x := tensor.MustFromSlice([]float32{2, 3}, tensor.Shape{2}, backend)
	y := tensor.MustFromSlice([]float32{5, 7}, tensor.Shape{2}, backend)

	loss := x.Mul(y).Add(x).Sum()
	grads := autodiff.Gradients(loss)

	gx := grads[x.Raw()].AsFloat32()
	want := []float32{6, 8}
	for i := range want {
		if !floatEqual(gx[i], want[i]) {
			t.Errorf("dL/dx[%d] = %v, want %v", i, gx[i], want[i])
		}
	}
}

// TestGradientsSeedAtRequestedOutput differentiates a loss that is not
// the last recorded operation. Work recorded after the loss (a metric,
// a second forward) must not leak into its gradients.
func TestGradientsSeedAtRequestedOutput(t *testing.T) {
	backend := newRecordingBackend()

	x := tensor.MustFromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	loss := x.Sum()

	// Recorded after the loss; dL/dx for this expression would be 2x.
	x.Mul(x).Sum()

	grads := autodiff.Gradients(loss)
	gx := grads[x.Raw()].AsFloat32()
	for i, g := range gx {
		if !floatEqual(g, 1) {
			t.Errorf("dL/dx[%d] = %v, want 1 (gradient of sum, not of later ops)", i, g)
		}
	}
}

func TestMatMulGradients(t *testing.T) {
	backend := newRecordingBackend()

	// loss = sum(x @ w): dL/dx = ones @ w^T, dL/dw = x^T @ ones.
	x := tensor.MustFromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	w := tensor.MustFromSlice([]float32{5, 6, 7, 8}, tensor.Shape{2, 2}, backend)

	loss := x.MatMul(w).Sum()
	grads := autodiff.Gradients(loss)

	gx := grads[x.Raw()].AsFloat32()
	wantX := []float32{11, 15, 11, 15}
	for i := range wantX {
		if !floatEqual(gx[i], wantX[i]) {
			t.Errorf("dL/dx[%d] = %v, want %v", i, gx[i], wantX[i])
		}
	}

	gw := grads[w.Raw()].AsFloat32()
	wantW := []float32{4, 4, 6, 6}
	for i := range wantW {
		if !floatEqual(gw[i], wantW[i]) {
			t.Errorf("dL/dw[%d] = %v, want %v", i, gw[i], wantW[i])
		}
	}
}

func TestReLUGradients(t *testing.T) {
	backend := newRecordingBackend()

	x := tensor.MustFromSlice([]float32{-1, 0, 2}, tensor.Shape{3}, backend)
	loss := x.ReLU().Sum()
	grads := autodiff.Gradients(loss)

	gx := grads[x.Raw()].AsFloat32()
	want := []float32{0, 0, 1}
	for i := range want {
		if !floatEqual(gx[i], want[i]) {
			t.Errorf("dL/dx[%d] = %v, want %v", i, gx[i], want[i])
		}
	}
}

func TestSigmoidGradients(t *testing.T) {
	backend := newRecordingBackend()

	x := tensor.MustFromSlice([]float32{0}, tensor.Shape{1}, backend)
	loss := x.Sigmoid().Sum()
	grads := autodiff.Gradients(loss)

	// sigmoid'(0) = 0.5 * 0.5 = 0.25.
	if g := grads[x.Raw()].AsFloat32()[0]; !floatEqual(g, 0.25) {
		t.Errorf("sigmoid grad at 0 = %v, want 0.25", g)
	}
}

func TestMeanGradients(t *testing.T) {
	backend := newRecordingBackend()

	x := tensor.MustFromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4}, backend)
	loss := x.Mean()
	grads := autodiff.Gradients(loss)

	for i, g := range grads[x.Raw()].AsFloat32() {
		if !floatEqual(g, 0.25) {
			t.Errorf("mean grad[%d] = %v, want 0.25", i, g)
		}
	}
}

func TestReshapeTransposeGradientsFlowThrough(t *testing.T) {
	backend := newRecordingBackend()

	x := tensor.MustFromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	loss := x.T().Reshape(6).Sum()
	grads := autodiff.Gradients(loss)

	grad, ok := grads[x.Raw()]
	if !ok {
		t.Fatal("gradient did not reach the original tensor through T and Reshape")
	}
	if !grad.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("grad shape = %v, want [2 3]", grad.Shape())
	}
	for i, g := range grad.AsFloat32() {
		if !floatEqual(g, 1) {
			t.Errorf("grad[%d] = %v, want 1", i, g)
		}
	}
}

// TestNLLGradientsAgainstSoftmax checks the classification gradient
// identity: for loss = NLL(LogSoftmax(logits), targets), dL/dlogits is
// (softmax - onehot) / batch.
func TestNLLGradientsAgainstSoftmax(t *testing.T) {
	backend := newRecordingBackend()

	logits := tensor.MustFromSlice([]float32{
		1.0, 2.0, 0.5,
		-0.5, 0.0, 1.5,
	}, tensor.Shape{2, 3}, backend)
	targets := tensor.MustFromSlice([]int32{1, 2}, tensor.Shape{2}, backend)

	loss := tensor.New[float32](backend.NLL(backend.LogSoftmax(logits.Raw()), targets.Raw()), backend)
	grads := autodiff.Gradients(loss)

	probs := cpu.New().Softmax(logits.Raw()).AsFloat32()
	got := grads[logits.Raw()].AsFloat32()
	targetData := targets.Data()
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			want := probs[r*3+c]
			if int32(c) == targetData[r] {
				want -= 1
			}
			want /= 2
			if !floatEqual(got[r*3+c], want) {
				t.Errorf("dL/dlogits[%d,%d] = %v, want %v", r, c, got[r*3+c], want)
			}
		}
	}
}

// TestCrossEntropyMatchesComposedGradients checks the fused kernel
// against NLL over LogSoftmax.
func TestCrossEntropyMatchesComposedGradients(t *testing.T) {
	logitData := []float32{0.3, -1.2, 2.0, 0.8, 0.1, -0.4}
	targetData := []int32{2, 0}

	fusedBackend := newRecordingBackend()
	logitsA := tensor.MustFromSlice(logitData, tensor.Shape{2, 3}, fusedBackend)
	targetsA := tensor.MustFromSlice(targetData, tensor.Shape{2}, fusedBackend)
	lossA := tensor.New[float32](fusedBackend.CrossEntropy(logitsA.Raw(), targetsA.Raw()), fusedBackend)
	gradsA := autodiff.Gradients(lossA)

	composedBackend := newRecordingBackend()
	logitsB := tensor.MustFromSlice(logitData, tensor.Shape{2, 3}, composedBackend)
	targetsB := tensor.MustFromSlice(targetData, tensor.Shape{2}, composedBackend)
	lossB := tensor.New[float32](composedBackend.NLL(composedBackend.LogSoftmax(logitsB.Raw()), targetsB.Raw()), composedBackend)
	gradsB := autodiff.Gradients(lossB)

	if !floatEqual(lossA.Item(), lossB.Item()) {
		t.Fatalf("fused loss %v != composed loss %v", lossA.Item(), lossB.Item())
	}

	ga := gradsA[logitsA.Raw()].AsFloat32()
	gb := gradsB[logitsB.Raw()].AsFloat32()
	for i := range ga {
		if !floatEqual(ga[i], gb[i]) {
			t.Errorf("grad[%d]: fused %v != composed %v", i, ga[i], gb[i])
		}
	}
}

// TestGradientCheck compares analytical gradients with central
// differences for a small composite expression.
func TestGradientCheck(t *testing.T) {
	xData := []float32{0.5, -1.0, 2.0, 0.3}
	wData := []float32{1.5, -0.5, 0.7, 1.1}

	// loss(x, w) = mean(sigmoid(x @ w)), computed without recording.
	eval := func(xv, wv []float32) float64 {
		backend := cpu.New()
		x := tensor.MustFromSlice(xv, tensor.Shape{2, 2}, backend)
		w := tensor.MustFromSlice(wv, tensor.Shape{2, 2}, backend)
		return float64(x.MatMul(w).Sigmoid().Mean().Item())
	}

	backend := newRecordingBackend()
	x := tensor.MustFromSlice(xData, tensor.Shape{2, 2}, backend)
	w := tensor.MustFromSlice(wData, tensor.Shape{2, 2}, backend)
	loss := x.MatMul(w).Sigmoid().Mean()
	grads := autodiff.Gradients(loss)

	const h = 1e-3
	check := func(name string, raw *tensor.RawTensor, base []float32, other []float32, evalAt func(a, b []float32) float64) {
		analytical := grads[raw].AsFloat32()
		for i := range base {
			plus := append([]float32(nil), base...)
			minus := append([]float32(nil), base...)
			plus[i] += h
			minus[i] -= h
			numerical := (evalAt(plus, other) - evalAt(minus, other)) / (2 * h)
			if math.Abs(float64(analytical[i])-numerical) > 1e-3 {
				t.Errorf("%s grad[%d] = %v, central difference = %v", name, i, analytical[i], numerical)
			}
		}
	}

	check("x", x.Raw(), xData, wData, func(a, b []float32) float64 { return eval(a, b) })
	check("w", w.Raw(), wData, xData, func(a, b []float32) float64 { return eval(b, a) })
}

func TestDropoutGradientsUseMask(t *testing.T) {
	backend := newRecordingBackend()

	x := tensor.MustFromSlice([]float32{1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{8}, backend)
	out, mask := backend.Dropout(x.Raw(), 0.5, true)

	loss := tensor.New[float32](out, backend).Sum()
	grads := autodiff.Gradients(loss)

	// Gradient must be exactly the mask: zero where dropped, scaled
	// where kept.
	gx := grads[x.Raw()].AsFloat32()
	maskData := mask.AsFloat32()
	for i := range gx {
		if !floatEqual(gx[i], maskData[i]) {
			t.Errorf("dropout grad[%d] = %v, want mask value %v", i, gx[i], maskData[i])
		}
	}
}

func TestTapeRecordingControl(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()

	x := tensor.MustFromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	y := tensor.MustFromSlice([]float32{3, 4}, tensor.Shape{2}, backend)

	// Not recording: nothing lands on the tape.
	x.Add(y)
	if tape.NumOps() != 0 {
		t.Fatalf("tape has %d ops before StartRecording, want 0", tape.NumOps())
	}

	tape.StartRecording()
	x.Add(y)
	if tape.NumOps() != 1 {
		t.Fatalf("tape has %d ops after one Add, want 1", tape.NumOps())
	}

	tape.StopRecording()
	x.Add(y)
	if tape.NumOps() != 1 {
		t.Fatalf("StopRecording did not stop recording: %d ops", tape.NumOps())
	}

	tape.StartRecording()
	tape.Clear()
	if tape.NumOps() != 0 {
		t.Fatal("Clear did not drop recorded ops")
	}
	if !tape.IsRecording() {
		t.Error("Clear must preserve the recording flag")
	}
}

func TestGradientsWithoutRecordingPanics(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := tensor.MustFromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	loss := x.Sum()

	defer func() {
		if recover() == nil {
			t.Error("Gradients with an empty tape should panic")
		}
	}()
	autodiff.Gradients(loss)
}

func TestGradientsOnPlainBackendPanics(t *testing.T) {
	backend := cpu.New()
	x := tensor.MustFromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	loss := x.Sum()

	defer func() {
		if recover() == nil {
			t.Error("Gradients on a non-autodiff backend should panic")
		}
	}()
	autodiff.Gradients(loss)
}
