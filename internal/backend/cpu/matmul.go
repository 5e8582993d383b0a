package cpu

import (
	"fmt"

	"github.com/gradbook-ml/gradbook/internal/parallel"
	"github.com/gradbook-ml/gradbook/internal/tensor"
)

// MatMul performs 2-D matrix multiplication: [M, K] @ [K, N] -> [M, N].
//
// Output rows are computed independently and distributed across worker
// goroutines. The inner loop is ordered i-k-j so the innermost access over
// both operands is sequential in memory.
func (b *Backend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("MatMul", x, y)

	xs, ys := x.Shape(), y.Shape()
	if len(xs) != 2 || len(ys) != 2 {
		panic(fmt.Sprintf("cpu.MatMul: requires 2D tensors, got %v @ %v", xs, ys))
	}
	if xs[1] != ys[0] {
		panic(fmt.Sprintf("cpu.MatMul: inner dimensions mismatch: %v @ %v", xs, ys))
	}

	m, k, n := xs[0], xs[1], ys[1]
	out := tensor.MustNewRaw(tensor.Shape{m, n}, tensor.Float32)

	xData, yData, outData := x.AsFloat32(), y.AsFloat32(), out.AsFloat32()

	cfg := b.parallelCfg
	cfg.MinChunkSize = 1 // rows are coarse-grained units of work
	parallel.For(m, func(i int) {
		outRow := outData[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			a := xData[i*k+p]
			if a == 0 {
				continue
			}
			yRow := yData[p*n : (p+1)*n]
			for j := range outRow {
				outRow[j] += a * yRow[j]
			}
		}
	}, cfg)

	return out
}
