package main

import (
	"flag"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/gradbook-ml/gradbook/internal/serialization"
)

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: gradbook inspect <file.grad>")
	}
	path := fs.Arg(0)

	reader, err := serialization.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	header := reader.Header()
	fmt.Printf("%s\n", path)
	fmt.Printf("  format version: %d (gradbook %s)\n", header.FormatVersion, header.LibraryVersion)
	fmt.Printf("  model type:     %s\n", header.ModelType)
	fmt.Printf("  created:        %s\n", header.CreatedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Printf("  checksum:       %s\n", header.DataSHA256)

	if arch := header.Arch; arch != nil {
		fmt.Printf("  architecture:   input=%d hidden=%v output=%d dropout=%g\n",
			arch.InputSize, arch.HiddenSizes, arch.OutputSize, arch.Dropout)
	}

	if meta := header.CheckpointMeta; meta != nil && meta.IsCheckpoint {
		fmt.Printf("  checkpoint:     run=%s epoch=%d step=%d loss=%.4f\n",
			meta.RunID, meta.Epoch, meta.Step, meta.Loss)
		fmt.Printf("  optimizer:      %s %v\n", meta.OptimizerType, meta.OptimizerConfig)
	}

	tensors := append([]serialization.TensorMeta(nil), header.Tensors...)
	sort.Slice(tensors, func(i, j int) bool { return tensors[i].Name < tensors[j].Name })

	var totalBytes int64
	fmt.Printf("  tensors (%d):\n", len(tensors))
	for _, t := range tensors {
		fmt.Printf("    %-32s %-8s %-14v %s\n", t.Name, t.DType, t.Shape, humanize.Bytes(uint64(t.Size)))
		totalBytes += t.Size
	}
	fmt.Printf("  total data:     %s\n", humanize.Bytes(uint64(totalBytes)))

	return nil
}
