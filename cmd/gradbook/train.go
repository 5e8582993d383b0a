package main

import (
	"flag"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/gradbook-ml/gradbook/autodiff"
	"github.com/gradbook-ml/gradbook/backend/cpu"
	"github.com/gradbook-ml/gradbook/dataset"
	"github.com/gradbook-ml/gradbook/nn"
	"github.com/gradbook-ml/gradbook/optim"
	"github.com/gradbook-ml/gradbook/train"
)

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)

	datasetName := fs.String("dataset", "mnist", "dataset to train on: mnist or fashion-mnist")
	dataDir := fs.String("data-dir", "data", "directory for downloaded datasets")
	epochs := fs.Int("epochs", 5, "number of training epochs")
	batchSize := fs.Int("batch-size", 64, "mini-batch size")
	hidden := fs.String("hidden", "128,64", "comma-separated hidden layer widths")
	dropout := fs.Float64("dropout", 0.0, "dropout probability after each hidden layer, 0 disables")
	optimizerName := fs.String("optimizer", "sgd", "optimizer: sgd or adam")
	lr := fs.Float64("lr", 0.01, "learning rate")
	momentum := fs.Float64("momentum", 0.9, "SGD momentum")
	valFraction := fs.Float64("val-fraction", 0.1, "fraction of the train split held out for validation")
	seed := fs.Int64("seed", 42, "random seed for batch shuffling")
	checkpointDir := fs.String("checkpoint-dir", "", "directory for training checkpoints, empty disables")
	checkpointEvery := fs.Int("checkpoint-every", 1, "save a checkpoint every N epochs")
	resume := fs.String("resume", "", "checkpoint file to resume from")
	out := fs.String("out", "model.grad", "path for the final model weights")
	plotPath := fs.String("plot", "", "write a loss curve PNG to this path, empty disables")

	if err := fs.Parse(args); err != nil {
		return err
	}

	source, ok := dataset.SourceByName(*datasetName)
	if !ok {
		return errors.Errorf("unknown dataset %q", *datasetName)
	}
	hiddenSizes, err := parseHidden(*hidden)
	if err != nil {
		return err
	}

	backend := autodiff.New(cpu.New())

	trainSet, err := dataset.Load(source, "train", *dataDir, backend)
	if err != nil {
		return err
	}
	trainPart, valPart := trainSet.Split(1-*valFraction, backend)

	rng := rand.New(rand.NewSource(*seed))
	trainLoader := dataset.NewLoader(trainPart, *batchSize, backend, dataset.WithShuffle(rng))
	valLoader := dataset.NewLoader(valPart, *batchSize, backend)

	model := nn.NewClassifier(nn.Arch{
		InputSize:   dataset.NumFeatures,
		HiddenSizes: hiddenSizes,
		OutputSize:  dataset.NumClasses,
		Dropout:     float32(*dropout),
	}, backend)

	var optimizer optim.Optimizer
	switch *optimizerName {
	case "sgd":
		optimizer = optim.NewSGD(model.Parameters(), optim.SGDConfig{
			LR:       float32(*lr),
			Momentum: float32(*momentum),
		})
	case "adam":
		optimizer = optim.NewAdam(model.Parameters(), optim.AdamConfig{
			LR: float32(*lr),
		})
	default:
		return errors.Errorf("unknown optimizer %q", *optimizerName)
	}

	trainer := train.NewTrainer(model, optimizer, backend, train.Config{
		Epochs:          *epochs,
		CheckpointDir:   *checkpointDir,
		CheckpointEvery: *checkpointEvery,
		ShowProgress:    true,
	})
	if *resume != "" {
		if err := trainer.Resume(*resume); err != nil {
			return err
		}
	}

	history, err := trainer.Fit(trainLoader, valLoader)
	if err != nil {
		return err
	}

	if *plotPath != "" {
		if err := train.PlotLosses(history, *plotPath); err != nil {
			return err
		}
	}

	if err := nn.SaveModel(*out, model); err != nil {
		return err
	}

	last := history.Last()
	fmt.Printf("run %s finished: val_loss=%.4f val_acc=%.2f%%, model saved to %s\n",
		history.RunID, last.ValLoss, 100*last.ValAccuracy, *out)
	return nil
}

// parseHidden parses "128,64" into []int{128, 64}. An empty string
// means no hidden layers.
func parseHidden(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return nil, errors.Errorf("invalid hidden layer width %q", p)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}
