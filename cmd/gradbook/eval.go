package main

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/gradbook-ml/gradbook/backend/cpu"
	"github.com/gradbook-ml/gradbook/dataset"
	"github.com/gradbook-ml/gradbook/nn"
)

func runEval(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)

	modelPath := fs.String("model", "model.grad", "path to a saved .grad model")
	datasetName := fs.String("dataset", "mnist", "dataset to evaluate on: mnist or fashion-mnist")
	split := fs.String("split", "test", "dataset split: train or test")
	dataDir := fs.String("data-dir", "data", "directory for downloaded datasets")
	batchSize := fs.Int("batch-size", 256, "evaluation batch size")

	if err := fs.Parse(args); err != nil {
		return err
	}

	source, ok := dataset.SourceByName(*datasetName)
	if !ok {
		return errors.Errorf("unknown dataset %q", *datasetName)
	}

	backend := cpu.New()

	model, err := nn.LoadClassifier(*modelPath, backend)
	if err != nil {
		return err
	}
	model.Eval()

	ds, err := dataset.Load(source, *split, *dataDir, backend)
	if err != nil {
		return err
	}
	loader := dataset.NewLoader(ds, *batchSize, backend)

	criterion := nn.NewNLLLoss()
	var lossSum float64
	var correct, seen int
	for loader.Next() {
		images, labels := loader.Batch()
		batch := images.Shape()[0]

		logProbs := model.Forward(images)
		lossSum += float64(criterion.Forward(logProbs, labels).Item()) * float64(batch)

		preds := logProbs.ArgMax().Data()
		want := labels.Data()
		for i := range preds {
			if preds[i] == want[i] {
				correct++
			}
		}
		seen += batch
	}
	if seen == 0 {
		return errors.New("dataset is empty")
	}

	fmt.Printf("%s %s (%s): loss=%.4f accuracy=%.2f%% (%d/%d)\n",
		*datasetName, *split, model.Arch(), lossSum/float64(seen),
		100*float64(correct)/float64(seen), correct, seen)
	return nil
}
