package train

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotLosses renders the training and validation loss curves of a
// history to a PNG file.
func PlotLosses(history *History, path string) error {
	if len(history.Epochs) == 0 {
		return errors.New("history is empty, nothing to plot")
	}

	p := plot.New()
	p.Title.Text = "Loss per epoch"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "loss"

	trainPts := make(plotter.XYs, len(history.Epochs))
	valPts := make(plotter.XYs, 0, len(history.Epochs))
	for i, e := range history.Epochs {
		trainPts[i].X = float64(e.Epoch)
		trainPts[i].Y = e.TrainLoss
		if e.ValLoss > 0 {
			valPts = append(valPts, plotter.XY{X: float64(e.Epoch), Y: e.ValLoss})
		}
	}

	trainLine, err := plotter.NewLine(trainPts)
	if err != nil {
		return errors.Wrap(err, "failed to build train loss line")
	}
	p.Add(trainLine)
	p.Legend.Add("train", trainLine)

	if len(valPts) > 0 {
		valLine, err := plotter.NewLine(valPts)
		if err != nil {
			return errors.Wrap(err, "failed to build validation loss line")
		}
		valLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(valLine)
		p.Legend.Add("validation", valLine)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "failed to save loss plot")
	}
	return nil
}

// PlotAccuracy renders the validation accuracy curve of a history to a
// PNG file.
func PlotAccuracy(history *History, path string) error {
	if len(history.Epochs) == 0 {
		return errors.New("history is empty, nothing to plot")
	}

	p := plot.New()
	p.Title.Text = "Validation accuracy per epoch"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "accuracy"
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, len(history.Epochs))
	for i, e := range history.Epochs {
		pts[i].X = float64(e.Epoch)
		pts[i].Y = e.ValAccuracy
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "failed to build accuracy line")
	}
	p.Add(line)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "failed to save accuracy plot")
	}
	return nil
}
