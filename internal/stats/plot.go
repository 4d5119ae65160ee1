package stats

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotScoreHistory renders the per-generation best scores as a line plot
// and saves it to outPath (the extension selects the image format).
func PlotScoreHistory(history []int64, title, outPath string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Best score"

	points := make(plotter.XYs, len(history))
	for i, score := range history {
		points[i].X = float64(i + 1)
		points[i].Y = float64(score)
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return err
	}
	p.Add(line)
	p.Legend.Add("best", line)
	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(6*vg.Inch, 4*vg.Inch, outPath)
}
