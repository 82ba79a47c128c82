// Package plot renders the two summary charts from a timeline.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/crimson-sun/apptimeline/internal/engine/aggregate"
	"github.com/crimson-sun/apptimeline/internal/model"
	"github.com/crimson-sun/apptimeline/internal/output/file"
)

// ErrEmptyTimeline is returned when a chart needs at least one application.
var ErrEmptyTimeline = errors.New("timeline has no applications")

const (
	figureWidth  = 10 * vg.Inch
	figureHeight = 5 * vg.Inch
	kdePoints    = 200
)

// Files names the chart images.
type Files struct {
	BarChart    string
	DensityPlot string
}

// RenderFromCSV loads a timeline CSV and renders both charts.
func RenderFromCSV(timelineCSV string, files Files) error {
	rows, err := file.ReadTimeline(timelineCSV)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	return Render(rows, files)
}

// Render writes the bar chart, then the density plot.
func Render(rows []model.TimelineRow, files Files) error {
	if err := BarChart(rows, files.BarChart); err != nil {
		return err
	}
	if _, err := DensityPlot(rows, files.DensityPlot); err != nil {
		return err
	}
	return nil
}

// BarChart renders the number of applications per cluster, clusters in
// sorted order. An empty timeline still yields an (empty) chart.
func BarChart(rows []model.TimelineRow, path string) error {
	ids, counts := ApplicationsPerCluster(rows)

	p := plot.New()
	p.Title.Text = "Number of Applications Per Cluster"
	p.X.Label.Text = "cluster_id"
	p.Y.Label.Text = "count"
	p.Y.Min = 0

	for i, n := range counts {
		bars, err := plotter.NewBarChart(plotter.Values{float64(n)}, vg.Points(30))
		if err != nil {
			return fmt.Errorf("plot: bar chart: %w", err)
		}
		bars.XMin = float64(i)
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		p.Add(bars)
	}
	if len(ids) > 0 {
		p.NominalX(ids...)
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = text.XRight
		p.X.Tick.Label.YAlign = text.YCenter
	}

	return save(p, path)
}

// DensityPlot renders the duration distribution of the cluster with the
// most applications on a log-minute axis: a histogram with log-spaced bins
// and a Gaussian KDE overlay scaled to counts. It returns the cluster drawn.
func DensityPlot(rows []model.TimelineRow, path string) (string, error) {
	cluster, ok := LargestCluster(rows)
	if !ok {
		return "", fmt.Errorf("plot: density plot: %w", ErrEmptyTimeline)
	}

	durations := DurationsMinutes(rows, cluster)
	logs := make([]float64, 0, len(durations))
	for _, d := range durations {
		if d > 0 {
			logs = append(logs, math.Log10(d))
		}
	}
	if skipped := len(durations) - len(logs); skipped > 0 {
		slog.Warn("skipping non-positive durations on log axis", "cluster", cluster, "skipped", skipped)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Duration Distribution (minutes) - Cluster %s", cluster)
	p.X.Label.Text = "Duration (minutes, log scale)"
	p.Y.Label.Text = "Count"
	p.Y.Min = 0

	if len(logs) > 0 {
		bins, width := logBins(logs)
		hist := &plotter.Histogram{
			Bins:      bins,
			Width:     width,
			FillColor: color.RGBA{R: 66, G: 133, B: 180, A: 160},
			LineStyle: plotter.DefaultLineStyle,
		}
		p.Add(hist)

		if curve := kdeCurve(logs, bins, width); curve != nil {
			line, err := plotter.NewLine(curve)
			if err != nil {
				return cluster, fmt.Errorf("plot: density plot: %w", err)
			}
			line.Color = color.RGBA{R: 31, G: 78, B: 121, A: 255}
			line.Width = vg.Points(2)
			p.Add(line)
		}

		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{}
	}

	return cluster, save(p, path)
}

// ApplicationsPerCluster returns cluster ids in sorted order with their
// application counts.
func ApplicationsPerCluster(rows []model.TimelineRow) ([]string, []int) {
	byCluster := aggregate.CountByCluster(rows)
	ids := make([]string, 0, len(byCluster))
	for id := range byCluster {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	counts := make([]int, len(ids))
	for i, id := range ids {
		counts[i] = byCluster[id]
	}
	return ids, counts
}

// LargestCluster returns the cluster with the most applications. Ties go to
// the smallest cluster id.
func LargestCluster(rows []model.TimelineRow) (string, bool) {
	ids, counts := ApplicationsPerCluster(rows)
	if len(ids) == 0 {
		return "", false
	}
	best := 0
	for i := range ids {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return ids[best], true
}

// DurationsMinutes returns end - start in minutes for every application of cluster.
func DurationsMinutes(rows []model.TimelineRow, cluster string) []float64 {
	var out []float64
	for _, r := range rows {
		if r.ClusterID == cluster {
			out = append(out, r.Duration().Minutes())
		}
	}
	return out
}

// logBins splits log10 values into Sturges' number of equal-width bins and
// maps the edges back to minutes.
func logBins(logs []float64) ([]plotter.HistogramBin, float64) {
	lo, hi := floats.Min(logs), floats.Max(logs)
	if hi == lo {
		lo, hi = lo-0.5, hi+0.5
	}
	n := int(math.Ceil(math.Log2(float64(len(logs))))) + 1
	width := (hi - lo) / float64(n)

	bins := make([]plotter.HistogramBin, n)
	for i := range bins {
		bins[i].Min = math.Pow(10, lo+float64(i)*width)
		bins[i].Max = math.Pow(10, lo+float64(i+1)*width)
	}
	for _, v := range logs {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Weight++
	}
	return bins, width
}

// kdeCurve evaluates a Gaussian KDE with Scott's bandwidth in log space,
// scaled so its area matches the histogram's. Nil when the sample cannot
// support a bandwidth.
func kdeCurve(logs []float64, bins []plotter.HistogramBin, binWidth float64) plotter.XYs {
	if len(logs) < 2 {
		return nil
	}
	bw := stat.StdDev(logs, nil) * math.Pow(float64(len(logs)), -0.2)
	if bw == 0 || math.IsNaN(bw) {
		return nil
	}

	lo := math.Log10(bins[0].Min)
	hi := math.Log10(bins[len(bins)-1].Max)
	scale := float64(len(logs)) * binWidth
	norm := 1 / (float64(len(logs)) * bw * math.Sqrt(2*math.Pi))

	xys := make(plotter.XYs, kdePoints)
	for i := range xys {
		u := lo + (hi-lo)*float64(i)/float64(kdePoints-1)
		var sum float64
		for _, v := range logs {
			z := (u - v) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		xys[i].X = math.Pow(10, u)
		xys[i].Y = sum * norm * scale
	}
	return xys
}

func save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("plot: mkdir: %w", err)
	}
	if err := p.Save(figureWidth, figureHeight, path); err != nil {
		return fmt.Errorf("plot: save %s: %w", path, err)
	}
	slog.Info("wrote chart", "path", path)
	return nil
}
