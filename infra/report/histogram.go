package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/iveel36/spacetime-sim-2020/core/demand"
)

// Bins is the number of histogram buckets.
const Bins = 10

// DefaultHistogramDir returns the directory histograms are written to when
// none is configured.
func DefaultHistogramDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, "ray_results", "real_time_metrics", "hist"), nil
}

// Bucket is one histogram bar covering [Lo, Hi).
type Bucket struct {
	Lo, Hi float64
	Count  float64
}

// Histogram buckets x into Bins equal-width bins spanning its range.
func Histogram(x []float64) []Bucket {
	if len(x) == 0 {
		return nil
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		hi = lo + 1
	}
	dividers := floats.Span(make([]float64, Bins+1), lo, hi)
	dividers[Bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)
	out := make([]Bucket, Bins)
	for i := range out {
		out[i] = Bucket{Lo: dividers[i], Hi: dividers[i+1], Count: counts[i]}
	}
	return out
}

// Title returns the chart title and subtitle for a demand run.
func Title(req demand.Request) (string, string) {
	dist := "Random Distribution"
	if req.Mode == demand.ModePeak {
		dist = fmt.Sprintf("Peak Distribution: Mean = %g secs, Standard Dev =%g secs,",
			float64(req.Horizon)/2, req.StdDev)
	}
	return "Demand Data", fmt.Sprintf("%d vehicles\n%s", req.Count, dist)
}

// ScheduleHistogram buckets the depart time of every retained vehicle.
func ScheduleHistogram(sched *demand.Schedule) []Bucket {
	return Histogram(sched.DepartTimes())
}

// RenderHistogram renders a bar chart of the schedule's depart times as an
// HTML page.
func RenderHistogram(w io.Writer, sched *demand.Schedule, req demand.Request) error {
	buckets := ScheduleHistogram(sched)

	title, subtitle := Title(req)
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Depart time INTO the Network (secs)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frequency"}),
	)
	labels := make([]string, len(buckets))
	data := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		labels[i] = fmt.Sprintf("%.0f-%.0f", b.Lo, b.Hi)
		data[i] = opts.BarData{Value: b.Count}
	}
	bar.SetXAxis(labels).AddSeries("Frequency", data)
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render histogram: %w", err)
	}
	return nil
}

// WriteHistogram renders the histogram to <dir>/<network>.html and returns
// the path. An empty dir selects DefaultHistogramDir.
func WriteHistogram(dir, network string, sched *demand.Schedule, req demand.Request) (path string, err error) {
	if dir == "" {
		if dir, err = DefaultHistogramDir(); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path = filepath.Join(dir, network+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return path, RenderHistogram(f, sched, req)
}
