package report

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/delaylens/internal/utils"
)

const (
	barWidth   = 40
	barSpacing = 24
)

func barStyle(col drawing.Color) chart.Style {
	return chart.Style{
		FillColor:   col,
		StrokeColor: col,
		StrokeWidth: 1,
	}
}

func renderBars(w io.Writer, title string, bars []chart.Value) error {
	if len(bars) == 0 {
		return fmt.Errorf("%s: no data to chart", title)
	}
	top := 0.0
	for _, b := range bars {
		if b.Value > top {
			top = b.Value
		}
	}
	bc := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      160 + len(bars)*(barWidth+barSpacing),
		Height:     420,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		// fixed range so all-zero data still renders
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: top + 1}},
		Bars:  bars,
	}
	if bc.Width < 480 {
		bc.Width = 480
	}
	return bc.Render(chart.PNG, w)
}

// RenderDelayChart draws the delay histogram as a PNG.
func RenderDelayChart(w io.Writer, r *Report) error {
	bars := make([]chart.Value, 0, len(r.Histogram))
	for _, h := range r.Histogram {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%.0f..%.0f", h.Lo, h.Hi),
			Value: float64(h.Count),
			Style: barStyle(chart.ColorBlue),
		})
	}
	return renderBars(w, "Delay distribution (min)", bars)
}

// RenderDistractionChart draws the top distraction counts as a PNG.
func RenderDistractionChart(w io.Writer, r *Report) error {
	bars := make([]chart.Value, 0, len(r.Distractions))
	for _, c := range r.Distractions {
		bars = append(bars, chart.Value{
			Label: c.Value,
			Value: float64(c.Count),
			Style: barStyle(chart.ColorOrange),
		})
	}
	return renderBars(w, "Top distractions", bars)
}

// WriteCharts renders both charts into dir and returns the written paths.
func WriteCharts(dir string, r *Report, force bool) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}
	jobs := []struct {
		name   string
		render func(io.Writer, *Report) error
	}{
		{"delay_distribution.png", RenderDelayChart},
		{"top_distractions.png", RenderDistractionChart},
	}
	var written []string
	for _, j := range jobs {
		var buf bytes.Buffer
		if err := j.render(&buf, r); err != nil {
			return written, fmt.Errorf("render %s: %w", j.name, err)
		}
		p := filepath.Join(dir, j.name)
		if err := utils.SafeWriteFile(p, buf.Bytes(), force); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}
