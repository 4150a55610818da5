package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/delaylens/internal/behavior"
	"github.com/KaramelBytes/delaylens/internal/dataset"
)

// Options controls report building.
type Options struct {
	PreviewRows     int // records in [HEAD AND SAMPLE ROWS]
	Bins            int // delay histogram buckets
	TopDistractions int
	AssignmentRows  int // rows in [CLUSTER ASSIGNMENTS]; <=0 means all
}

// DefaultOptions returns report defaults.
func DefaultOptions() Options {
	return Options{PreviewRows: 5, Bins: 6, TopDistractions: 5, AssignmentRows: 20}
}

// Bucket is one histogram bin over [Lo, Hi).
type Bucket struct {
	Lo, Hi float64
	Count  int
}

// DelayStats summarizes the Delay column.
type DelayStats struct {
	Min, Max, Mean, Std float64
	Late, OnTime, Early int
}

// Report is the rendered view of one analysis session.
type Report struct {
	RunID        string
	Generated    time.Time
	Name         string
	Rows         int
	Seed         int64
	Inertia      float64
	Preview      []dataset.Record
	AverageDelay float64
	DelayStats   DelayStats
	Histogram    []Bucket
	Distractions []dataset.CategoryCount
	Assignments  []behavior.Assignment
	Clusters     []behavior.ClusterSummary
	Warnings     []string
}

// Build collects everything the Markdown, chart and workbook outputs need.
func Build(a *behavior.Analyzer, opt Options) *Report {
	d := DefaultOptions()
	if opt.PreviewRows <= 0 {
		opt.PreviewRows = d.PreviewRows
	}
	if opt.Bins <= 0 {
		opt.Bins = d.Bins
	}
	if opt.TopDistractions <= 0 {
		opt.TopDistractions = d.TopDistractions
	}
	ds := a.Dataset()
	r := &Report{
		RunID:        uuid.NewString(),
		Generated:    time.Now(),
		Name:         ds.Name(),
		Rows:         ds.Len(),
		Seed:         a.Model().Seed,
		Inertia:      a.Model().Inertia,
		Preview:      ds.Head(opt.PreviewRows),
		AverageDelay: ds.AverageDelay(),
		Clusters:     a.Clusters(),
		Warnings:     a.Warnings(),
	}
	delays := ds.Delays()
	r.DelayStats = delayStats(delays)
	r.Histogram = histogram(delays, opt.Bins)

	counts := ds.DistractionCounts()
	if len(counts) > opt.TopDistractions {
		counts = counts[:opt.TopDistractions]
	}
	r.Distractions = counts

	r.Assignments = a.Assignments()
	if opt.AssignmentRows > 0 && len(r.Assignments) > opt.AssignmentRows {
		r.Assignments = r.Assignments[:opt.AssignmentRows]
	}
	return r
}

func delayStats(delays []float64) DelayStats {
	s := DelayStats{
		Min:  floats.Min(delays),
		Max:  floats.Max(delays),
		Mean: stat.Mean(delays, nil),
	}
	if len(delays) > 1 {
		s.Std = stat.StdDev(delays, nil)
	}
	for _, d := range delays {
		switch {
		case d > 0:
			s.Late++
		case d < 0:
			s.Early++
		default:
			s.OnTime++
		}
	}
	return s
}

func histogram(delays []float64, bins int) []Bucket {
	sorted := append([]float64(nil), delays...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		hi = lo + 1
	}
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram wants the maximum strictly below the last divider
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)
	out := make([]Bucket, bins)
	for i := range out {
		out[i] = Bucket{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	return out
}

// Markdown renders the report with bracketed section headers.
func (r *Report) Markdown() string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(p.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(p.Sprintf("Average delay: %.2f min\n", r.AverageDelay))
	b.WriteString(p.Sprintf("Delay: min %.2f, max %.2f, std %.2f\n", r.DelayStats.Min, r.DelayStats.Max, r.DelayStats.Std))
	b.WriteString(p.Sprintf("Late: %d, on time: %d, early: %d\n", r.DelayStats.Late, r.DelayStats.OnTime, r.DelayStats.Early))
	b.WriteString(fmt.Sprintf("Seed: %d\n", r.Seed))
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	}

	if len(r.Preview) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| Row | Planned_Time | Actual_Time | Distraction | Delay |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, rec := range r.Preview {
			b.WriteString(p.Sprintf("| %d | %v | %v | %s | %v |\n", rec.Row, rec.Planned, rec.Actual, safeVal(rec.Distraction), rec.Delay))
		}
	}

	if len(r.Histogram) > 0 {
		b.WriteString("\n[DELAY DISTRIBUTION]\n")
		for _, h := range r.Histogram {
			b.WriteString(p.Sprintf("- %.1f to %.1f: %d\n", h.Lo, h.Hi, h.Count))
		}
	}

	if len(r.Distractions) > 0 {
		b.WriteString("\n[TOP DISTRACTIONS]\n")
		for _, c := range r.Distractions {
			b.WriteString(p.Sprintf("- %s: %d\n", safeVal(c.Value), c.Count))
		}
	}

	if len(r.Clusters) > 0 {
		b.WriteString("\n[CLUSTERS]\n")
		for _, c := range r.Clusters {
			b.WriteString(p.Sprintf("- %s (cluster %d, n=%d): centroid planned %.1f, actual %.1f, delay %.1f; mean delay %.2f\n",
				c.Category.Label(), c.ID, c.Size, c.Centroid[0], c.Centroid[1], c.Centroid[2], c.MeanDelay))
		}
		b.WriteString(p.Sprintf("Inertia: %.2f\n", r.Inertia))
	}

	if len(r.Assignments) > 0 {
		b.WriteString("\n[CLUSTER ASSIGNMENTS]\n")
		b.WriteString("| Row | Planned_Time | Actual_Time | Delay | Cluster | Category |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		for _, as := range r.Assignments {
			b.WriteString(p.Sprintf("| %d | %v | %v | %v | %d | %s |\n", as.Index, as.Planned, as.Actual, as.Delay, as.ClusterID, as.Category.Name))
		}
		if r.Rows > len(r.Assignments) {
			b.WriteString(p.Sprintf("(%d of %d rows shown)\n", len(r.Assignments), r.Rows))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatResult renders one classification for the console.
func FormatResult(res behavior.Result) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	b.WriteString(res.Category.Label())
	b.WriteString("\n")
	b.WriteString(p.Sprintf("Planned %v min, actual %v min, delay %v min (cluster %d)\n", res.Planned, res.Actual, res.Delay, res.ClusterID))
	b.WriteString(res.Category.Explanation)
	b.WriteString("\n")
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
