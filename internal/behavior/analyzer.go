package behavior

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/delaylens/internal/cluster"
	"github.com/KaramelBytes/delaylens/internal/dataset"
)

// delayDim is the position of delay in a feature vector (planned, actual, delay).
const delayDim = 2

// Result is the outcome of one classification.
type Result struct {
	Planned   float64  `json:"planned"`
	Actual    float64  `json:"actual"`
	Delay     float64  `json:"delay"`
	ClusterID int      `json:"cluster_id"`
	Category  Category `json:"category"`
}

// Assignment is one dataset record with its cluster.
type Assignment struct {
	Index       int
	Planned     float64
	Actual      float64
	Delay       float64
	Distraction string
	ClusterID   int
	Category    Category
}

// ClusterSummary describes one fitted cluster.
type ClusterSummary struct {
	ID        int
	Category  Category
	Size      int
	Centroid  []float64
	MeanDelay float64
}

// Analyzer holds one fitted session: the dataset, its model and the
// cluster-to-category mapping. It is immutable after construction.
type Analyzer struct {
	ds      *dataset.Dataset
	model   *cluster.Model
	mapping []int
}

// NewAnalyzer fits a three-cluster model over the dataset's
// (planned, actual, delay) vectors.
func NewAnalyzer(ds *dataset.Dataset, opts cluster.Options) (*Analyzer, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	opts.K = len(categories)
	m, err := cluster.Fit(ds.Features(), opts)
	if err != nil {
		return nil, fmt.Errorf("fit clusters: %w", err)
	}
	return &Analyzer{
		ds:      ds,
		model:   m,
		mapping: rankByDelay(m.Centroids, delayDim),
	}, nil
}

// Dataset returns the dataset the session was fitted on.
func (a *Analyzer) Dataset() *dataset.Dataset { return a.ds }

// Model returns the fitted model.
func (a *Analyzer) Model() *cluster.Model { return a.model }

// CategoryOf maps a cluster id to its category.
func (a *Analyzer) CategoryOf(clusterID int) Category {
	return categories[a.mapping[clusterID]]
}

// Predict classifies one (planned, actual) pair in minutes.
func (a *Analyzer) Predict(planned, actual float64) (Result, error) {
	if err := ValidateMinutes("planned time", planned); err != nil {
		return Result{}, err
	}
	if err := ValidateMinutes("actual time", actual); err != nil {
		return Result{}, err
	}
	delay := actual - planned
	id, err := a.model.Predict([]float64{planned, actual, delay})
	if err != nil {
		return Result{}, fmt.Errorf("predict: %w", err)
	}
	return Result{
		Planned:   planned,
		Actual:    actual,
		Delay:     delay,
		ClusterID: id,
		Category:  a.CategoryOf(id),
	}, nil
}

// Assignments lists every record with its fitted cluster.
func (a *Analyzer) Assignments() []Assignment {
	out := make([]Assignment, a.ds.Len())
	for i := range out {
		r := a.ds.Record(i)
		id := a.model.Labels[i]
		out[i] = Assignment{
			Index:       r.Row,
			Planned:     r.Planned,
			Actual:      r.Actual,
			Delay:       r.Delay,
			Distraction: r.Distraction,
			ClusterID:   id,
			Category:    a.CategoryOf(id),
		}
	}
	return out
}

// Clusters summarizes each cluster, ordered High to Low.
func (a *Analyzer) Clusters() []ClusterSummary {
	delays := a.ds.Delays()
	byCluster := make([][]float64, a.model.K())
	for i, l := range a.model.Labels {
		byCluster[l] = append(byCluster[l], delays[i])
	}
	out := make([]ClusterSummary, 0, a.model.K())
	for rank := range categories {
		for id, r := range a.mapping {
			if r != rank {
				continue
			}
			s := ClusterSummary{
				ID:       id,
				Category: categories[r],
				Size:     len(byCluster[id]),
				Centroid: append([]float64(nil), a.model.Centroids[id]...),
			}
			if s.Size > 0 {
				s.MeanDelay = stat.Mean(byCluster[id], nil)
			}
			out = append(out, s)
		}
	}
	return out
}

// Warnings collects dataset cleaning notes and fit warnings.
func (a *Analyzer) Warnings() []string {
	out := a.ds.Warnings()
	if w := a.model.Warning(); w != nil {
		out = append(out, w.Error())
	}
	return out
}
