package cluster

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Options controls a k-means fit.
type Options struct {
	// K is the number of clusters.
	K int
	// Seed drives centroid initialization; equal seeds give equal fits.
	Seed int64
	// MaxIter caps Lloyd iterations per run.
	MaxIter int
	// NInit is the number of seeded restarts; the lowest inertia wins.
	NInit int
	// Tolerance on total centroid movement, relative to the mean feature variance.
	Tolerance float64
}

// DefaultOptions returns the settings used by the analyzer.
func DefaultOptions() Options {
	return Options{
		K:         3,
		Seed:      42,
		MaxIter:   300,
		NInit:     10,
		Tolerance: 1e-4,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.K <= 0 {
		o.K = d.K
	}
	if o.MaxIter <= 0 {
		o.MaxIter = d.MaxIter
	}
	if o.NInit <= 0 {
		o.NInit = d.NInit
	}
	if o.Tolerance < 0 {
		o.Tolerance = d.Tolerance
	}
	return o
}

// Model is a fitted partition. Labels[i] is the cluster of the i-th input
// point and always equals the nearest centroid under squared Euclidean distance.
type Model struct {
	Centroids  [][]float64
	Labels     []int
	Inertia    float64
	Iterations int
	Seed       int64
	Distinct   int

	warning *DegenerateFitWarning
}

// Fit partitions points into opt.K clusters with k-means++ seeding and Lloyd
// refinement. Fewer distinct points than clusters is not an error; see Warning.
func Fit(points [][]float64, opt Options) (*Model, error) {
	opt = opt.withDefaults()
	dim, err := validate(points)
	if err != nil {
		return nil, err
	}
	tol := opt.Tolerance * meanVariance(points, dim)
	rng := rand.New(rand.NewSource(opt.Seed))

	var best *Model
	for run := 0; run < opt.NInit; run++ {
		centroids := seedCentroids(points, opt.K, rng)
		labels, iters := lloyd(points, centroids, opt.MaxIter, tol)
		inertia := totalInertia(points, centroids, labels)
		if best == nil || inertia < best.Inertia {
			best = &Model{Centroids: centroids, Labels: labels, Inertia: inertia, Iterations: iters}
		}
	}
	best.Seed = opt.Seed
	best.Distinct = countDistinct(points)
	if best.Distinct < opt.K {
		best.warning = &DegenerateFitWarning{Distinct: best.Distinct, K: opt.K}
	}
	return best, nil
}

// Predict returns the id of the centroid nearest to x.
func (m *Model) Predict(x []float64) (int, error) {
	if len(m.Centroids) == 0 {
		return 0, ErrNoPoints
	}
	if len(x) != len(m.Centroids[0]) {
		return 0, fmt.Errorf("predict: %w: got %d values, want %d", ErrDimension, len(x), len(m.Centroids[0]))
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("predict: %w", ErrNotFinite)
		}
	}
	id, _ := nearest(m.Centroids, x)
	return id, nil
}

// K is the number of clusters in the model.
func (m *Model) K() int { return len(m.Centroids) }

// Sizes counts the points assigned to each cluster.
func (m *Model) Sizes() []int {
	sizes := make([]int, len(m.Centroids))
	for _, l := range m.Labels {
		sizes[l]++
	}
	return sizes
}

// Degenerate reports whether the fit saw fewer distinct points than clusters.
func (m *Model) Degenerate() bool { return m.warning != nil }

// Warning returns the degenerate-fit warning, or nil.
func (m *Model) Warning() *DegenerateFitWarning { return m.warning }

func validate(points [][]float64) (int, error) {
	if len(points) == 0 {
		return 0, ErrNoPoints
	}
	dim := len(points[0])
	if dim == 0 {
		return 0, fmt.Errorf("fit: %w: empty feature vector", ErrDimension)
	}
	for i, p := range points {
		if len(p) != dim {
			return 0, fmt.Errorf("fit: %w: point %d has %d values, want %d", ErrDimension, i, len(p), dim)
		}
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("fit: %w at point %d", ErrNotFinite, i)
			}
		}
	}
	return dim, nil
}

// seedCentroids is k-means++: the first centroid is uniform, each next one is
// drawn with probability proportional to its squared distance from the
// closest centroid chosen so far.
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	centroids := make([][]float64, 0, k)
	first := rng.Intn(n)
	centroids = append(centroids, clone(points[first]))

	d2 := make([]float64, n)
	for i, p := range points {
		d2[i] = sqDist(p, centroids[0])
	}
	for len(centroids) < k {
		idx := pickWeighted(d2, rng)
		centroids = append(centroids, clone(points[idx]))
		for i, p := range points {
			if d := sqDist(p, points[idx]); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centroids
}

func pickWeighted(weights []float64, rng *rand.Rand) int {
	sum := floats.Sum(weights)
	if sum <= 0 {
		// every point already sits on a centroid
		return rng.Intn(len(weights))
	}
	target := rng.Float64() * sum
	cum := 0.0
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		cum += w
		if cum > target {
			return i
		}
	}
	return last
}

func lloyd(points [][]float64, centroids [][]float64, maxIter int, tol float64) ([]int, int) {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}
	iters := 0
	for iters < maxIter {
		iters++
		changed := assign(points, centroids, labels)
		if changed == 0 {
			break
		}
		next := recompute(points, centroids, labels)
		shift := 0.0
		for j := range centroids {
			shift += sqDist(centroids[j], next[j])
		}
		copy(centroids, next)
		if shift <= tol {
			break
		}
	}
	// labels must match the returned centroids exactly
	assign(points, centroids, labels)
	return labels, iters
}

func assign(points [][]float64, centroids [][]float64, labels []int) int {
	changed := 0
	for i, p := range points {
		id, _ := nearest(centroids, p)
		if labels[i] != id {
			labels[i] = id
			changed++
		}
	}
	return changed
}

func recompute(points [][]float64, centroids [][]float64, labels []int) [][]float64 {
	k := len(centroids)
	dim := len(centroids[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for j := range sums {
		sums[j] = make([]float64, dim)
	}
	for i, p := range points {
		floats.Add(sums[labels[i]], p)
		counts[labels[i]]++
	}
	used := map[int]bool{}
	for j := range sums {
		if counts[j] > 0 {
			floats.Scale(1/float64(counts[j]), sums[j])
			continue
		}
		// empty cluster: move it to the worst-served point, if any is off-centre
		far, farDist := -1, 0.0
		for i, p := range points {
			if used[i] {
				continue
			}
			if d := sqDist(p, centroids[labels[i]]); d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			copy(sums[j], centroids[j])
			continue
		}
		used[far] = true
		copy(sums[j], points[far])
	}
	return sums
}

func nearest(centroids [][]float64, p []float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for j, c := range centroids {
		if d := sqDist(p, c); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, bestDist
}

func totalInertia(points [][]float64, centroids [][]float64, labels []int) float64 {
	total := 0.0
	for i, p := range points {
		total += sqDist(p, centroids[labels[i]])
	}
	return total
}

func sqDist(a, b []float64) float64 {
	diff := make([]float64, len(a))
	floats.SubTo(diff, a, b)
	return floats.Dot(diff, diff)
}

func meanVariance(points [][]float64, dim int) float64 {
	if len(points) < 2 {
		return 0
	}
	col := make([]float64, len(points))
	total := 0.0
	for d := 0; d < dim; d++ {
		for i, p := range points {
			col[i] = p[d]
		}
		total += stat.Variance(col, nil)
	}
	return total / float64(dim)
}

func countDistinct(points [][]float64) int {
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		parts := make([]string, len(p))
		for i, v := range p {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		seen[strings.Join(parts, "|")] = struct{}{}
	}
	return len(seen)
}

func clone(p []float64) []float64 {
	out := make([]float64, len(p))
	copy(out, p)
	return out
}
