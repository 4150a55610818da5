package cluster

import (
	"errors"
	"reflect"
	"testing"
)

func blobs() [][]float64 {
	return [][]float64{
		{30, 32, 2}, {25, 26, 1}, {40, 41, 1}, {35, 38, 3},
		{60, 90, 30}, {45, 80, 35}, {50, 85, 35}, {55, 88, 33},
		{20, 140, 120}, {30, 150, 120}, {25, 130, 105}, {15, 140, 125},
	}
}

func TestFitDeterministic(t *testing.T) {
	opt := DefaultOptions()
	a, err := Fit(blobs(), opt)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	b, err := Fit(blobs(), opt)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !reflect.DeepEqual(a.Centroids, b.Centroids) {
		t.Fatalf("centroids differ between runs:\n%v\n%v", a.Centroids, b.Centroids)
	}
	if !reflect.DeepEqual(a.Labels, b.Labels) {
		t.Fatalf("labels differ between runs:\n%v\n%v", a.Labels, b.Labels)
	}
	if a.Seed != opt.Seed {
		t.Fatalf("seed = %d, want %d", a.Seed, opt.Seed)
	}
}

func TestFitLabelsAreNearestCentroid(t *testing.T) {
	pts := blobs()
	m, err := Fit(pts, DefaultOptions())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if m.K() != 3 {
		t.Fatalf("K = %d, want 3", m.K())
	}
	for i, p := range pts {
		l := m.Labels[i]
		if l < 0 || l > 2 {
			t.Fatalf("label %d out of range for point %d", l, i)
		}
		want, _ := nearest(m.Centroids, p)
		if l != want {
			t.Fatalf("point %d label = %d, nearest centroid = %d", i, l, want)
		}
		got, err := m.Predict(p)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if got != l {
			t.Fatalf("Predict(point %d) = %d, fit label = %d", i, got, l)
		}
	}
}

func TestFitRecoversSeparatedGroups(t *testing.T) {
	m, err := Fit(blobs(), DefaultOptions())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	for g := 0; g < 3; g++ {
		base := m.Labels[g*4]
		for i := g*4 + 1; i < g*4+4; i++ {
			if m.Labels[i] != base {
				t.Fatalf("group %d split: labels %v", g, m.Labels)
			}
		}
	}
	if m.Labels[0] == m.Labels[4] || m.Labels[4] == m.Labels[8] || m.Labels[0] == m.Labels[8] {
		t.Fatalf("groups merged: labels %v", m.Labels)
	}
	sizes := m.Sizes()
	for j, s := range sizes {
		if s != 4 {
			t.Fatalf("cluster %d size = %d, want 4 (sizes %v)", j, s, sizes)
		}
	}
	if m.Degenerate() {
		t.Fatalf("unexpected degenerate flag")
	}
}

func TestFitThreeRecordScenario(t *testing.T) {
	pts := [][]float64{
		{60, 65, 5},
		{30, 90, 60},
		{45, 46, 1},
	}
	m, err := Fit(pts, DefaultOptions())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	seen := map[int]bool{}
	for i, l := range m.Labels {
		seen[l] = true
		if !reflect.DeepEqual(m.Centroids[l], pts[i]) {
			t.Fatalf("record %d centroid = %v, want its own vector %v", i, m.Centroids[l], pts[i])
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct cluster ids, got %v", m.Labels)
	}
	if m.Inertia != 0 {
		t.Fatalf("inertia = %v, want 0", m.Inertia)
	}

	got, err := m.Predict([]float64{45, 46, 1})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != m.Labels[2] {
		t.Fatalf("Predict(45,46,1) = %d, want %d", got, m.Labels[2])
	}
	// (60,61,1) is 32 away from (60,65,5) and 450 away from (45,46,1).
	got, err = m.Predict([]float64{60, 61, 1})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != m.Labels[0] {
		t.Fatalf("Predict(60,61,1) = %d, want nearest centroid %d", got, m.Labels[0])
	}
}

func TestFitDegenerateIdenticalPoints(t *testing.T) {
	pts := [][]float64{{10, 10, 0}, {10, 10, 0}, {10, 10, 0}, {10, 10, 0}}
	m, err := Fit(pts, DefaultOptions())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	for i, l := range m.Labels {
		if l < 0 || l > 2 {
			t.Fatalf("label %d out of range for point %d", l, i)
		}
	}
	if !m.Degenerate() {
		t.Fatalf("expected degenerate fit")
	}
	var w *DegenerateFitWarning
	if !errors.As(error(m.Warning()), &w) || w.Distinct != 1 || w.K != 3 {
		t.Fatalf("warning = %#v", m.Warning())
	}
	if m.K() != 3 {
		t.Fatalf("K = %d, want 3", m.K())
	}
}

func TestFitFewerPointsThanClusters(t *testing.T) {
	pts := [][]float64{{0, 0, 0}, {100, 100, 0}}
	m, err := Fit(pts, DefaultOptions())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if m.Labels[0] == m.Labels[1] {
		t.Fatalf("distinct points share a cluster: %v", m.Labels)
	}
	if !m.Degenerate() {
		t.Fatalf("expected degenerate fit for 2 points / 3 clusters")
	}
	if got, _ := m.Predict([]float64{0, 0, 0}); got != m.Labels[0] {
		t.Fatalf("Predict origin = %d, want %d", got, m.Labels[0])
	}
}

func TestFitErrors(t *testing.T) {
	cases := []struct {
		name   string
		points [][]float64
		want   error
	}{
		{"empty", nil, ErrNoPoints},
		{"ragged", [][]float64{{1, 2, 3}, {1, 2}}, ErrDimension},
		{"zero-dim", [][]float64{{}}, ErrDimension},
	}
	for _, c := range cases {
		if _, err := Fit(c.points, DefaultOptions()); !errors.Is(err, c.want) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

func TestPredictDimensionMismatch(t *testing.T) {
	m, err := Fit(blobs(), DefaultOptions())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if _, err := m.Predict([]float64{1, 2}); !errors.Is(err, ErrDimension) {
		t.Fatalf("err = %v, want ErrDimension", err)
	}
}

func TestSeedChangesAreStillValid(t *testing.T) {
	for _, seed := range []int64{0, 1, 7, 42, 1234} {
		opt := DefaultOptions()
		opt.Seed = seed
		opt.NInit = 1
		m, err := Fit(blobs(), opt)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for i, p := range blobs() {
			want, _ := nearest(m.Centroids, p)
			if m.Labels[i] != want {
				t.Fatalf("seed %d: point %d label %d, nearest %d", seed, i, m.Labels[i], want)
			}
		}
	}
}
