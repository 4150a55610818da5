package cluster

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPoints is returned when Fit is called without any feature vectors.
	ErrNoPoints = errors.New("no points to cluster")
	// ErrDimension indicates vectors of different lengths were mixed.
	ErrDimension = errors.New("dimension mismatch")
	// ErrNotFinite indicates a NaN or infinite coordinate.
	ErrNotFinite = errors.New("non-finite coordinate")
)

// DegenerateFitWarning reports a fit over fewer distinct vectors than clusters.
// It is informational: the model is still usable and every label is valid.
type DegenerateFitWarning struct {
	Distinct int
	K        int
}

func (w *DegenerateFitWarning) Error() string {
	return fmt.Sprintf("degenerate fit: %d distinct feature vectors for %d clusters; some clusters share a centroid", w.Distinct, w.K)
}
