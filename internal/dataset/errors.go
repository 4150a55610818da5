package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDataset indicates a dataset with no usable records.
var ErrEmptyDataset = errors.New("dataset has no usable rows")

// LoadError indicates the dataset file is missing or not readable as a table.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "dataset load failed"
	}
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MissingColumnError indicates required columns were absent from the header.
type MissingColumnError struct {
	Missing   []string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column(s): %s.\nAvailable columns: %s",
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}
