package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// Canonical column names.
const (
	ColPlanned     = "Planned_Time"
	ColActual      = "Actual_Time"
	ColDistraction = "Distraction"
	ColDelay       = "Delay"
	ColCluster     = "Cluster"
	ColRow         = "Row"
)

// NumericPolicy decides what happens to a record whose planned or actual
// time is missing.
type NumericPolicy string

const (
	DropRow  NumericPolicy = "drop"
	FillZero NumericPolicy = "zero"
	FillMean NumericPolicy = "mean"
)

// ParseNumericPolicy validates a policy name.
func ParseNumericPolicy(s string) (NumericPolicy, error) {
	switch p := NumericPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DropRow, FillZero, FillMean:
		return p, nil
	case "":
		return DropRow, nil
	default:
		return "", fmt.Errorf("invalid missing-numeric policy %q (use drop, zero or mean)", s)
	}
}

// Options controls dataset loading.
type Options struct {
	// SheetName selects the XLSX sheet; empty means the first sheet.
	SheetName string
	// Delimiter for CSV. If 0, ',' (or '\t' for .tsv files).
	Delimiter rune
	// MissingCategory replaces a missing distraction label.
	MissingCategory string
	// MissingNumeric handles missing planned/actual times.
	MissingNumeric NumericPolicy
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{
		MissingCategory: "Stress",
		MissingNumeric:  DropRow,
	}
}

// Record is one typed row of the dataset.
type Record struct {
	// Row is the 1-based data row in the source file (header excluded).
	Row         int
	Planned     float64
	Actual      float64
	Delay       float64
	Distraction string
}

// CategoryCount is a distraction label and its frequency.
type CategoryCount struct {
	Value string
	Count int
}

// Dataset is the loaded table with its derived delay column.
type Dataset struct {
	name        string
	frame       dataframe.DataFrame
	planned     []float64
	actual      []float64
	delay       []float64
	distraction []string
	rows        []int
	warnings    []string
}

// Load reads a CSV, TSV or XLSX file.
func Load(path string, opt Options) (*Dataset, error) {
	var (
		records [][]string
		err     error
	)
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		records, err = readXLSX(path, opt.SheetName)
	} else {
		records, err = readCSV(path, opt.Delimiter)
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return FromRecords(filepath.Base(path), records, opt)
}

func readCSV(path string, delim rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if delim == 0 {
		delim = ','
		if strings.HasSuffix(strings.ToLower(path), ".tsv") {
			delim = '\t'
		}
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim
	var out [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// FromRecords builds a Dataset from raw rows, the first being the header.
func FromRecords(name string, records [][]string, opt Options) (*Dataset, error) {
	if opt.MissingCategory == "" {
		opt.MissingCategory = DefaultOptions().MissingCategory
	}
	if opt.MissingNumeric == "" {
		opt.MissingNumeric = DropRow
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, &LoadError{Path: name, Err: errors.New("no header row")}
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyDataset)
	}
	records, sourceRows := rectangular(records)

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return nil, &LoadError{Path: name, Err: df.Err}
	}

	cols, err := resolveColumns(df.Names())
	if err != nil {
		return nil, err
	}
	for canon, actual := range cols {
		if canon != actual {
			df = df.Rename(canon, actual)
		}
	}

	ds := &Dataset{name: name}
	plannedCol := df.Col(ColPlanned)
	actualCol := df.Col(ColActual)
	distrCol := df.Col(ColDistraction)

	n := df.Nrow()
	planned := make([]float64, n)
	actual := make([]float64, n)
	plannedOK := make([]bool, n)
	actualOK := make([]bool, n)
	for i := 0; i < n; i++ {
		if planned[i], plannedOK[i], err = numericCell(plannedCol.Elem(i), opt); err != nil {
			return nil, &LoadError{Path: name, Err: fmt.Errorf("row %d, column %s: %w", sourceRows[i], ColPlanned, err)}
		}
		if actual[i], actualOK[i], err = numericCell(actualCol.Elem(i), opt); err != nil {
			return nil, &LoadError{Path: name, Err: fmt.Errorf("row %d, column %s: %w", sourceRows[i], ColActual, err)}
		}
	}

	plannedFill, actualFill := 0.0, 0.0
	if opt.MissingNumeric == FillMean {
		plannedFill = presentMean(planned, plannedOK)
		actualFill = presentMean(actual, actualOK)
	}

	var kept []int
	filledDistraction, filledNumeric, dropped := 0, 0, 0
	for i := 0; i < n; i++ {
		if !plannedOK[i] || !actualOK[i] {
			if opt.MissingNumeric == DropRow {
				dropped++
				continue
			}
			if !plannedOK[i] {
				planned[i] = plannedFill
			}
			if !actualOK[i] {
				actual[i] = actualFill
			}
			filledNumeric++
		}
		label := strings.TrimSpace(distrCol.Elem(i).String())
		if distrCol.Elem(i).IsNA() || isMissingText(label) {
			label = opt.MissingCategory
			filledDistraction++
		}
		kept = append(kept, i)
		ds.rows = append(ds.rows, sourceRows[i])
		ds.planned = append(ds.planned, planned[i])
		ds.actual = append(ds.actual, actual[i])
		ds.delay = append(ds.delay, actual[i]-planned[i])
		ds.distraction = append(ds.distraction, label)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyDataset)
	}

	if dropped > 0 {
		ds.warnings = append(ds.warnings, fmt.Sprintf("dropped %d/%d rows with missing %s or %s", dropped, n, ColPlanned, ColActual))
	}
	if filledNumeric > 0 {
		ds.warnings = append(ds.warnings, fmt.Sprintf("filled missing times in %d rows using policy %q", filledNumeric, opt.MissingNumeric))
	}
	if filledDistraction > 0 {
		ds.warnings = append(ds.warnings, fmt.Sprintf("filled %d missing %s values with %q", filledDistraction, ColDistraction, opt.MissingCategory))
	}

	if len(kept) < n {
		df = df.Subset(kept)
	}
	df = df.Mutate(series.New(ds.rows, series.Int, ColRow)).
		Mutate(series.New(ds.planned, series.Float, ColPlanned)).
		Mutate(series.New(ds.actual, series.Float, ColActual)).
		Mutate(series.New(ds.distraction, series.String, ColDistraction)).
		Mutate(series.New(ds.delay, series.Float, ColDelay))
	if df.Err != nil {
		return nil, &LoadError{Path: name, Err: df.Err}
	}
	ds.frame = df
	return ds, nil
}

// rectangular pads short rows and trims long ones to the header width.
// Empty rows are skipped; rows holds the 1-based source data row of each
// remaining record.
func rectangular(records [][]string) (out [][]string, rows []int) {
	ncol := len(records[0])
	out = make([][]string, 0, len(records))
	for i, rec := range records {
		if i == 0 {
			hdr := make([]string, ncol)
			for j, h := range rec {
				hdr[j] = strings.TrimSpace(h)
			}
			out = append(out, hdr)
			continue
		}
		if len(rec) == 0 {
			continue
		}
		row := make([]string, ncol)
		copy(row, rec)
		out = append(out, row)
		rows = append(rows, i)
	}
	return out, rows
}

func resolveColumns(names []string) (map[string]string, error) {
	byKey := make(map[string]string, len(names))
	for _, n := range names {
		if _, dup := byKey[headerKey(n)]; !dup {
			byKey[headerKey(n)] = n
		}
	}
	out := map[string]string{}
	var missing []string
	for _, canon := range []string{ColPlanned, ColActual, ColDistraction} {
		actual, ok := byKey[headerKey(canon)]
		if !ok {
			missing = append(missing, canon)
			continue
		}
		out[canon] = actual
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Missing: missing, Available: names}
	}
	return out, nil
}

func numericCell(e series.Element, opt Options) (float64, bool, error) {
	if e.IsNA() || isMissingText(e.String()) {
		return 0, false, nil
	}
	v, ok := parseNumeric(e.String(), opt)
	if !ok {
		return 0, false, fmt.Errorf("%q is not a number", e.String())
	}
	return v, true, nil
}

func presentMean(vals []float64, ok []bool) float64 {
	var present []float64
	for i, v := range vals {
		if ok[i] {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return 0
	}
	return stat.Mean(present, nil)
}

// Name is the base name of the source file.
func (d *Dataset) Name() string { return d.name }

// Len is the number of usable records.
func (d *Dataset) Len() int { return len(d.delay) }

// Warnings lists non-fatal cleaning notes.
func (d *Dataset) Warnings() []string { return append([]string(nil), d.warnings...) }

// Planned returns a copy of the planned times.
func (d *Dataset) Planned() []float64 { return append([]float64(nil), d.planned...) }

// Actual returns a copy of the actual times.
func (d *Dataset) Actual() []float64 { return append([]float64(nil), d.actual...) }

// Delays returns a copy of the derived Actual - Planned column.
func (d *Dataset) Delays() []float64 { return append([]float64(nil), d.delay...) }

// Distractions returns a copy of the distraction labels.
func (d *Dataset) Distractions() []string { return append([]string(nil), d.distraction...) }

// Features returns one (planned, actual, delay) vector per record.
func (d *Dataset) Features() [][]float64 {
	out := make([][]float64, len(d.delay))
	for i := range d.delay {
		out[i] = []float64{d.planned[i], d.actual[i], d.delay[i]}
	}
	return out
}

// Record returns the i-th record.
func (d *Dataset) Record(i int) Record {
	return Record{
		Row:         d.rows[i],
		Planned:     d.planned[i],
		Actual:      d.actual[i],
		Delay:       d.delay[i],
		Distraction: d.distraction[i],
	}
}

// Head returns up to n leading records.
func (d *Dataset) Head(n int) []Record {
	if n > d.Len() || n < 0 {
		n = d.Len()
	}
	out := make([]Record, n)
	for i := range out {
		out[i] = d.Record(i)
	}
	return out
}

// AverageDelay is the mean of the Delay column.
func (d *Dataset) AverageDelay() float64 { return stat.Mean(d.delay, nil) }

// DistractionCounts tallies distraction labels, most frequent first.
func (d *Dataset) DistractionCounts() []CategoryCount {
	counts := map[string]int{}
	for _, v := range d.distraction {
		counts[v]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// WithClusters returns the cleaned table (Row, the source columns and
// Delay) with a Cluster column appended.
func (d *Dataset) WithClusters(labels []int) (dataframe.DataFrame, error) {
	if len(labels) != d.Len() {
		return dataframe.DataFrame{}, fmt.Errorf("cluster labels: got %d, want %d", len(labels), d.Len())
	}
	df := d.frame.Mutate(series.New(labels, series.Int, ColCluster))
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}
	return df, nil
}
