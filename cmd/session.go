package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/delaylens/internal/behavior"
	"github.com/KaramelBytes/delaylens/internal/console"
	"github.com/KaramelBytes/delaylens/internal/dataset"
)

// sessionFlags are the dataset/fit flags shared by analyze, classify,
// interactive and watch.
type sessionFlags struct {
	data      string
	sheet     string
	seed      int64
	delimiter string
	decimal   string
	thousands string
	missing   string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.data, "data", "", "dataset file (.csv, .tsv, .xlsx); defaults to config dataset_path")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "XLSX sheet name (default: first sheet or config sheet_name)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed for cluster initialization (overrides config)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',', ';', 'tab', '|' (default: auto by extension)")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator: '.' or ',' (default: auto)")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator: ',', '.', 'space' (default: auto)")
	cmd.Flags().StringVar(&f.missing, "missing-numeric", "", "missing time policy: drop, zero or mean (overrides config)")
}

// datasetPath picks the positional argument, then --data, then config.
func (f *sessionFlags) datasetPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if f.data != "" {
		return f.data, nil
	}
	c, err := loadedConfig()
	if err == nil && c.DatasetPath != "" {
		return c.DatasetPath, nil
	}
	return "", errors.New("no dataset given: pass a file or set one with 'delaylens config set dataset_path <file>'")
}

func (f *sessionFlags) datasetOptions() (dataset.Options, error) {
	c, err := loadedConfig()
	if err != nil {
		return dataset.Options{}, err
	}
	opt, err := c.DatasetOptions()
	if err != nil {
		return opt, err
	}
	if f.sheet != "" {
		opt.SheetName = f.sheet
	}
	if f.missing != "" {
		if opt.MissingNumeric, err = dataset.ParseNumericPolicy(f.missing); err != nil {
			return opt, err
		}
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case "":
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case ",", "comma":
		opt.DecimalSeparator = ','
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case "":
	case ",", "comma":
		opt.ThousandsSeparator = ','
	case ".", "dot":
		opt.ThousandsSeparator = '.'
	case " ", "space":
		opt.ThousandsSeparator = ' '
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s", f.thousands)
	}
	return opt, nil
}

// openSession loads the dataset and fits a fresh Analyzer.
func (f *sessionFlags) openSession(cmd *cobra.Command, log *console.Logger, args []string) (*behavior.Analyzer, error) {
	path, err := f.datasetPath(args)
	if err != nil {
		return nil, err
	}
	opt, err := f.datasetOptions()
	if err != nil {
		return nil, err
	}
	return fitSession(cmd, log, path, opt, f.seed)
}

func fitSession(cmd *cobra.Command, log *console.Logger, path string, opt dataset.Options, seed int64) (*behavior.Analyzer, error) {
	c, err := loadedConfig()
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Load(path, opt)
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded %s: %d usable rows", ds.Name(), ds.Len())
	copts := c.ClusterOptions()
	if cmd.Flags().Changed("seed") {
		copts.Seed = seed
	}
	a, err := behavior.NewAnalyzer(ds, copts)
	if err != nil {
		return nil, err
	}
	log.Debugf("fit: seed=%d restarts=%d iterations=%d inertia=%.3f", copts.Seed, copts.NInit, a.Model().Iterations, a.Model().Inertia)
	for _, w := range a.Warnings() {
		log.Warnf("%s", w)
	}
	return a, nil
}
