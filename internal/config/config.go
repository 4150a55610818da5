package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/delaylens/internal/cluster"
	"github.com/KaramelBytes/delaylens/internal/dataset"
	"github.com/KaramelBytes/delaylens/internal/report"
	"github.com/KaramelBytes/delaylens/internal/utils"
)

// Global configuration structure.
type Global struct {
	DatasetPath string `mapstructure:"dataset_path" yaml:"dataset_path"`
	SheetName   string `mapstructure:"sheet_name" yaml:"sheet_name"`

	// Clustering
	Seed      int64   `mapstructure:"seed" yaml:"seed"`
	MaxIter   int     `mapstructure:"max_iter" yaml:"max_iter"`
	NInit     int     `mapstructure:"n_init" yaml:"n_init"`
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`

	// Cleaning
	MissingCategory string `mapstructure:"missing_category" yaml:"missing_category"`
	MissingNumeric  string `mapstructure:"missing_numeric" yaml:"missing_numeric"`

	// Report
	PreviewRows     int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	HistogramBins   int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	TopDistractions int    `mapstructure:"top_distractions" yaml:"top_distractions"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"dataset_path", "sheet_name",
	"seed", "max_iter", "n_init", "tolerance",
	"missing_category", "missing_numeric",
	"preview_rows", "histogram_bins", "top_distractions", "output_dir",
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".delaylens"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.delaylens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by callers.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DELAYLENS")
	v.AutomaticEnv()

	co := cluster.DefaultOptions()
	do := dataset.DefaultOptions()
	ro := report.DefaultOptions()
	v.SetDefault("dataset_path", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("seed", co.Seed)
	v.SetDefault("max_iter", co.MaxIter)
	v.SetDefault("n_init", co.NInit)
	v.SetDefault("tolerance", co.Tolerance)
	v.SetDefault("missing_category", do.MissingCategory)
	v.SetDefault("missing_numeric", string(do.MissingNumeric))
	v.SetDefault("preview_rows", ro.PreviewRows)
	v.SetDefault("histogram_bins", ro.Bins)
	v.SetDefault("top_distractions", ro.TopDistractions)
	v.SetDefault("output_dir", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.DatasetPath = utils.ExpandHome(c.DatasetPath)
	c.OutputDir = utils.ExpandHome(c.OutputDir)
	return &c, nil
}

// Set validates and assigns one key.
func (c *Global) Set(key, val string) error {
	switch key {
	case "dataset_path":
		c.DatasetPath = val
	case "sheet_name":
		c.SheetName = val
	case "seed":
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int for seed: %w", err)
		}
		c.Seed = i
	case "max_iter", "n_init", "preview_rows", "histogram_bins", "top_distractions":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		switch key {
		case "max_iter":
			c.MaxIter = i
		case "n_init":
			c.NInit = i
		case "preview_rows":
			c.PreviewRows = i
		case "histogram_bins":
			c.HistogramBins = i
		case "top_distractions":
			c.TopDistractions = i
		}
	case "tolerance":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for tolerance: %v", val)
		}
		c.Tolerance = f
	case "missing_category":
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("missing_category must not be empty")
		}
		c.MissingCategory = val
	case "missing_numeric":
		p, err := dataset.ParseNumericPolicy(val)
		if err != nil {
			return err
		}
		c.MissingNumeric = string(p)
	case "output_dir":
		c.OutputDir = val
	default:
		return fmt.Errorf("unknown key: %s (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// Get returns the display value for a key.
func (c *Global) Get(key string) string {
	switch key {
	case "dataset_path":
		return c.DatasetPath
	case "sheet_name":
		return c.SheetName
	case "seed":
		return strconv.FormatInt(c.Seed, 10)
	case "max_iter":
		return strconv.Itoa(c.MaxIter)
	case "n_init":
		return strconv.Itoa(c.NInit)
	case "tolerance":
		return strconv.FormatFloat(c.Tolerance, 'g', -1, 64)
	case "missing_category":
		return c.MissingCategory
	case "missing_numeric":
		return c.MissingNumeric
	case "preview_rows":
		return strconv.Itoa(c.PreviewRows)
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins)
	case "top_distractions":
		return strconv.Itoa(c.TopDistractions)
	case "output_dir":
		return c.OutputDir
	}
	return ""
}

// ClusterOptions maps the clustering keys onto cluster.Options.
func (c *Global) ClusterOptions() cluster.Options {
	o := cluster.DefaultOptions()
	o.Seed = c.Seed
	if c.MaxIter > 0 {
		o.MaxIter = c.MaxIter
	}
	if c.NInit > 0 {
		o.NInit = c.NInit
	}
	if c.Tolerance >= 0 {
		o.Tolerance = c.Tolerance
	}
	return o
}

// DatasetOptions maps the cleaning keys onto dataset.Options.
func (c *Global) DatasetOptions() (dataset.Options, error) {
	o := dataset.DefaultOptions()
	o.SheetName = c.SheetName
	if c.MissingCategory != "" {
		o.MissingCategory = c.MissingCategory
	}
	p, err := dataset.ParseNumericPolicy(c.MissingNumeric)
	if err != nil {
		return o, err
	}
	o.MissingNumeric = p
	return o, nil
}

// ReportOptions maps the report keys onto report.Options.
func (c *Global) ReportOptions() report.Options {
	o := report.DefaultOptions()
	if c.PreviewRows > 0 {
		o.PreviewRows = c.PreviewRows
	}
	if c.HistogramBins > 0 {
		o.Bins = c.HistogramBins
	}
	if c.TopDistractions > 0 {
		o.TopDistractions = c.TopDistractions
	}
	return o
}
