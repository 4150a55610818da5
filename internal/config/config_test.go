package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Seed != 42 || c.NInit != 10 || c.MaxIter != 300 {
		t.Fatalf("cluster defaults = %+v", c)
	}
	if c.MissingCategory != "Stress" || c.MissingNumeric != "drop" {
		t.Fatalf("cleaning defaults = %q %q", c.MissingCategory, c.MissingNumeric)
	}
	if c.HistogramBins != 6 || c.PreviewRows != 5 {
		t.Fatalf("report defaults = %+v", c)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(home, "cfg.yaml")
	if err := os.WriteFile(p, []byte("seed: 7\nhistogram_bins: 9\ndataset_path: ~/tasks.csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DELAYLENS_SEED", "11")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Seed != 11 {
		t.Fatalf("seed = %d, want env value 11", c.Seed)
	}
	if c.HistogramBins != 9 {
		t.Fatalf("bins = %d, want file value 9", c.HistogramBins)
	}
	if c.DatasetPath != filepath.Join(home, "tasks.csv") {
		t.Fatalf("dataset_path = %q", c.DatasetPath)
	}
}

func TestSetSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range map[string]string{"seed": "5", "missing_numeric": "mean", "top_distractions": "3", "sheet_name": "Log"} {
		if err := c.Set(k, v); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	if err := Save(c, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".delaylens", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	again, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if again.Seed != 5 || again.MissingNumeric != "mean" || again.TopDistractions != 3 || again.SheetName != "Log" {
		t.Fatalf("reloaded = %+v", again)
	}
	opts, err := again.DatasetOptions()
	if err != nil || opts.MissingNumeric != "mean" || opts.SheetName != "Log" {
		t.Fatalf("DatasetOptions = %+v, %v", opts, err)
	}
	if again.ClusterOptions().Seed != 5 || again.ReportOptions().TopDistractions != 3 {
		t.Fatalf("derived options not applied")
	}
}

func TestSetRejectsBadValues(t *testing.T) {
	c := &Global{}
	bad := map[string]string{
		"seed":             "abc",
		"n_init":           "0",
		"tolerance":        "-1",
		"missing_numeric":  "median",
		"missing_category": " ",
		"nope":             "1",
	}
	for k, v := range bad {
		if err := c.Set(k, v); err == nil {
			t.Errorf("Set(%s, %q) accepted", k, v)
		}
	}
	for _, k := range Keys {
		_ = c.Get(k)
	}
}
