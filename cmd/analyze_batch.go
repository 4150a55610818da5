package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/delaylens/internal/behavior"
	"github.com/KaramelBytes/delaylens/internal/report"
	"github.com/KaramelBytes/delaylens/internal/utils"
)

var (
	abSession sessionFlags
	abOutDir  string
	abQuiet   bool
)

// batchRow is one line of the cross-file comparison.
type batchRow struct {
	File         string
	Rows         int
	AverageDelay float64
	Sizes        [3]int
	Report       string
}

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Fit each dataset separately and write one report per file",
	Long: `Expand the given paths or globs, fit an independent session per dataset
and write <name>.report.md into --out-dir. Reports whose names collide get a
__2, __3, ... suffix. A comparison table across all files is printed at the end.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		log := newLogger(cmd)
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		dsOpt, err := abSession.datasetOptions()
		if err != nil {
			return err
		}
		outDir := abOutDir
		if outDir == "" {
			outDir = c.OutputDir
		}
		if outDir == "" {
			outDir = "."
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return err
		}

		var rows []batchRow
		for i, path := range files {
			if !abQuiet {
				log.Infof("[%d/%d] Processing %s...", i+1, len(files), filepath.Base(path))
			}
			a, err := fitSession(cmd, log, path, dsOpt, abSession.seed)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			outFile := uniquePath(outDir, reportBase(path, dsOpt.SheetName))
			md := report.Build(a, c.ReportOptions()).Markdown()
			if err := utils.SafeWriteFile(outFile, []byte(md), false); err != nil {
				return err
			}
			if !abQuiet {
				log.Successf("Wrote %s", outFile)
			}
			rows = append(rows, summarize(path, outFile, a))
		}
		fmt.Fprint(cmd.OutOrStdout(), comparisonTable(rows))
		return nil
	},
}

func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// reportBase derives "<stem>[__sheet-<name>]" for a dataset path.
func reportBase(path, sheet string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if sheet == "" || !strings.EqualFold(filepath.Ext(base), ".xlsx") {
		return stem
	}
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(sheet)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "sheet"
	}
	return stem + "__sheet-" + s
}

func uniquePath(dir, base string) string {
	p := filepath.Join(dir, base+".report.md")
	for idx := 2; ; idx++ {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p
		}
		p = filepath.Join(dir, fmt.Sprintf("%s__%d.report.md", base, idx))
	}
}

func summarize(path, outFile string, a *behavior.Analyzer) batchRow {
	row := batchRow{
		File:         path,
		Rows:         a.Dataset().Len(),
		AverageDelay: a.Dataset().AverageDelay(),
		Report:       outFile,
	}
	for _, c := range a.Clusters() {
		row.Sizes[c.Category.Index] += c.Size
	}
	return row
}

func comparisonTable(rows []batchRow) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	b.WriteString("\n| File | Rows | Avg delay | High | Moderate | Low | Report |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for _, r := range rows {
		b.WriteString(p.Sprintf("| %s | %d | %.2f | %d | %d | %d | %s |\n",
			r.File, r.Rows, r.AverageDelay, r.Sizes[0], r.Sizes[1], r.Sizes[2], filepath.Base(r.Report)))
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abSession.register(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for per-file reports (default: config output_dir or .)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
