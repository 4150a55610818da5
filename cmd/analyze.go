package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/delaylens/internal/report"
	"github.com/KaramelBytes/delaylens/internal/utils"
)

var (
	anaSession    sessionFlags
	anaRows       int
	anaBins       int
	anaTop        int
	anaAssignRows int
	anaOutputPath string
	anaChartsDir  string
	anaXLSXPath   string
	anaForce      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Cluster a task log and print a procrastination report",
	Long: `Load a CSV/TSV/XLSX task log with Planned_Time, Actual_Time and Distraction
columns, derive Delay = Actual_Time - Planned_Time, fit three clusters and
print a Markdown report. Optionally write delay/distraction charts (PNG) and
an XLSX workbook with the per-record cluster assignments.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(cmd)
		a, err := anaSession.openSession(cmd, log, args)
		if err != nil {
			return err
		}
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		opt := c.ReportOptions()
		if anaRows > 0 {
			opt.PreviewRows = anaRows
		}
		if anaBins > 0 {
			opt.Bins = anaBins
		}
		if anaTop > 0 {
			opt.TopDistractions = anaTop
		}
		if cmd.Flags().Changed("assignments") {
			opt.AssignmentRows = anaAssignRows
		}
		rep := report.Build(a, opt)
		md := rep.Markdown()

		if anaOutputPath == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
		} else {
			p := inOutputDir(anaOutputPath, c.OutputDir)
			if err := utils.SafeWriteFile(p, []byte(md), anaForce); err != nil {
				return err
			}
			log.Successf("Wrote report to %s", p)
		}
		if anaChartsDir != "" {
			paths, err := report.WriteCharts(inOutputDir(anaChartsDir, c.OutputDir), rep, anaForce)
			if err != nil {
				return err
			}
			for _, p := range paths {
				log.Successf("Wrote chart %s", p)
			}
		}
		if anaXLSXPath != "" {
			p := inOutputDir(anaXLSXPath, c.OutputDir)
			if err := utils.CheckOverwrite(p, anaForce); err != nil {
				return err
			}
			if err := utils.EnsureDir(filepath.Dir(p)); err != nil {
				return err
			}
			if err := report.ExportXLSX(p, a); err != nil {
				return err
			}
			log.Successf("Wrote workbook %s", p)
		}
		return nil
	},
}

// inOutputDir places a bare relative path under the configured output dir.
func inOutputDir(p, outDir string) string {
	if outDir == "" || filepath.IsAbs(p) || filepath.Dir(p) != "." {
		return p
	}
	return filepath.Join(outDir, p)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaSession.register(analyzeCmd)
	analyzeCmd.Flags().IntVar(&anaRows, "rows", 0, "preview rows in the report (overrides config)")
	analyzeCmd.Flags().IntVar(&anaBins, "bins", 0, "delay histogram bins (overrides config)")
	analyzeCmd.Flags().IntVar(&anaTop, "top", 0, "number of top distractions to list (overrides config)")
	analyzeCmd.Flags().IntVar(&anaAssignRows, "assignments", 20, "cluster assignment rows to list (0 = all)")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the Markdown report to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&anaChartsDir, "charts", "", "directory for delay and distraction PNG charts")
	analyzeCmd.Flags().StringVar(&anaXLSXPath, "xlsx", "", "write records with clusters to an XLSX workbook")
	analyzeCmd.Flags().BoolVar(&anaForce, "force", false, "overwrite existing output files")
}
