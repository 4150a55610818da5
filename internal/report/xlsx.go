package report

import (
	"fmt"

	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/delaylens/internal/behavior"
	"github.com/KaramelBytes/delaylens/internal/dataset"
)

// Sheet names written by ExportXLSX.
const (
	RecordsSheet  = "Sheet1"
	ClustersSheet = "Clusters"
)

// recordColumns are the cleaned table columns written to Sheet1, in order.
var recordColumns = []string{dataset.ColRow, dataset.ColPlanned, dataset.ColActual, dataset.ColDistraction, dataset.ColDelay, dataset.ColCluster}

// ExportXLSX writes every record with its delay, cluster and category to
// Sheet1, and one row per cluster to a Clusters sheet.
func ExportXLSX(path string, a *behavior.Analyzer) error {
	df, err := a.Dataset().WithClusters(a.Model().Labels)
	if err != nil {
		return fmt.Errorf("build %s: %w", RecordsSheet, err)
	}
	df = df.Select(recordColumns)
	if df.Err != nil {
		return fmt.Errorf("build %s: %w", RecordsSheet, df.Err)
	}

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, 0, len(recordColumns)+1)
	for _, name := range df.Names() {
		header = append(header, name)
	}
	header = append(header, "Category")
	if err := writeRow(f, RecordsSheet, 1, header); err != nil {
		return err
	}
	clusterCol := len(recordColumns) - 1
	for i := 0; i < df.Nrow(); i++ {
		row := make([]interface{}, 0, len(header))
		for j := 0; j < df.Ncol(); j++ {
			row = append(row, cellValue(df.Elem(i, j)))
		}
		id, err := df.Elem(i, clusterCol).Int()
		if err != nil {
			return fmt.Errorf("%s row %d: %w", RecordsSheet, i+2, err)
		}
		row = append(row, a.CategoryOf(id).Name)
		if err := writeRow(f, RecordsSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(ClustersSheet); err != nil {
		return fmt.Errorf("add sheet %s: %w", ClustersSheet, err)
	}
	header = []interface{}{"Category", dataset.ColCluster, "Size", "Centroid_Planned", "Centroid_Actual", "Centroid_Delay", "Mean_Delay", "Explanation"}
	if err := writeRow(f, ClustersSheet, 1, header); err != nil {
		return err
	}
	for i, c := range a.Clusters() {
		row := []interface{}{c.Category.Name, c.ID, c.Size, c.Centroid[0], c.Centroid[1], c.Centroid[2], c.MeanDelay, c.Category.Explanation}
		if err := writeRow(f, ClustersSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func cellValue(e series.Element) interface{} {
	switch e.Type() {
	case series.Int:
		if v, err := e.Int(); err == nil {
			return v
		}
	case series.Float:
		return e.Float()
	}
	return e.String()
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("%s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
