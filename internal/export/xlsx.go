package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes a workbook with one worksheet per relation to w. Row 1 of
// each sheet holds the column names; cells keep their native types.
func WriteXLSX(w io.Writer, snap Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, rel := range relations(snap) {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, rel.name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", rel.name, err)
			}
		} else if _, err := f.NewSheet(rel.name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", rel.name, err)
		}

		if err := writeSheet(f, rel, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, rel relation, headerStyle int) error {
	header := make([]any, len(rel.columns))
	for i, c := range rel.columns {
		header[i] = c.title
	}
	if err := f.SetSheetRow(rel.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", rel.name, err)
	}
	if err := f.SetRowStyle(rel.name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", rel.name, err)
	}

	for i, row := range rel.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(rel.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", rel.name, i+1, err)
		}
	}

	if err := f.SetPanes(rel.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze %s header: %w", rel.name, err)
	}
	return nil
}
