package exporter

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/Francelinojr/teste-gener/internal/aggregation"
)

// maxSheetName is the sheet name limit of the XLSX format
const maxSheetName = 31

// WriteWorkbook writes tables as the sheets of one workbook. Cells that
// parse as numbers are stored as numbers.
func WriteWorkbook(out io.Writer, tables []aggregation.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	for i, t := range tables {
		name := sheetName(t.Name, i)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return fmt.Errorf("rename sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}

		header := make([]interface{}, len(t.Columns))
		for j, c := range t.Columns {
			header[j] = c
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("write header of %s: %w", name, err)
		}

		for r, row := range t.Rows {
			cells := make([]interface{}, len(row))
			for j, v := range row {
				cells[j] = cellValue(v)
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				return fmt.Errorf("write row %d of %s: %w", r, name, err)
			}
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func sheetName(name string, index int) string {
	if name == "" {
		name = "sheet" + strconv.Itoa(index+1)
	}
	if len(name) > maxSheetName {
		suffix := "_" + strconv.Itoa(index+1)
		name = name[:maxSheetName-len(suffix)] + suffix
	}
	return name
}

func cellValue(v string) interface{} {
	if v == "" {
		return nil
	}
	// Leading zeros mark codes such as "0612"
	if len(v) > 1 && v[0] == '0' && v[1] != '.' {
		return v
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return v
}
