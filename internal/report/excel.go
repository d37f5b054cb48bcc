package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"nearfac/internal/model"
)

// DefaultSheet is the sheet name used when none is configured
const DefaultSheet = "Results"

// Write renders one row per employee into an xlsx workbook. Each rank
// up to k contributes three columns (facility zip, distance, airport
// code); ranks beyond the available match count stay empty.
func Write(path string, rows []model.MatchRow, sheet string, k int) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	if k <= 0 {
		k = 3
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	if err := sw.SetRow("A1", headerRow(k)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, dataRow(row, k)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("delete default sheet: %w", err)
		}
	}

	return f.SaveAs(path)
}

func headerRow(k int) []interface{} {
	header := []interface{}{"Employee Name", "Employee Zip"}
	for rank := 1; rank <= k; rank++ {
		header = append(header,
			fmt.Sprintf("Closest Facility %d Zip", rank),
			fmt.Sprintf("Distance %d (mi)", rank),
			fmt.Sprintf("Airport Code %d", rank),
		)
	}
	return header
}

func dataRow(row model.MatchRow, k int) []interface{} {
	cells := []interface{}{row.Employee.Name, row.Employee.Zip}
	for rank := 1; rank <= k; rank++ {
		if rank <= len(row.Matches) {
			m := row.Matches[rank-1]
			cells = append(cells, m.FacilityZip, m.Miles, m.AirportCode)
		} else {
			cells = append(cells, nil, nil, nil)
		}
	}
	return cells
}
