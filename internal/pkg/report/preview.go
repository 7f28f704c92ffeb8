package report

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	EligibleSheet = "Eligible"
	SummarySheet  = "Summary"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var previewHeaders = []string{"Employee Code", "Employee Name", "Check In", "Current Status"}

// PreviewFileName names the export for the given preview date.
func PreviewFileName(p attendance.Preview) string {
	return fmt.Sprintf("absence-preview-%s.xlsx", p.Date)
}

// WritePreviewXLSX renders the preview as a workbook with one row per eligible
// employee and a summary sheet, and writes it to w.
func WritePreviewXLSX(w io.Writer, p attendance.Preview) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", EligibleSheet); err != nil {
		return fmt.Errorf("error renaming sheet: %w", err)
	}

	// Set headers in the first row
	if err := setRow(f, EligibleSheet, 1, toCells(previewHeaders)); err != nil {
		return err
	}

	rowNum := 2
	for _, e := range p.Employees {
		row := []interface{}{e.EmployeeCode, e.EmployeeName, e.CheckInTime, string(e.CurrentStatus)}
		if err := setRow(f, EligibleSheet, rowNum, row); err != nil {
			return err
		}
		rowNum++
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("error creating summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Date", p.Date},
		{"Total Records", p.TotalRecords},
		{"Eligible For Marking", p.EligibleForMarking},
		{"Already Processed", p.AlreadyProcessed},
	}
	for i, row := range summary {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("error writing row %d of %s: %w", rowNum, sheet, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
