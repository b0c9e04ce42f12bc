// Package export renders stored submissions for operators.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mind-engage/mindengage-quiz/internal/submission"
)

const SheetName = "Results"

var Header = []string{"Student ID", "Student Name", "Score", "Total", "Answers", "Status", "Submitted At"}

// WriteSubmissionsXLSX writes one row per record under a header row.
func WriteSubmissionsXLSX(w io.Writer, records []submission.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	head := make([]interface{}, len(Header))
	for i, h := range Header {
		head[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &head); err != nil {
		return err
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.Payload.StudentID,
			r.Payload.StudentName,
			r.Payload.Score,
			r.Payload.TotalQuestions,
			r.Payload.AllAnswers,
			string(r.Status),
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}
